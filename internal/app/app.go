package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"btc-price-alerts/internal/alerting"
	"btc-price-alerts/internal/config"
	"btc-price-alerts/internal/fetcher"
	"btc-price-alerts/internal/scheduler"
	"btc-price-alerts/internal/service"
	"btc-price-alerts/internal/state"
	"btc-price-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() *fetcher.Binance {
	return fetcher.NewBinance(fetcher.BinanceOptions{
		BaseURL:        a.Config.Binance.BaseURL,
		FuturesBaseURL: a.Config.Binance.FuturesBaseURL,
		Symbol:         a.Config.Binance.Symbol,
		Timeout:        a.Config.Binance.RequestTimeout,
		UserAgent:      a.Config.Binance.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Wechat.WebhookURL == "" {
		return nil
	}
	return alerting.NewWechatNotifier(a.Config.Wechat.WebhookURL, a.Config.Wechat.RequestTimeout, a.Logger)
}

func (a *App) newStateStore() *state.FileStore {
	return state.NewFileStore(a.Config.State.Path, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newService(ctx context.Context, sched *scheduler.Scheduler) (*service.Service, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		a.Logger.Debug().Msg("database.dsn not configured; sample persistence disabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("未配置企业微信 Webhook URL，程序将运行但不会发送消息")
	}

	bin := a.newFetcher()

	var samples storage.PriceSampleStore
	var alertStore storage.AlertStore
	if store != nil {
		samples = store
		alertStore = store
	}

	svc := service.New(a.Config, sched, bin, bin, bin, a.newStateStore(), samples, alertStore, notifier, a.Logger)
	return svc, closeStore, nil
}

// Run executes the monitoring service. In a GitHub Actions environment it
// performs a single check and exits, mirroring the scheduled-workflow mode;
// otherwise it polls until interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if os.Getenv("GITHUB_ACTIONS") == "true" {
		a.Logger.Info().Msg("GitHub Actions 模式：执行单次检查")
		return a.CheckOnce(ctx)
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc, closeStore, err := a.newService(ctx, sched)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	a.Logger.Info().
		Dur("interval", a.Config.Scheduler.Interval).
		Float64("price_threshold", a.Config.Monitor.PriceChangeThreshold).
		Float64("range_threshold", a.Config.Monitor.DailyRangeThreshold).
		Msg("starting monitoring service")

	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// CheckOnce runs exactly one poll cycle.
func (a *App) CheckOnce(ctx context.Context) error {
	svc, closeStore, err := a.newService(ctx, nil)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	return svc.ProcessTick(ctx, time.Now())
}

// ExportOptions hold parameters for exporting historical samples.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Alerts bool
}
