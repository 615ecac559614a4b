package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"btc-price-alerts/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Wechat    WechatConfig    `mapstructure:"wechat"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	State     StateConfig     `mapstructure:"state"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// BinanceConfig covers market data access for both spot and futures APIs.
type BinanceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	FuturesBaseURL string        `mapstructure:"futures_base_url"`
	Symbol         string        `mapstructure:"symbol"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// WechatConfig 描述企业微信机器人 Webhook 参数。
type WechatConfig struct {
	WebhookURL     string        `mapstructure:"webhook_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MonitorConfig holds the fixed alerting thresholds. These are contract
// parameters: changing them changes which samples produce alerts.
type MonitorConfig struct {
	PriceChangeThreshold float64       `mapstructure:"price_change_threshold"`
	DailyRangeThreshold  float64       `mapstructure:"daily_range_threshold"`
	RapidWindow          time.Duration `mapstructure:"rapid_window"`
	RapidMargin          time.Duration `mapstructure:"rapid_margin"`
	RapidChangePct       float64       `mapstructure:"rapid_change_pct"`
	OpenInterestPct      float64       `mapstructure:"open_interest_pct"`
	FundingRateHighPct   float64       `mapstructure:"funding_rate_high_pct"`
	FundingRateLowPct    float64       `mapstructure:"funding_rate_low_pct"`
}

// StateConfig locates the persisted state file.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig encapsulates optional PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig governs polling cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BTCWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "btcwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("binance.base_url", "https://api.binance.com")
	v.SetDefault("binance.futures_base_url", "https://fapi.binance.com")
	v.SetDefault("binance.symbol", "BTCUSDT")
	v.SetDefault("binance.request_timeout", "10s")
	v.SetDefault("binance.user_agent", "btcwatcher/1.0")

	v.SetDefault("wechat.request_timeout", "10s")

	v.SetDefault("monitor.price_change_threshold", 500.0)
	v.SetDefault("monitor.daily_range_threshold", 2000.0)
	v.SetDefault("monitor.rapid_window", "60s")
	v.SetDefault("monitor.rapid_margin", "300s")
	v.SetDefault("monitor.rapid_change_pct", 2.0)
	v.SetDefault("monitor.open_interest_pct", 10.0)
	v.SetDefault("monitor.funding_rate_high_pct", 0.1)
	v.SetDefault("monitor.funding_rate_low_pct", -0.1)

	v.SetDefault("state.path", "btc_price_state.json")

	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.startup_delay", "0s")
	v.SetDefault("scheduler.advisory_lock_key", int64(0x62746377))

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Binance.Symbol == "" {
		return fmt.Errorf("binance.symbol 必须配置")
	}
	if c.Monitor.PriceChangeThreshold <= 0 {
		return fmt.Errorf("monitor.price_change_threshold must be greater than zero")
	}
	if c.Monitor.DailyRangeThreshold <= 0 {
		return fmt.Errorf("monitor.daily_range_threshold must be greater than zero")
	}
	if c.Monitor.RapidWindow <= 0 {
		return fmt.Errorf("monitor.rapid_window must be greater than zero")
	}
	if c.Monitor.RapidChangePct <= 0 {
		return fmt.Errorf("monitor.rapid_change_pct must be greater than zero")
	}
	if c.Monitor.FundingRateHighPct <= c.Monitor.FundingRateLowPct {
		return fmt.Errorf("monitor.funding_rate_high_pct 必须大于 funding_rate_low_pct")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path 必须配置")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
