package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/alerting"
	"btc-price-alerts/internal/config"
	"btc-price-alerts/internal/fetcher"
	"btc-price-alerts/internal/monitor"
	"btc-price-alerts/internal/scheduler"
	"btc-price-alerts/internal/state"
	"btc-price-alerts/internal/storage"
)

// StateStore abstracts the persisted state file.
type StateStore interface {
	Load() *state.State
	Save(st *state.State) error
}

// Thresholds are the monitor contract parameters converted to decimals once.
type Thresholds struct {
	PriceChange     decimal.Decimal
	DailyRange      decimal.Decimal
	Rapid           monitor.RapidConfig
	OpenInterestPct decimal.Decimal
	FundingHighPct  decimal.Decimal
	FundingLowPct   decimal.Decimal
}

// ThresholdsFromConfig converts the configuration block.
func ThresholdsFromConfig(cfg config.MonitorConfig) Thresholds {
	return Thresholds{
		PriceChange: decimal.NewFromFloat(cfg.PriceChangeThreshold),
		DailyRange:  decimal.NewFromFloat(cfg.DailyRangeThreshold),
		Rapid: monitor.RapidConfig{
			Window:       cfg.RapidWindow,
			Margin:       cfg.RapidMargin,
			ThresholdPct: decimal.NewFromFloat(cfg.RapidChangePct),
		},
		OpenInterestPct: decimal.NewFromFloat(cfg.OpenInterestPct),
		FundingHighPct:  decimal.NewFromFloat(cfg.FundingRateHighPct),
		FundingLowPct:   decimal.NewFromFloat(cfg.FundingRateLowPct),
	}
}

// Service orchestrates one poll cycle: load state, fetch, decide, notify,
// save state.
type Service struct {
	scheduler *scheduler.Scheduler
	price     fetcher.PriceFetcher
	stats     fetcher.StatsFetcher
	futures   fetcher.FuturesFetcher
	states    StateStore
	samples   storage.PriceSampleStore
	alerts    storage.AlertStore
	notifier  alerting.Notifier
	logger    zerolog.Logger

	thresholds Thresholds
	locker     storage.AdvisoryLocker
	lockKey    int64
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, price fetcher.PriceFetcher, stats fetcher.StatsFetcher, futures fetcher.FuturesFetcher, states StateStore, samples storage.PriceSampleStore, alertStore storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := samples.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:  sched,
		price:      price,
		stats:      stats,
		futures:    futures,
		states:     states,
		samples:    samples,
		alerts:     alertStore,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		thresholds: ThresholdsFromConfig(cfg.Monitor),
		locker:     locker,
		lockKey:    cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick 执行单个轮询周期的检查逻辑。
func (s *Service) ProcessTick(ctx context.Context, now time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("tick", now).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeTick(ctx, now)
}

func (s *Service) executeTick(ctx context.Context, now time.Time) error {
	st := s.states.Load()

	price, err := s.price.FetchPrice(ctx)
	if err != nil {
		// Price is the one required sample. Skip the whole cycle, persist
		// nothing, and let the next poll try again.
		s.logger.Warn().Err(err).Msg("获取价格失败，跳过本次检查")
		return nil
	}

	if rolled := monitor.ApplyRollover(st, now); rolled {
		s.logger.Info().Str("date", st.LastCheckDate).Msg("新的一天，重置今日数据")
	}

	rapid := monitor.CheckRapidChange(st, price, now, s.thresholds.Rapid)

	newHigh, newLow := monitor.UpdateExtremes(st, price, now)
	if newHigh {
		s.logger.Debug().Str("high", st.TodayHigh.String()).Str("time", st.TodayHighTime).Msg("更新今日最高价")
	}
	if newLow {
		s.logger.Debug().Str("low", st.TodayLow.String()).Str("time", st.TodayLowTime).Msg("更新今日最低价")
	}

	if ev := monitor.RecordRangeEvent(st, price, s.thresholds.DailyRange, now); ev != nil {
		s.logger.Info().
			Str("type", ev.Type).
			Str("price", ev.Price.String()).
			Str("change", ev.Change.String()).
			Msg("记录今日大幅涨跌事件")
	}

	decision := monitor.EvaluateRebase(st, price, s.thresholds.PriceChange)
	monitor.ApplyDecision(st, decision)

	s.logger.Info().
		Str("price", price.String()).
		Str("change", decision.Change.String()).
		Str("phase", decision.Phase.String()).
		Bool("fire", decision.Fire).
		Msg("样本已处理")

	if decision.Fire {
		s.handlePriceAlert(ctx, st, price, decision, now)
	}

	if rapid != nil {
		s.handleRapidAlert(ctx, st, rapid, now)
	}

	s.checkFutures(ctx, st, now)

	st.SetLastPrice(price)

	if err := s.states.Save(st); err != nil {
		// The cycle's effects are lost for next time, but the monitor must
		// keep polling.
		s.logger.Error().Err(err).Msg("保存状态文件失败")
	}

	s.recordSample(ctx, st, price, decision, now)
	return nil
}

func (s *Service) handlePriceAlert(ctx context.Context, st *state.State, price decimal.Decimal, decision monitor.RebaseDecision, now time.Time) {
	changePct := decision.ChangePct
	if s.stats != nil {
		if stats, err := s.stats.FetchStats24h(ctx); err == nil {
			changePct = stats.PriceChangePercent
		} else {
			s.logger.Debug().Err(err).Msg("获取24小时统计失败，使用基准变化百分比")
		}
	}

	msg := alerting.RenderPriceAlert(alerting.PriceAlertContext{
		Time:           monitor.TimestampLabel(now),
		Price:          price,
		Change:         decision.Change,
		ChangePct:      changePct,
		TodayHigh:      st.TodayHigh,
		TodayLow:       st.TodayLow,
		TodayHighTime:  st.TodayHighTime,
		TodayLowTime:   st.TodayLowTime,
		RangeThreshold: s.thresholds.DailyRange,
		Events:         st.RangeEvents,
	})

	if s.deliver(ctx, "price_change", decision.Change.Abs(), msg, now) {
		monitor.CommitDelivery(st, price)
	}
}

func (s *Service) handleRapidAlert(ctx context.Context, st *state.State, alert *monitor.RapidAlert, now time.Time) {
	msg := alerting.RenderRapidAlert(monitor.TimestampLabel(now), alert.From, alert.To, alert.ChangePct, alert.Window)
	if s.deliver(ctx, state.KindRapidChange, alert.ChangePct.Abs(), msg, now) {
		st.MarkFired(state.DedupRecord{
			Key:       alert.DedupKey,
			Kind:      state.KindRapidChange,
			Time:      monitor.TimestampLabel(now),
			Magnitude: alert.ChangePct,
		})
	}
}

func (s *Service) checkFutures(ctx context.Context, st *state.State, now time.Time) {
	if s.futures == nil {
		return
	}

	if oi, err := s.futures.FetchOpenInterest(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("获取持仓量失败，跳过持仓量检查")
	} else {
		if alert := monitor.CheckOpenInterestSwing(st, oi, now, s.thresholds.OpenInterestPct); alert != nil {
			msg := alerting.RenderOpenInterestAlert(monitor.TimestampLabel(now), alert.Previous, alert.Current, alert.ChangePct)
			if s.deliver(ctx, state.KindOpenInterest, alert.ChangePct.Abs(), msg, now) {
				st.MarkFired(state.DedupRecord{
					Key:       alert.DedupKey,
					Kind:      state.KindOpenInterest,
					Time:      monitor.TimestampLabel(now),
					Magnitude: alert.ChangePct,
				})
			}
		}
		monitor.RecordOpenInterest(st, oi)
	}

	if fr, err := s.futures.FetchFundingRate(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("获取资金费率失败，跳过费率检查")
	} else {
		if alert := monitor.CheckFundingRate(st, fr.RatePct, now, s.thresholds.FundingHighPct, s.thresholds.FundingLowPct); alert != nil {
			msg := alerting.RenderFundingRateAlert(monitor.TimestampLabel(now), alert.RatePct, alert.High, fr.NextFundingTime)
			if s.deliver(ctx, state.KindFundingRate, alert.RatePct.Abs(), msg, now) {
				st.MarkFired(state.DedupRecord{
					Key:       alert.DedupKey,
					Kind:      state.KindFundingRate,
					Time:      monitor.TimestampLabel(now),
					Magnitude: alert.RatePct,
				})
			}
		}
		monitor.RecordFundingRate(st, fr.RatePct)
	}
}

// deliver sends one rendered message and audits it. A false return means the
// alert's state side effects must not commit, so the condition can fire again
// on a later sample.
func (s *Service) deliver(ctx context.Context, kind string, magnitude decimal.Decimal, msg string, now time.Time) bool {
	if s.notifier == nil {
		s.logger.Warn().Str("kind", kind).Msg("未配置告警通道，消息未发送")
		return false
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("发送告警失败")
		return false
	}

	if s.alerts != nil {
		record := storage.AlertRecord{
			SampleTS:  now,
			Kind:      kind,
			Magnitude: magnitude,
			Message:   msg,
		}
		if _, err := s.alerts.InsertAlert(ctx, record); err != nil {
			s.logger.Error().Err(err).Str("kind", kind).Msg("failed to persist alert record")
		}
	}
	return true
}

func (s *Service) recordSample(ctx context.Context, st *state.State, price decimal.Decimal, decision monitor.RebaseDecision, now time.Time) {
	if s.samples == nil {
		return
	}

	sample := storage.PriceSample{
		Bucket:    now.UTC().Truncate(time.Second),
		Price:     price,
		Change:    decision.Change,
		TodayHigh: st.TodayHigh,
		TodayLow:  st.TodayLow,
		Status:    "complete",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.samples.UpsertPriceSample(ctx, sample); err != nil {
		s.logger.Error().Err(err).Time("tick", now).Msg("failed to upsert sample")
	}
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
