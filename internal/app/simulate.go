package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/alerting"
	"btc-price-alerts/internal/monitor"
	"btc-price-alerts/internal/service"
	"btc-price-alerts/internal/state"
)

// SimulateAlert 用给定的基准价/当前价走一遍价格提醒判定并真实推送。
func (a *App) SimulateAlert(ctx context.Context, baseline, price decimal.Decimal) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置企业微信 Webhook URL，无法模拟告警")
	}

	now := time.Now()
	st := &state.State{LastCheckDate: monitor.DateLabel(now)}
	st.SetBaseline(baseline)

	monitor.UpdateExtremes(st, price, now)

	thresholds := service.ThresholdsFromConfig(a.Config.Monitor)
	decision := monitor.EvaluateRebase(st, price, thresholds.PriceChange)
	if !decision.Fire {
		a.Logger.Info().
			Str("change", decision.Change.String()).
			Str("threshold", thresholds.PriceChange.String()).
			Msg("变化未达到阈值，不会触发告警")
		return nil
	}

	msg := alerting.RenderPriceAlert(alerting.PriceAlertContext{
		Time:           monitor.TimestampLabel(now),
		Price:          price,
		Change:         decision.Change,
		ChangePct:      decision.ChangePct,
		TodayHigh:      st.TodayHigh,
		TodayLow:       st.TodayLow,
		TodayHighTime:  st.TodayHighTime,
		TodayLowTime:   st.TodayLowTime,
		RangeThreshold: thresholds.DailyRange,
	})

	return notifier.Send(ctx, msg)
}
