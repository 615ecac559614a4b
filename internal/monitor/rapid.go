package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

// RapidConfig tunes the sliding-window detector.
type RapidConfig struct {
	Window       time.Duration
	Margin       time.Duration
	ThresholdPct decimal.Decimal
}

// RapidAlert describes a trailing-window percent move worth notifying.
type RapidAlert struct {
	DedupKey  string
	From      decimal.Decimal
	To        decimal.Decimal
	ChangePct decimal.Decimal
	Window    time.Duration
}

// CheckRapidChange appends the sample to the rolling buffer, prunes entries
// older than window+margin, and reports whether the percent change from the
// earliest in-window point to the current price crosses the threshold. A nil
// return means no alert this cycle; the caller records the dedup entry only
// after delivery succeeds. When polling is slower than the window the
// in-window subset can shrink to a single point and no alert is possible,
// which is accepted.
func CheckRapidChange(st *state.State, price decimal.Decimal, now time.Time, cfg RapidConfig) *RapidAlert {
	ts := now.Unix()
	st.PriceHistory = append(st.PriceHistory, state.PricePoint{
		Timestamp: ts,
		Price:     price,
		Time:      TimestampLabel(now),
	})

	prunePriceHistory(st, ts-int64((cfg.Window+cfg.Margin)/time.Second))

	windowStart := ts - int64(cfg.Window/time.Second)
	var earliest *state.PricePoint
	inWindow := 0
	for i := range st.PriceHistory {
		if st.PriceHistory[i].Timestamp >= windowStart {
			if earliest == nil {
				earliest = &st.PriceHistory[i]
			}
			inWindow++
		}
	}

	if inWindow < 2 || earliest == nil || earliest.Price.IsZero() {
		return nil
	}

	changePct := price.Sub(earliest.Price).Div(earliest.Price).Mul(hundred)
	if changePct.Abs().LessThan(cfg.ThresholdPct) {
		return nil
	}

	key := "rapid_" + MinuteLabel(now)
	if st.HasFired(key) {
		return nil
	}

	return &RapidAlert{
		DedupKey:  key,
		From:      earliest.Price,
		To:        price,
		ChangePct: changePct,
		Window:    cfg.Window,
	}
}

func prunePriceHistory(st *state.State, cutoff int64) {
	kept := st.PriceHistory[:0]
	for _, pt := range st.PriceHistory {
		if pt.Timestamp > cutoff {
			kept = append(kept, pt)
		}
	}
	st.PriceHistory = kept
}
