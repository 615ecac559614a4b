package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

// ApplyRollover resets day-scoped accumulators when the reporting-timezone
// calendar date differs from the one stamped in the state. Calling it again
// within the same day is a no-op.
func ApplyRollover(st *state.State, now time.Time) bool {
	date := DateLabel(now)
	if st.LastCheckDate == date {
		return false
	}
	st.ResetDay()
	st.LastCheckDate = date
	return true
}

// UpdateExtremes folds the sample into today's running high/low, stamping the
// minute it was set. Both sides may move on the same sample; the first sample
// of a day sets both.
func UpdateExtremes(st *state.State, price decimal.Decimal, now time.Time) (newHigh, newLow bool) {
	minute := MinuteLabel(now)

	if st.TodayHigh == nil || price.GreaterThan(*st.TodayHigh) {
		p := price
		st.TodayHigh = &p
		st.TodayHighTime = minute
		newHigh = true
	}

	if st.TodayLow == nil || price.LessThan(*st.TodayLow) {
		p := price
		st.TodayLow = &p
		st.TodayLowTime = minute
		newLow = true
	}

	return newHigh, newLow
}
