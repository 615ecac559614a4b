package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

// RecordRangeEvent appends a range-threshold crossing when today's
// peak-to-trough spread reaches threshold and the current sample sits exactly
// on one of the extremes. Exact equality is deliberate: the sample that sets a
// new extreme is the same value the tracker stored, and a re-touched extreme
// must not be logged twice while a genuinely new extreme value must be.
// Returns the appended event, or nil when nothing was recorded.
func RecordRangeEvent(st *state.State, price, threshold decimal.Decimal, now time.Time) *state.RangeEvent {
	if st.TodayHigh == nil || st.TodayLow == nil {
		return nil
	}

	change := st.TodayHigh.Sub(*st.TodayLow)
	if change.LessThan(threshold) {
		return nil
	}

	date := DateLabel(now)

	var ev state.RangeEvent
	switch {
	case price.Equal(*st.TodayHigh):
		if hasRangeEvent(st.RangeEvents, state.RangeHigh, *st.TodayHigh) {
			return nil
		}
		ev = state.RangeEvent{
			Type:   state.RangeHigh,
			Price:  *st.TodayHigh,
			Time:   date + " " + st.TodayHighTime,
			Change: change,
		}
	case price.Equal(*st.TodayLow):
		if hasRangeEvent(st.RangeEvents, state.RangeLow, *st.TodayLow) {
			return nil
		}
		ev = state.RangeEvent{
			Type:   state.RangeLow,
			Price:  *st.TodayLow,
			Time:   date + " " + st.TodayLowTime,
			Change: change,
		}
	default:
		return nil
	}

	st.RangeEvents = append(st.RangeEvents, ev)
	return &st.RangeEvents[len(st.RangeEvents)-1]
}

func hasRangeEvent(events []state.RangeEvent, typ string, price decimal.Decimal) bool {
	for _, ev := range events {
		if ev.Type == typ && ev.Price.Equal(price) {
			return true
		}
	}
	return false
}
