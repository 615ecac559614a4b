package state

import (
	"github.com/shopspring/decimal"
)

// Range event types for daily peak-to-trough crossings.
const (
	RangeHigh = "HIGH"
	RangeLow  = "LOW"
)

// Alert kinds recorded in the per-minute dedup set.
const (
	KindRapidChange  = "rapid_change"
	KindOpenInterest = "open_interest"
	KindFundingRate  = "funding_rate"
)

// RangeEvent records one crossing of the daily range threshold. Immutable once
// appended; the whole list is discarded at day rollover.
type RangeEvent struct {
	Type   string          `json:"type"`
	Price  decimal.Decimal `json:"price"`
	Time   string          `json:"time"`
	Change decimal.Decimal `json:"change"`
}

// DedupRecord marks that an alert of a given kind fired within a given
// reporting-timezone minute.
type DedupRecord struct {
	Key       string          `json:"key"`
	Kind      string          `json:"kind"`
	Time      string          `json:"time"`
	Magnitude decimal.Decimal `json:"magnitude"`
}

// PricePoint is one timestamped sample in the rolling rapid-change buffer.
type PricePoint struct {
	Timestamp int64           `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Time      string          `json:"time"`
}

// State is the cross-invocation snapshot. It is read once at the start of a
// cycle and written once at the end; individual entries in the list fields are
// never mutated after creation.
type State struct {
	LastPrice        *decimal.Decimal `json:"last_price,omitempty"`
	LastCheckDate    string           `json:"last_check_date,omitempty"`
	TodayHigh        *decimal.Decimal `json:"today_high,omitempty"`
	TodayLow         *decimal.Decimal `json:"today_low,omitempty"`
	TodayHighTime    string           `json:"today_high_time,omitempty"`
	TodayLowTime     string           `json:"today_low_time,omitempty"`
	LastAlertPrice   *decimal.Decimal `json:"last_alert_price,omitempty"`
	RangeEvents      []RangeEvent     `json:"daily_max_change_events,omitempty"`
	LastOpenInterest *decimal.Decimal `json:"last_open_interest,omitempty"`
	LastFundingRate  *decimal.Decimal `json:"last_funding_rate,omitempty"`
	FiredAlerts      []DedupRecord    `json:"liquidation_alerts,omitempty"`
	PriceHistory     []PricePoint     `json:"price_history,omitempty"`

	firedIndex map[string]struct{}
}

// ResetDay clears every day-scoped accumulator: extremes and their timestamps,
// the rebase baseline, range events, the dedup set, and the rolling buffer.
// Cross-day fields (last price, last futures readings) are preserved.
func (s *State) ResetDay() {
	s.TodayHigh = nil
	s.TodayLow = nil
	s.TodayHighTime = ""
	s.TodayLowTime = ""
	s.LastAlertPrice = nil
	s.RangeEvents = nil
	s.FiredAlerts = nil
	s.PriceHistory = nil
	s.firedIndex = nil
}

// HasFired reports whether an alert with the given dedup key was already
// recorded today. Lookups go through a lazily built set so repeated checks
// stay O(1) even as the day's record list grows.
func (s *State) HasFired(key string) bool {
	if s.firedIndex == nil {
		s.firedIndex = make(map[string]struct{}, len(s.FiredAlerts))
		for _, rec := range s.FiredAlerts {
			s.firedIndex[rec.Key] = struct{}{}
		}
	}
	_, ok := s.firedIndex[key]
	return ok
}

// MarkFired records a delivered alert in the dedup set.
func (s *State) MarkFired(rec DedupRecord) {
	if s.HasFired(rec.Key) {
		return
	}
	s.FiredAlerts = append(s.FiredAlerts, rec)
	s.firedIndex[rec.Key] = struct{}{}
}

// SetLastPrice stores the sample observed this cycle.
func (s *State) SetLastPrice(p decimal.Decimal) {
	s.LastPrice = &p
}

// SetBaseline stores the rebase baseline for the next comparison.
func (s *State) SetBaseline(p decimal.Decimal) {
	s.LastAlertPrice = &p
}
