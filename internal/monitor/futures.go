package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

// OpenInterestAlert reports a percentage swing between successive open
// interest readings.
type OpenInterestAlert struct {
	DedupKey  string
	Previous  decimal.Decimal
	Current   decimal.Decimal
	ChangePct decimal.Decimal
}

// FundingRateAlert reports a funding rate outside the static bands.
type FundingRateAlert struct {
	DedupKey string
	RatePct  decimal.Decimal
	High     bool
}

// CheckOpenInterestSwing compares the current open interest against the
// previous reading. No previous reading, or a zero one, yields no alert: the
// first successful fetch only establishes the baseline.
func CheckOpenInterestSwing(st *state.State, current decimal.Decimal, now time.Time, thresholdPct decimal.Decimal) *OpenInterestAlert {
	if st.LastOpenInterest == nil || st.LastOpenInterest.IsZero() {
		return nil
	}

	prev := *st.LastOpenInterest
	changePct := current.Sub(prev).Div(prev).Mul(hundred)
	if changePct.Abs().LessThan(thresholdPct) {
		return nil
	}

	key := "oi_" + MinuteLabel(now)
	if st.HasFired(key) {
		return nil
	}

	return &OpenInterestAlert{
		DedupKey:  key,
		Previous:  prev,
		Current:   current,
		ChangePct: changePct,
	}
}

// CheckFundingRate checks the current funding rate (as a percentage) against
// the static high/low bands.
func CheckFundingRate(st *state.State, ratePct decimal.Decimal, now time.Time, highPct, lowPct decimal.Decimal) *FundingRateAlert {
	var high bool
	switch {
	case ratePct.GreaterThanOrEqual(highPct):
		high = true
	case ratePct.LessThanOrEqual(lowPct):
		high = false
	default:
		return nil
	}

	key := "fr_" + MinuteLabel(now)
	if st.HasFired(key) {
		return nil
	}

	return &FundingRateAlert{DedupKey: key, RatePct: ratePct, High: high}
}

// RecordOpenInterest stores the latest reading as the baseline for the next
// cycle's swing check, independent of whether an alert fired.
func RecordOpenInterest(st *state.State, current decimal.Decimal) {
	p := current
	st.LastOpenInterest = &p
}

// RecordFundingRate stores the latest funding rate. Informational only; the
// band check never compares against it.
func RecordFundingRate(st *state.State, ratePct decimal.Decimal) {
	p := ratePct
	st.LastFundingRate = &p
}
