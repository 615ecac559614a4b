package monitor

import (
	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

var hundred = decimal.NewFromInt(100)

// RebasePhase names the three states the rebase engine can be in when a
// sample arrives.
type RebasePhase int

const (
	// PhaseArmed: a baseline exists; every sample is compared against it.
	PhaseArmed RebasePhase = iota
	// PhaseColdStart: no prior observation at all; the first sample becomes
	// the baseline silently.
	PhaseColdStart
	// PhaseRearm: a prior price exists but the baseline was cleared (day
	// rollover); the prior price serves as the implied baseline.
	PhaseRearm
)

func (p RebasePhase) String() string {
	switch p {
	case PhaseArmed:
		return "armed"
	case PhaseColdStart:
		return "cold_start"
	default:
		return "rearm"
	}
}

// Phase classifies the engine state from the persisted fields.
func Phase(st *state.State) RebasePhase {
	switch {
	case st.LastAlertPrice != nil:
		return PhaseArmed
	case st.LastPrice == nil:
		return PhaseColdStart
	default:
		return PhaseRearm
	}
}

// RebaseDecision is the outcome of evaluating one sample.
type RebaseDecision struct {
	Phase     RebasePhase
	Fire      bool
	Change    decimal.Decimal
	ChangePct decimal.Decimal
	// NewBaseline, when set, is persisted before any delivery attempt. In the
	// armed phase it is always nil: the baseline there moves only through
	// CommitDelivery, so a failed send retries naturally next cycle.
	NewBaseline *decimal.Decimal
}

// EvaluateRebase runs the threshold comparison for one sample. It does not
// mutate state; the caller applies the decision, attempts delivery when Fire
// is set, and calls CommitDelivery only on success.
func EvaluateRebase(st *state.State, price, threshold decimal.Decimal) RebaseDecision {
	switch Phase(st) {
	case PhaseArmed:
		d := RebaseDecision{Phase: PhaseArmed}
		d.Change, d.ChangePct = deltaAgainst(price, *st.LastAlertPrice)
		d.Fire = d.Change.Abs().GreaterThanOrEqual(threshold)
		return d

	case PhaseColdStart:
		p := price
		return RebaseDecision{Phase: PhaseColdStart, NewBaseline: &p}

	default:
		prior := *st.LastPrice
		d := RebaseDecision{Phase: PhaseRearm}
		d.Change, d.ChangePct = deltaAgainst(price, prior)
		if d.Change.Abs().GreaterThanOrEqual(threshold) {
			d.Fire = true
			d.NewBaseline = &prior
		} else {
			p := price
			d.NewBaseline = &p
		}
		return d
	}
}

// ApplyDecision persists the pre-delivery baseline, if any.
func ApplyDecision(st *state.State, d RebaseDecision) {
	if d.NewBaseline != nil {
		st.SetBaseline(*d.NewBaseline)
	}
}

// CommitDelivery rebases the baseline to the price that was successfully
// notified. Withholding this on delivery failure is what makes the same delta
// re-trigger on the next qualifying sample.
func CommitDelivery(st *state.State, price decimal.Decimal) {
	st.SetBaseline(price)
}

func deltaAgainst(price, base decimal.Decimal) (change, pct decimal.Decimal) {
	change = price.Sub(base)
	if !base.IsZero() {
		pct = change.Div(base).Mul(hundred)
	}
	return change, pct
}
