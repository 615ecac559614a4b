package monitor

import (
	"testing"

	"btc-price-alerts/internal/state"
)

func TestOpenInterestFirstReadingOnlySeedsBaseline(t *testing.T) {
	st := &state.State{}

	if a := CheckOpenInterestSwing(st, dec("88000"), bjTime(10, 0), dec("10")); a != nil {
		t.Fatal("首次读数不应触发告警")
	}
	RecordOpenInterest(st, dec("88000"))
	if st.LastOpenInterest == nil || !st.LastOpenInterest.Equal(dec("88000")) {
		t.Fatal("首次读数应建立基线")
	}
}

func TestOpenInterestSwingFires(t *testing.T) {
	st := &state.State{LastOpenInterest: decPtr("80000")}

	a := CheckOpenInterestSwing(st, dec("92000"), bjTime(10, 0), dec("10"))
	if a == nil {
		t.Fatal("+15% 应触发告警")
	}
	if !a.ChangePct.Equal(dec("15")) {
		t.Fatalf("变化百分比应为 15, 实际 %s", a.ChangePct)
	}
	if a.DedupKey != "oi_10:00" {
		t.Fatalf("去重键不正确: %s", a.DedupKey)
	}

	// 阈值内变化不触发。
	if a := CheckOpenInterestSwing(st, dec("84000"), bjTime(10, 1), dec("10")); a != nil {
		t.Fatal("+5% 不应触发")
	}
}

func TestOpenInterestPerMinuteDedup(t *testing.T) {
	st := &state.State{LastOpenInterest: decPtr("80000")}

	a := CheckOpenInterestSwing(st, dec("92000"), bjTime(10, 0), dec("10"))
	if a == nil {
		t.Fatal("首次应触发")
	}
	st.MarkFired(state.DedupRecord{Key: a.DedupKey, Kind: state.KindOpenInterest})

	if a := CheckOpenInterestSwing(st, dec("93000"), bjTime(10, 0), dec("10")); a != nil {
		t.Fatal("同分钟应被去重")
	}
	if a := CheckOpenInterestSwing(st, dec("93000"), bjTime(10, 1), dec("10")); a == nil {
		t.Fatal("下一分钟应再次触发")
	}
}

func TestOpenInterestBaselineAlwaysUpdated(t *testing.T) {
	// 无论是否触发，周期末都以当前读数覆盖基线。
	st := &state.State{LastOpenInterest: decPtr("80000")}
	RecordOpenInterest(st, dec("84000"))
	if !st.LastOpenInterest.Equal(dec("84000")) {
		t.Fatalf("基线应更新为当前读数: %s", st.LastOpenInterest)
	}
}

func TestOpenInterestZeroBaselineSkipped(t *testing.T) {
	st := &state.State{LastOpenInterest: decPtr("0")}
	if a := CheckOpenInterestSwing(st, dec("92000"), bjTime(10, 0), dec("10")); a != nil {
		t.Fatal("零基线不应参与比较")
	}
}

func TestFundingRateBands(t *testing.T) {
	st := &state.State{}
	high := dec("0.1")
	low := dec("-0.1")

	a := CheckFundingRate(st, dec("0.15"), bjTime(10, 0), high, low)
	if a == nil || !a.High {
		t.Fatalf("费率 0.15%% 应触发偏高告警: %#v", a)
	}
	if a.DedupKey != "fr_10:00" {
		t.Fatalf("去重键不正确: %s", a.DedupKey)
	}

	a = CheckFundingRate(st, dec("-0.12"), bjTime(10, 1), high, low)
	if a == nil || a.High {
		t.Fatalf("费率 -0.12%% 应触发偏低告警: %#v", a)
	}

	// 边界取等。
	if a := CheckFundingRate(st, dec("0.1"), bjTime(10, 2), high, low); a == nil {
		t.Fatal("费率等于上界应触发")
	}
	if a := CheckFundingRate(st, dec("-0.1"), bjTime(10, 3), high, low); a == nil {
		t.Fatal("费率等于下界应触发")
	}

	// 带内不触发。
	if a := CheckFundingRate(st, dec("0.05"), bjTime(10, 4), high, low); a != nil {
		t.Fatal("带内费率不应触发")
	}
}

func TestFundingRatePerMinuteDedup(t *testing.T) {
	st := &state.State{}

	a := CheckFundingRate(st, dec("0.2"), bjTime(10, 0), dec("0.1"), dec("-0.1"))
	if a == nil {
		t.Fatal("首次应触发")
	}
	st.MarkFired(state.DedupRecord{Key: a.DedupKey, Kind: state.KindFundingRate})

	if a := CheckFundingRate(st, dec("0.2"), bjTime(10, 0), dec("0.1"), dec("-0.1")); a != nil {
		t.Fatal("同分钟应被去重")
	}
}

func TestFundingRateRecordedInformationally(t *testing.T) {
	st := &state.State{}
	RecordFundingRate(st, dec("0.03"))
	if st.LastFundingRate == nil || !st.LastFundingRate.Equal(dec("0.03")) {
		t.Fatalf("费率读数应被记录: %#v", st.LastFundingRate)
	}
}
