package monitor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func bjTime(hour, min int) time.Time {
	return time.Date(2026, 8, 30, hour, min, 0, 0, Beijing)
}

func TestApplyRolloverResetsOnNewDay(t *testing.T) {
	st := &state.State{
		LastCheckDate:  "2026-08-29",
		LastPrice:      decPtr("65000"),
		TodayHigh:      decPtr("66000"),
		TodayLow:       decPtr("64000"),
		LastAlertPrice: decPtr("65500"),
	}

	if !ApplyRollover(st, bjTime(0, 1)) {
		t.Fatal("跨日应触发重置")
	}
	if st.LastCheckDate != "2026-08-30" {
		t.Fatalf("日期戳不正确: %s", st.LastCheckDate)
	}
	if st.TodayHigh != nil || st.TodayLow != nil || st.LastAlertPrice != nil {
		t.Fatal("日内字段应被清空")
	}
	if st.LastPrice == nil {
		t.Fatal("上次价格应跨日保留")
	}
}

func TestApplyRolloverIdempotentWithinDay(t *testing.T) {
	st := &state.State{LastCheckDate: "2026-08-30", TodayHigh: decPtr("66000")}

	if ApplyRollover(st, bjTime(12, 0)) {
		t.Fatal("同日重复调用不应重置")
	}
	if st.TodayHigh == nil {
		t.Fatal("同日数据应保留")
	}
}

func TestApplyRolloverUsesReportingTimezone(t *testing.T) {
	// 2026-08-29 17:00 UTC 在 UTC+8 已是 8 月 30 日。
	st := &state.State{LastCheckDate: "2026-08-29"}
	now := time.Date(2026, 8, 29, 17, 0, 0, 0, time.UTC)

	if !ApplyRollover(st, now) {
		t.Fatal("按报告时区应视为新的一天")
	}
	if st.LastCheckDate != "2026-08-30" {
		t.Fatalf("日期戳应为报告时区日期: %s", st.LastCheckDate)
	}
}

func TestUpdateExtremesFirstSampleSetsBoth(t *testing.T) {
	st := &state.State{}

	newHigh, newLow := UpdateExtremes(st, dec("65000"), bjTime(9, 5))
	if !newHigh || !newLow {
		t.Fatal("当日首个样本应同时设置最高最低")
	}
	if !st.TodayHigh.Equal(dec("65000")) || !st.TodayLow.Equal(dec("65000")) {
		t.Fatalf("极值不正确: %s / %s", st.TodayHigh, st.TodayLow)
	}
	if st.TodayHighTime != "09:05" || st.TodayLowTime != "09:05" {
		t.Fatalf("极值时间不正确: %s / %s", st.TodayHighTime, st.TodayLowTime)
	}
}

func TestUpdateExtremesStrictComparison(t *testing.T) {
	st := &state.State{}
	UpdateExtremes(st, dec("65000"), bjTime(9, 0))

	// 相等不更新时间戳。
	newHigh, newLow := UpdateExtremes(st, dec("65000"), bjTime(10, 0))
	if newHigh || newLow {
		t.Fatal("等值样本不应更新极值")
	}
	if st.TodayHighTime != "09:00" {
		t.Fatalf("等值样本不应刷新时间: %s", st.TodayHighTime)
	}

	newHigh, _ = UpdateExtremes(st, dec("65001"), bjTime(10, 30))
	if !newHigh {
		t.Fatal("更高样本应更新最高价")
	}
	if st.TodayHighTime != "10:30" {
		t.Fatalf("新高应刷新时间: %s", st.TodayHighTime)
	}

	_, newLow = UpdateExtremes(st, dec("64000"), bjTime(11, 0))
	if !newLow {
		t.Fatal("更低样本应更新最低价")
	}
	if !st.TodayHigh.Equal(dec("65001")) {
		t.Fatal("新低不应影响最高价")
	}
}

func TestExtremesSequence(t *testing.T) {
	// 一串样本后最高最低应等于序列的最大最小值。
	st := &state.State{}
	prices := []string{"65000", "64800", "65500", "65200", "64100", "66000", "65900"}
	for i, p := range prices {
		UpdateExtremes(st, dec(p), bjTime(9, i))
	}

	if !st.TodayHigh.Equal(dec("66000")) {
		t.Fatalf("最高价应为 66000, 实际 %s", st.TodayHigh)
	}
	if !st.TodayLow.Equal(dec("64100")) {
		t.Fatalf("最低价应为 64100, 实际 %s", st.TodayLow)
	}
	if st.TodayHighTime != "09:05" || st.TodayLowTime != "09:04" {
		t.Fatalf("极值时间不正确: %s / %s", st.TodayHighTime, st.TodayLowTime)
	}
}
