package alerting

import (
	"strings"
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

func TestRenderPriceAlertUp(t *testing.T) {
	msg := RenderPriceAlert(PriceAlertContext{
		Time:           "2026-08-30 10:30:00",
		Price:          dec("65500"),
		Change:         dec("500"),
		ChangePct:      dec("0.77"),
		TodayHigh:      decPtr("66000"),
		TodayLow:       decPtr("63800"),
		TodayHighTime:  "10:30",
		TodayLowTime:   "03:15",
		RangeThreshold: dec("2000"),
		Events: []state.RangeEvent{
			{Type: state.RangeHigh, Price: dec("66000"), Time: "2026-08-30 10:30", Change: dec("2200")},
		},
	})

	for _, want := range []string{
		"📈 BTC价格提醒",
		"2026-08-30 10:30:00",
		"$65,500.00",
		"上涨 $500.00 (+0.77%)",
		"最高价:** $66,000.00 (10:30)",
		"最低价:** $63,800.00 (03:15)",
		"今日最大涨跌:** $2,200.00 (超过$2,000.00阈值)",
		"最高价** $66,000.00 (涨跌$2,200.00) - 2026-08-30 10:30",
		"仅用于信息提醒",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("消息应包含 %q, 实际:\n%s", want, msg)
		}
	}
}

func TestRenderPriceAlertDown(t *testing.T) {
	msg := RenderPriceAlert(PriceAlertContext{
		Time:      "2026-08-30 10:30:00",
		Price:     dec("64500"),
		Change:    dec("-500"),
		ChangePct: dec("-0.77"),
	})

	if !strings.Contains(msg, "📉") || !strings.Contains(msg, "下跌 $500.00 (-0.77%)") {
		t.Fatalf("下跌消息不正确:\n%s", msg)
	}
	if strings.Contains(msg, "今日价格区间") {
		t.Fatal("无极值时不应渲染区间段")
	}
}

func TestRenderPriceAlertRangeBelowThresholdOmitted(t *testing.T) {
	msg := RenderPriceAlert(PriceAlertContext{
		Time:           "2026-08-30 10:30:00",
		Price:          dec("65000"),
		Change:         dec("500"),
		TodayHigh:      decPtr("65500"),
		TodayLow:       decPtr("64500"),
		RangeThreshold: dec("2000"),
	})

	if strings.Contains(msg, "今日最大涨跌") {
		t.Fatal("波幅未达阈值不应渲染最大涨跌行")
	}
}

func TestRenderRapidAlert(t *testing.T) {
	msg := RenderRapidAlert("2026-08-30 10:30:00", dec("65000"), dec("66400"), dec("2.15"), 60*time.Second)
	for _, want := range []string{"⚡📈 BTC急涨提醒", "60秒内变化", "从 $65,000.00 到 $66,400.00 (+2.15%)"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("消息应包含 %q:\n%s", want, msg)
		}
	}

	down := RenderRapidAlert("2026-08-30 10:30:00", dec("65000"), dec("63600"), dec("-2.15"), 60*time.Second)
	if !strings.Contains(down, "急跌") {
		t.Fatalf("下跌消息应标注急跌:\n%s", down)
	}
}

func TestRenderOpenInterestAlert(t *testing.T) {
	msg := RenderOpenInterestAlert("2026-08-30 10:30:00", dec("80000"), dec("92000"), dec("15"))
	if !strings.Contains(msg, "从 80000.000 到 92000.000 (+15.00%)") {
		t.Fatalf("持仓量变化行不正确:\n%s", msg)
	}
}

func TestRenderFundingRateAlert(t *testing.T) {
	next := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	msg := RenderFundingRateAlert("2026-08-30 10:30:00", dec("0.15"), true, next)
	if !strings.Contains(msg, "+0.1500% (高于上限)") {
		t.Fatalf("费率行不正确:\n%s", msg)
	}
	if !strings.Contains(msg, "下次结算:** 2026-08-30 16:00") {
		t.Fatalf("结算时间应转为北京时间:\n%s", msg)
	}

	low := RenderFundingRateAlert("2026-08-30 10:30:00", dec("-0.12"), false, time.Time{})
	if !strings.Contains(low, "-0.1200% (低于下限)") {
		t.Fatalf("负费率行不正确:\n%s", low)
	}
	if strings.Contains(low, "下次结算") {
		t.Fatal("零值结算时间不应渲染")
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := map[string]string{
		"0":          "0.00",
		"999":        "999.00",
		"1000":       "1,000.00",
		"65432.1":    "65,432.10",
		"1234567.89": "1,234,567.89",
		"-2500":      "-2,500.00",
	}
	for in, want := range cases {
		if got := money(dec(in)); got != want {
			t.Fatalf("money(%s) = %s, 期望 %s", in, got, want)
		}
	}
}
