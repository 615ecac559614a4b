package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"btc-price-alerts/internal/state"
)

const disclaimer = "\n\n⚠️ *本程序仅用于信息提醒，不做任何交易决策*"

// PriceAlertContext carries everything the price alert message shows.
type PriceAlertContext struct {
	Time           string
	Price          decimal.Decimal
	Change         decimal.Decimal
	ChangePct      decimal.Decimal
	TodayHigh      *decimal.Decimal
	TodayLow       *decimal.Decimal
	TodayHighTime  string
	TodayLowTime   string
	RangeThreshold decimal.Decimal
	Events         []state.RangeEvent
}

// RenderPriceAlert 渲染价格提醒（企业微信 Markdown 格式）。
func RenderPriceAlert(c PriceAlertContext) string {
	var symbol, text string
	switch c.Change.Sign() {
	case 1:
		symbol, text = "📈", "上涨"
	case -1:
		symbol, text = "📉", "下跌"
	default:
		symbol, text = "➡️", "持平"
	}

	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s BTC价格提醒\n\n", symbol)
	fmt.Fprintf(&b, "**🕐 更新时间（北京时间）:** %s\n\n", c.Time)
	fmt.Fprintf(&b, "## 💰 当前价格\n**$%s**\n\n", money(c.Price))
	fmt.Fprintf(&b, "## 📊 价格变化\n**%s $%s (%s%%)**", text, money(c.Change.Abs()), signedPct(c.ChangePct, 2))

	if c.TodayHigh != nil && c.TodayLow != nil {
		fmt.Fprintf(&b, "\n\n## 📈 今日价格区间\n• **最高价:** $%s", money(*c.TodayHigh))
		if c.TodayHighTime != "" {
			fmt.Fprintf(&b, " (%s)", c.TodayHighTime)
		}
		fmt.Fprintf(&b, "\n• **最低价:** $%s", money(*c.TodayLow))
		if c.TodayLowTime != "" {
			fmt.Fprintf(&b, " (%s)", c.TodayLowTime)
		}

		dailyRange := c.TodayHigh.Sub(*c.TodayLow)
		if dailyRange.GreaterThanOrEqual(c.RangeThreshold) {
			fmt.Fprintf(&b, "\n• **今日最大涨跌:** $%s (超过$%s阈值)", money(dailyRange), money(c.RangeThreshold))
		}
	}

	if len(c.Events) > 0 {
		fmt.Fprintf(&b, "\n\n## ⚠️ 今日超过$%s涨跌记录", money(c.RangeThreshold))
		for _, ev := range c.Events {
			fmt.Fprintf(&b, "\n• **%s** $%s (涨跌$%s) - %s", rangeEventLabel(ev.Type), money(ev.Price), money(ev.Change.Abs()), ev.Time)
		}
	}

	b.WriteString(disclaimer)
	return b.String()
}

// RenderRapidAlert 渲染短时急涨急跌提醒。
func RenderRapidAlert(when string, from, to, changePct decimal.Decimal, window time.Duration) string {
	var symbol, text string
	if changePct.Sign() >= 0 {
		symbol, text = "⚡📈", "急涨"
	} else {
		symbol, text = "⚡📉", "急跌"
	}

	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s BTC%s提醒\n\n", symbol, text)
	fmt.Fprintf(&b, "**🕐 更新时间（北京时间）:** %s\n\n", when)
	fmt.Fprintf(&b, "## 💰 当前价格\n**$%s**\n\n", money(to))
	fmt.Fprintf(&b, "## 📊 %d秒内变化\n**从 $%s 到 $%s (%s%%)**", int(window.Seconds()), money(from), money(to), signedPct(changePct, 2))
	b.WriteString(disclaimer)
	return b.String()
}

// RenderOpenInterestAlert 渲染合约持仓量异动提醒。
func RenderOpenInterestAlert(when string, previous, current, changePct decimal.Decimal) string {
	b := strings.Builder{}
	b.WriteString("# 📊 BTC合约持仓量异动\n\n")
	fmt.Fprintf(&b, "**🕐 更新时间（北京时间）:** %s\n\n", when)
	fmt.Fprintf(&b, "## 📦 持仓量变化\n**从 %s 到 %s (%s%%)**", qty(previous), qty(current), signedPct(changePct, 2))
	b.WriteString(disclaimer)
	return b.String()
}

// RenderFundingRateAlert 渲染资金费率异常提醒。
func RenderFundingRateAlert(when string, ratePct decimal.Decimal, high bool, nextFunding time.Time) string {
	band := "低于下限"
	if high {
		band = "高于上限"
	}

	b := strings.Builder{}
	b.WriteString("# 💸 BTC资金费率异常\n\n")
	fmt.Fprintf(&b, "**🕐 更新时间（北京时间）:** %s\n\n", when)
	fmt.Fprintf(&b, "## 📊 当前资金费率\n**%s%% (%s)**", signedPct(ratePct, 4), band)
	if !nextFunding.IsZero() {
		fmt.Fprintf(&b, "\n\n**⏭ 下次结算:** %s", nextFunding.In(beijing).Format("2006-01-02 15:04"))
	}
	b.WriteString(disclaimer)
	return b.String()
}

var beijing = time.FixedZone("UTC+8", 8*60*60)

func rangeEventLabel(typ string) string {
	if typ == state.RangeLow {
		return "最低价"
	}
	return "最高价"
}

// money renders a value with two decimals and thousands separators, matching
// the message style the robots have always posted.
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	frac := s[len(s)-3:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	b.WriteString(frac)
	return b.String()
}

func signedPct(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}

func qty(d decimal.Decimal) string {
	return d.StringFixed(3)
}
