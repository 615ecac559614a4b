package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"btc-price-alerts/internal/monitor"
)

// TestConnection 验证币安 API 与企业微信 Webhook 的连通性。
func (a *App) TestConnection(ctx context.Context) error {
	bin := a.newFetcher()

	price, err := bin.FetchPrice(ctx)
	if err != nil {
		fmt.Fprintln(os.Stdout, "❌ 币安API连接失败:", err)
		return err
	}
	fmt.Fprintln(os.Stdout, "✅ 币安API连接成功，当前价格: $"+price.StringFixed(2))

	notifier := a.newNotifier()
	if notifier == nil {
		fmt.Fprintln(os.Stdout, "❌ 未配置企业微信 Webhook URL")
		return fmt.Errorf("wechat webhook url 未配置")
	}

	msg := "# ✅ 连接测试\n\n监控程序连通性正常。\n\n当前BTC价格: **$" + price.StringFixed(2) + "**\n\n北京时间: " + monitor.TimestampLabel(time.Now())
	if err := notifier.Send(ctx, msg); err != nil {
		fmt.Fprintln(os.Stdout, "❌ 企业微信Webhook发送失败:", err)
		return err
	}

	fmt.Fprintln(os.Stdout, "✅ 企业微信Webhook发送成功")
	return nil
}
