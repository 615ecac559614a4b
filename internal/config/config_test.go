package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("默认配置应可加载: %v", err)
	}

	if cfg.Binance.Symbol != "BTCUSDT" {
		t.Fatalf("默认交易对不正确: %s", cfg.Binance.Symbol)
	}
	if cfg.Monitor.PriceChangeThreshold != 500 {
		t.Fatalf("默认价格阈值不正确: %v", cfg.Monitor.PriceChangeThreshold)
	}
	if cfg.Monitor.DailyRangeThreshold != 2000 {
		t.Fatalf("默认波幅阈值不正确: %v", cfg.Monitor.DailyRangeThreshold)
	}
	if cfg.Monitor.RapidWindow != 60*time.Second || cfg.Monitor.RapidMargin != 300*time.Second {
		t.Fatalf("默认快速窗口不正确: %v / %v", cfg.Monitor.RapidWindow, cfg.Monitor.RapidMargin)
	}
	if cfg.Scheduler.Interval != 30*time.Second {
		t.Fatalf("默认轮询间隔不正确: %v", cfg.Scheduler.Interval)
	}
	if cfg.State.Path != "btc_price_state.json" {
		t.Fatalf("默认状态文件路径不正确: %s", cfg.State.Path)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := []byte(`
scheduler:
  interval: 5s
monitor:
  price_change_threshold: 250
wechat:
  webhook_url: https://example.com/hook
`)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置文件失败: %v", err)
	}
	if cfg.Scheduler.Interval != 5*time.Second {
		t.Fatalf("文件值应覆盖默认值: %v", cfg.Scheduler.Interval)
	}
	if cfg.Monitor.PriceChangeThreshold != 250 {
		t.Fatalf("阈值覆盖未生效: %v", cfg.Monitor.PriceChangeThreshold)
	}
	if cfg.Wechat.WebhookURL != "https://example.com/hook" {
		t.Fatalf("webhook 未生效: %s", cfg.Wechat.WebhookURL)
	}
	// 未覆盖的字段保持默认。
	if cfg.Monitor.DailyRangeThreshold != 2000 {
		t.Fatalf("未覆盖字段应保持默认: %v", cfg.Monitor.DailyRangeThreshold)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("默认配置应可加载: %v", err)
	}

	cases := []func(c *Config){
		func(c *Config) { c.Scheduler.Interval = 0 },
		func(c *Config) { c.Binance.Symbol = "" },
		func(c *Config) { c.Monitor.PriceChangeThreshold = 0 },
		func(c *Config) { c.Monitor.DailyRangeThreshold = -1 },
		func(c *Config) { c.Monitor.RapidWindow = 0 },
		func(c *Config) { c.Monitor.FundingRateHighPct = -0.2 },
		func(c *Config) { c.State.Path = "" },
		func(c *Config) { c.Export.MaxDataPoints = 0 },
	}

	for i, mutate := range cases {
		bad := *cfg
		mutate(&bad)
		if err := bad.Validate(); err == nil {
			t.Fatalf("用例 %d 应校验失败", i)
		}
	}
}

func TestResolveMaxPoints(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 1000}}
	if got := cfg.ResolveMaxPoints(0); got != 1000 {
		t.Fatalf("无覆盖时应用配置值: %d", got)
	}
	if got := cfg.ResolveMaxPoints(50); got != 50 {
		t.Fatalf("覆盖值应优先: %d", got)
	}
}
