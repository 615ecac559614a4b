package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Notifier 定义告警输送接口：接收一条已渲染好的 Markdown 文本。
type Notifier interface {
	Send(ctx context.Context, content string) error
}

// WechatNotifier 通过企业微信群机器人 Webhook 推送 Markdown 消息。
type WechatNotifier struct {
	webhookURL string
	client     *http.Client
	logger     zerolog.Logger
}

// NewWechatNotifier 构造企业微信告警器。
func NewWechatNotifier(webhookURL string, timeout time.Duration, logger zerolog.Logger) *WechatNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WechatNotifier{
		webhookURL: strings.TrimSpace(webhookURL),
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "alert_wechat").Logger(),
	}
}

type wechatPayload struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Content string `json:"content"`
	} `json:"markdown"`
}

// Send 调用机器人 Webhook 推送文本。企业微信在 HTTP 200 下仍可能返回业务
// 错误，必须检查 errcode。
func (n *WechatNotifier) Send(ctx context.Context, content string) error {
	if n.webhookURL == "" {
		return fmt.Errorf("wechat webhook url 未配置")
	}

	var payload wechatPayload
	payload.MsgType = "markdown"
	payload.Markdown.Content = content

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal wechat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create wechat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send wechat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wechat 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if result.ErrCode != 0 {
			return fmt.Errorf("wechat 返回错误 (errcode=%d): %s", result.ErrCode, result.ErrMsg)
		}
	}

	n.logger.Info().Msg("告警已发送 (企业微信)")
	return nil
}

var _ Notifier = (*WechatNotifier)(nil)
