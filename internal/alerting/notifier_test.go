package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestWechatNotifierSuccess(t *testing.T) {
	var received wechatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("应使用 POST, 实际 %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("Content-Type 不正确: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"errcode": 0, "errmsg": "ok"})
	}))
	defer srv.Close()

	n := NewWechatNotifier(srv.URL, time.Second, testLogger())
	if err := n.Send(context.Background(), "# 测试消息"); err != nil {
		t.Fatalf("Send 应成功: %v", err)
	}

	if received.MsgType != "markdown" {
		t.Fatalf("msgtype 应为 markdown: %s", received.MsgType)
	}
	if received.Markdown.Content != "# 测试消息" {
		t.Fatalf("content 不正确: %s", received.Markdown.Content)
	}
}

func TestWechatNotifierBusinessError(t *testing.T) {
	// 企业微信在 HTTP 200 下返回业务错误。
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"errcode": 93000, "errmsg": "invalid webhook url"})
	}))
	defer srv.Close()

	n := NewWechatNotifier(srv.URL, time.Second, testLogger())
	if err := n.Send(context.Background(), "msg"); err == nil {
		t.Fatal("errcode != 0 应报错")
	}
}

func TestWechatNotifierHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWechatNotifier(srv.URL, time.Second, testLogger())
	if err := n.Send(context.Background(), "msg"); err == nil {
		t.Fatal("HTTP 500 应报错")
	}
}

func TestWechatNotifierEmptyURL(t *testing.T) {
	n := NewWechatNotifier("", time.Second, testLogger())
	if err := n.Send(context.Background(), "msg"); err == nil {
		t.Fatal("未配置 webhook 应报错")
	}
}
