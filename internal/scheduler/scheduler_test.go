package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunTicksImmediatelyThenStopsOnCancel(t *testing.T) {
	s := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	err := s.Run(ctx, func(ctx context.Context, now time.Time) error {
		ticks++
		if ticks >= 3 {
			cancel()
		}
		return nil
	})

	if err != context.Canceled {
		t.Fatalf("取消后应返回 context.Canceled: %v", err)
	}
	if ticks < 3 {
		t.Fatalf("应至少执行 3 次: %d", ticks)
	}
}

func TestRunFirstTickHasNoDelay(t *testing.T) {
	s := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	var first time.Duration
	_ = s.Run(ctx, func(ctx context.Context, now time.Time) error {
		first = time.Since(start)
		cancel()
		return nil
	})

	if first > time.Second {
		t.Fatalf("首次检查应立即执行, 实际等待 %v", first)
	}
}

func TestRunStartupDelayCancellable(t *testing.T) {
	s := New(Options{Interval: time.Hour, StartupDelay: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, func(ctx context.Context, now time.Time) error {
		t.Fatal("已取消的上下文不应执行检查")
		return nil
	}); err != context.Canceled {
		t.Fatalf("应返回 context.Canceled: %v", err)
	}
}
