package memorylimiter

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestAllowSlidingWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	l := New(map[string]Limit{"redeem": {Limit: 2, Window: time.Minute}})
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "redeem", "client-a")
		if err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "redeem", "client-a"); ok {
		t.Fatal("third attempt inside the window should be denied")
	}
	if ok, _ := l.Allow(ctx, "redeem", "client-b"); !ok {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(time.Minute + time.Millisecond)
	if ok, _ := l.Allow(ctx, "redeem", "client-a"); !ok {
		t.Fatal("window should have slid past the old attempts")
	}
}

func TestAllowFallsBackToDefault(t *testing.T) {
	l := New(nil)
	lim, _ := l.get("status")
	if lim != DefaultLimits()["default"] {
		t.Fatalf("expected default limit, got %+v", lim)
	}
	if _, err := l.Allow(context.Background(), "", "k"); err == nil {
		t.Fatal("expected error for empty bucket")
	}
	var nilLimiter *Limiter
	if ok, err := nilLimiter.Allow(context.Background(), "redeem", "k"); !ok || err != nil {
		t.Fatal("nil limiter allows everything")
	}
}

func TestIdleBucketsAreDropped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	l := New(map[string]Limit{"redeem": {Limit: 2, Window: time.Minute}})
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		if _, err := l.Allow(ctx, "redeem", fmt.Sprintf("client-%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if got := l.Len(); got != 100 {
		t.Fatalf("expected 100 live buckets, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := l.Allow(ctx, "redeem", "late"); err != nil {
		t.Fatal(err)
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("expected idle buckets dropped, got %d", got)
	}
}
