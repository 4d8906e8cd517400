package redislimiter

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestNilClientAllows(t *testing.T) {
	l := New(nil, "", nil)
	if ok, err := l.Allow(context.Background(), "redeem", "k"); !ok || err != nil {
		t.Fatalf("expected allow without redis, got ok=%v err=%v", ok, err)
	}
	if lim, ok := l.get("status"); !ok || lim.Limit != 300 {
		t.Fatalf("expected default bucket, got %+v ok=%v", lim, ok)
	}
}

func TestAllowAgainstRedis(t *testing.T) {
	addr := os.Getenv("DONORKIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DONORKIT_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	l := New(rdb, "donorkit-test:"+uuid.NewString()+":", map[string]Limit{"redeem": {Limit: 3, Window: time.Minute}})
	for i := 0; i < 3; i++ {
		if ok, err := l.Allow(ctx, "redeem", "client"); err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, err := l.Allow(ctx, "redeem", "client"); err != nil || ok {
		t.Fatalf("fourth attempt should be denied, ok=%v err=%v", ok, err)
	}
	if ok, _ := l.Allow(ctx, "redeem", "other"); !ok {
		t.Fatal("other clients have their own window")
	}
}
