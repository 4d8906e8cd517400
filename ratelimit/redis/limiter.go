package redislimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter is a Redis-backed sliding window limiter using ZSETs, shared by
// every server process that points at the same Redis.
type Limiter struct {
	rdb    *redis.Client
	keyNS  string
	limits map[string]Limit
}

// New builds a limiter. A nil limits map uses the same defaults as the
// in-memory limiter.
func New(rdb *redis.Client, keyPrefix string, limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = map[string]Limit{
			"redeem":  {Limit: 10, Window: time.Minute},
			"consume": {Limit: 120, Window: time.Minute},
			"default": {Limit: 300, Window: time.Minute},
		}
	}
	if keyPrefix == "" {
		keyPrefix = "donorkit:rl:"
	}
	return &Limiter{rdb: rdb, keyNS: keyPrefix, limits: limits}
}

func (l *Limiter) get(bucket string) (Limit, bool) {
	if v, ok := l.limits[bucket]; ok {
		return v, true
	}
	if v, ok := l.limits["default"]; ok {
		return v, true
	}
	return Limit{Limit: 100, Window: time.Minute}, false
}

// Allow matches the gin adapter's RateLimiter interface. Members are unique
// per call so concurrent requests in the same millisecond all count.
func (l *Limiter) Allow(ctx context.Context, bucket, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	lim, _ := l.get(bucket)
	now := time.Now().UnixMilli()
	start := now - lim.Window.Milliseconds()
	limitKey := fmt.Sprintf("%s%s:%s", l.keyNS, key, bucket)
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())
	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, limitKey, redis.Z{Score: float64(now), Member: member})
	pipe.ZRemRangeByScore(ctx, limitKey, "0", fmt.Sprintf("%d", start))
	countCmd := pipe.ZCard(ctx, limitKey)
	pipe.Expire(ctx, limitKey, lim.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	count, err := countCmd.Result()
	if err != nil {
		return false, err
	}
	if count > int64(lim.Limit) {
		l.rdb.ZRem(ctx, limitKey, member)
		return false, nil
	}
	return true, nil
}
