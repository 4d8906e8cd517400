package memorylimiter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Limit defines window and max count for a bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

type bucketState struct {
	// timestamps holds request times in Unix ms, newest last.
	timestamps []int64
	window     int64
}

// gcEvery bounds how often Allow scans for idle buckets.
const gcEvery = time.Minute

// Limiter is an in-memory sliding-window rate limiter.
// It is intended as a single-node fallback when Redis is unavailable.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	buckets map[string]*bucketState
	now     func() time.Time
	lastGC  int64
}

// DefaultLimits caps redemption attempts, which are the only guessable
// operation, and leaves a generous budget for everything else.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		"redeem":  {Limit: 10, Window: time.Minute},
		"consume": {Limit: 120, Window: time.Minute},
		"default": {Limit: 300, Window: time.Minute},
	}
}

// New constructs a new in-memory limiter with the provided per-bucket limits.
func New(limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = DefaultLimits()
	}
	return &Limiter{
		limits:  limits,
		buckets: make(map[string]*bucketState),
		now:     time.Now,
	}
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

// Allow records a hit for key in bucket and reports whether it fits the
// bucket's sliding window. Denied hits are not recorded, so a client that
// keeps hammering is let back in once its oldest hit leaves the window.
func (l *Limiter) Allow(ctx context.Context, bucket, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}

	lim, _ := l.get(bucket)
	now := l.now().UnixMilli()
	cutoff := now - lim.Window.Milliseconds()
	id := bucket + ":" + key

	l.mu.Lock()
	defer l.mu.Unlock()

	l.gc(now)
	b := l.buckets[id]
	if b == nil {
		b = &bucketState{window: lim.Window.Milliseconds()}
		l.buckets[id] = b
	}
	// timestamps are ascending; drop those before the window.
	i := sort.Search(len(b.timestamps), func(i int) bool { return b.timestamps[i] >= cutoff })
	b.timestamps = b.timestamps[i:]

	if len(b.timestamps) >= lim.Limit {
		return false, nil
	}
	b.timestamps = append(b.timestamps, now)
	return true, nil
}

// gc drops buckets whose newest hit has left their window. Callers hold mu.
func (l *Limiter) gc(now int64) {
	if now-l.lastGC < gcEvery.Milliseconds() {
		return
	}
	l.lastGC = now
	for id, b := range l.buckets {
		if n := len(b.timestamps); n == 0 || b.timestamps[n-1] < now-b.window {
			delete(l.buckets, id)
		}
	}
}

// Len reports how many buckets are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
