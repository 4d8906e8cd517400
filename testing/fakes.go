// Package testing provides fake ports for exercising donorkit services
// without a browser, a terminal or a real clock.
//
// Example usage:
//
//	clock := testing.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	notes := &testing.Notifier{}
//	svc := core.NewService(core.Config{}, memorystore.NewStore(),
//		core.WithClock(clock), core.WithNotifier(notes))
//
//	svc.Redeem(ctx, "CRS-D1-X3G6")
//	clock.Advance(25 * time.Hour)
package testing

import (
	"context"
	"errors"
	"sync"
	"time"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
)

// Clock is a manually advanced core.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Notifier records notices.
type Notifier struct {
	mu      sync.Mutex
	Notices []core.Notice
}

func (n *Notifier) Notify(ctx context.Context, notice core.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, notice)
	return nil
}

// Last returns the most recent notice.
func (n *Notifier) Last() (core.Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Notices) == 0 {
		return core.Notice{}, false
	}
	return n.Notices[len(n.Notices)-1], true
}

// Navigator records destinations.
type Navigator struct {
	mu           sync.Mutex
	Destinations []string
}

func (n *Navigator) Navigate(ctx context.Context, destination string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Destinations = append(n.Destinations, destination)
	return nil
}

// Renderer records every render call.
type Renderer struct {
	mu      sync.Mutex
	Renders []*entitlements.Record
}

func (r *Renderer) Render(ctx context.Context, rec *entitlements.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec != nil {
		cp := *rec
		rec = &cp
	}
	r.Renders = append(r.Renders, rec)
	return nil
}

// ErrStorage is returned by FailingStorage.
var ErrStorage = errors.New("storage unavailable")

// FailingStorage fails every operation.
type FailingStorage struct{}

func (FailingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, ErrStorage
}
func (FailingStorage) Set(ctx context.Context, key, value string) error { return ErrStorage }
func (FailingStorage) Del(ctx context.Context, key string) error        { return ErrStorage }
