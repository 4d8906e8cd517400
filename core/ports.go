package core

import (
	"context"
	"time"

	"github.com/PaulFidika/donorkit/entitlements"
)

// Storage is a string key/value store holding encoded records. Get reports
// ok=false for a missing key; a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// Mutation is what an UpdateFunc asks the store to persist.
type Mutation int

const (
	Keep Mutation = iota
	Put
	Delete
)

// UpdateFunc inspects the current value and decides the mutation. It may be
// called more than once when a store retries after a conflict.
type UpdateFunc func(value string, ok bool) (Mutation, string)

// Updater is implemented by stores that can run a read-modify-write on one
// key without interleaving with other writers.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Sweeper is implemented by stores that can purge expired records in bulk.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Navigator moves the user to another destination after a redemption.
type Navigator interface {
	Navigate(ctx context.Context, destination string) error
}

type NoticeKind string

const (
	NoticeInvalidCode NoticeKind = "invalid_code"
	NoticeRedeemed    NoticeKind = "redeemed"
)

// Notice is a user-visible message.
type Notice struct {
	Kind       NoticeKind `json:"kind"`
	Message    string     `json:"message"`
	TypeName   string     `json:"type_name,omitempty"`
	PrintCount int        `json:"print_count,omitempty"`
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Renderer reflects the current entitlement in the UI. rec is nil when there
// is no live entitlement.
type Renderer interface {
	Render(ctx context.Context, rec *entitlements.Record) error
}
