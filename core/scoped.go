package core

import (
	"context"
	"time"
)

// Scoped namespaces every key of an underlying store, giving each client its
// own single-record slot in a shared backend.
func Scoped(inner Storage, prefix string) Storage {
	if prefix == "" {
		return inner
	}
	s := &scoped{inner: inner, prefix: prefix + ":"}
	if _, ok := inner.(Updater); ok {
		return &scopedUpdater{s}
	}
	return s
}

type scoped struct {
	inner  Storage
	prefix string
}

func (s *scoped) key(k string) string { return s.prefix + k }

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.key(key))
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.key(key), value)
}

func (s *scoped) Del(ctx context.Context, key string) error {
	return s.inner.Del(ctx, s.key(key))
}

type scopedUpdater struct{ *scoped }

func (s *scopedUpdater) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.inner.(Updater).Update(ctx, s.key(key), fn)
}

// Sweep purges the whole inner store; expired records are expired for every
// client.
func (s *scoped) Sweep(ctx context.Context, now time.Time) (int, error) {
	if sw, ok := s.inner.(Sweeper); ok {
		return sw.Sweep(ctx, now)
	}
	return 0, nil
}
