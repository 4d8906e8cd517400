package memorystore

import (
	"context"
	"sync"
	"time"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
)

// Store is an in-memory implementation of core.Storage. It also implements
// core.Updater and core.Sweeper.
type Store struct {
	mu   sync.Mutex
	data map[string]string
}

func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *Store) Del(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Update holds the store lock for the whole read-modify-write.
func (s *Store) Update(ctx context.Context, key string, fn core.UpdateFunc) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	switch m, next := fn(v, ok); m {
	case core.Put:
		s.data[key] = next
	case core.Delete:
		delete(s.data, key)
	}
	return nil
}

// Sweep removes every record that has expired at now. Values that do not
// decode as records are left alone.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.data {
		exp, ok := entitlements.ExpiryOf(v)
		if ok && !now.Before(exp) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
