package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/redis/go-redis/v9"
)

// ErrConflict is returned when Update keeps losing optimistic transactions.
var ErrConflict = errors.New("redis_update_conflict")

const maxUpdateAttempts = 8

// Store keeps records in Redis under keyNS. Values that decode as records
// get a TTL ending at their expiry, so Redis drops them on its own.
type Store struct {
	rdb   *redis.Client
	keyNS string
	now   func() time.Time
}

func NewStore(rdb *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "donorkit:"
	}
	return &Store{rdb: rdb, keyNS: keyPrefix, now: time.Now}
}

func (s *Store) key(k string) string { return s.keyNS + k }

func (s *Store) ttl(value string) time.Duration {
	exp, ok := entitlements.ExpiryOf(value)
	if !ok {
		return 0
	}
	if d := exp.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.key(key), value, s.ttl(value)).Err()
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// Update runs fn inside WATCH/MULTI and retries when another client wrote
// the key in between.
func (s *Store) Update(ctx context.Context, key string, fn core.UpdateFunc) error {
	k := s.key(key)
	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, k).Result()
		ok := true
		if err == redis.Nil {
			ok, err = false, nil
		}
		if err != nil {
			return err
		}
		m, next := fn(val, ok)
		if m == core.Keep {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if m == core.Put {
				pipe.Set(ctx, k, next, s.ttl(next))
			} else {
				pipe.Del(ctx, k)
			}
			return nil
		})
		return err
	}
	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s", ErrConflict, key)
}

// Sweep scans the namespace and deletes records that have expired at now.
// Keys normally expire through their TTL; this catches records written
// before their TTL was known or by other writers.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	n := 0
	iter := s.rdb.Scan(ctx, 0, s.keyNS+"*", 200).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		val, err := s.rdb.Get(ctx, k).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return n, err
		}
		exp, ok := entitlements.ExpiryOf(val)
		if !ok || now.Before(exp) {
			continue
		}
		if err := s.rdb.Del(ctx, k).Err(); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Err()
}
