package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PaulFidika/donorkit/core"
	memorystore "github.com/PaulFidika/donorkit/storage/memory"
	pgstore "github.com/PaulFidika/donorkit/storage/postgres"
	redisstore "github.com/PaulFidika/donorkit/storage/redis"
	sqlitestore "github.com/PaulFidika/donorkit/storage/sqlite"
	"github.com/redis/go-redis/v9"
)

// backend is an opened storage backend. rdb is set for the redis backend so
// the server can share the connection with its rate limiter.
type backend struct {
	store core.Storage
	rdb   *redis.Client
	close func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func openBackend(ctx context.Context, cfg Config) (*backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "memory":
		return &backend{store: memorystore.NewStore()}, nil
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			p, err := sqlitestore.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		log.WithField("path", path).Debug("opening sqlite store")
		st, err := sqlitestore.Open(path, Verbose)
		if err != nil {
			return nil, err
		}
		return &backend{store: st, close: st.Close}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return &backend{store: redisstore.NewStore(rdb, cfg.RedisPrefix), rdb: rdb, close: rdb.Close}, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres store requires DONORKIT_DATABASE_URL")
		}
		st, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &backend{store: st, close: st.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
