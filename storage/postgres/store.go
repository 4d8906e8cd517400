package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	migrations "github.com/PaulFidika/donorkit/migrations/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// KeyValue is one stored record. ExpiresAt mirrors the record's expiry so
// sweeps can run in SQL.
type KeyValue struct {
	bun.BaseModel `bun:"table:entitlement_kv,alias:kv"`

	Key       string     `bun:"key,pk"`
	Value     string     `bun:"value,notnull"`
	ExpiresAt *time.Time `bun:"expires_at,nullzero"`
	UpdatedAt time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

func newKeyValue(key, value string) *KeyValue {
	kv := &KeyValue{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if exp, ok := entitlements.ExpiryOf(value); ok {
		exp = exp.UTC()
		kv.ExpiresAt = &exp
	}
	return kv
}

// Store keeps records in Postgres through bun.
type Store struct {
	db   *bun.DB
	pool *pgxpool.Pool
}

// New wraps an existing bun handle. The caller owns it.
func New(db *bun.DB) *Store { return &Store{db: db} }

// Open connects with pgx, wraps the pool for bun and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		pool.Close()
		return nil, err
	}
	return &Store{db: db, pool: pool}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return get(ctx, s.db, key, false)
}

func get(ctx context.Context, db bun.IDB, key string, forUpdate bool) (string, bool, error) {
	var kv KeyValue
	q := db.NewSelect().Model(&kv).Where("key = ?", key)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return kv.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return set(ctx, s.db, key, value)
}

func set(ctx context.Context, db bun.IDB, key, value string) error {
	_, err := db.NewInsert().
		Model(newKeyValue(key, value)).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) Del(ctx context.Context, key string) error {
	return del(ctx, s.db, key)
}

func del(ctx context.Context, db bun.IDB, key string) error {
	_, err := db.NewDelete().Model((*KeyValue)(nil)).Where("key = ?", key).Exec(ctx)
	return err
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of fn.
// A missing row is not locked; concurrent inserts of the same key resolve
// through the upsert.
func (s *Store) Update(ctx context.Context, key string, fn core.UpdateFunc) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		val, ok, err := get(ctx, tx, key, true)
		if err != nil {
			return err
		}
		switch m, next := fn(val, ok); m {
		case core.Put:
			return set(ctx, tx, key, next)
		case core.Delete:
			return del(ctx, tx, key)
		}
		return nil
	})
}

// Sweep deletes rows whose record expired at or before now.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.NewDelete().
		Model((*KeyValue)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
