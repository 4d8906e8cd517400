package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const dbName = "local.db"

// KeyValue is one stored record.
type KeyValue struct {
	Key       string     `gorm:"primaryKey"`
	Value     string     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (KeyValue) TableName() string { return "entitlement_kv" }

// Store is a file-backed store for a single machine, the CLI's equivalent
// of browser-local storage.
type Store struct {
	db *gorm.DB
}

// DefaultPath returns $XDG_CONFIG_HOME/donorkit/local.db (or the platform
// equivalent), creating the directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	dir = filepath.Join(dir, "donorkit")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory '%s': %w", dir, err)
	}
	return filepath.Join(dir, dbName), nil
}

// Open opens (or creates) the database at path. An empty path uses DefaultPath.
func Open(path string, verbose bool) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at '%s': %w", path, err)
	}
	if verbose {
		db.Logger = logger.Default.LogMode(logger.Info)
	}
	if err := db.AutoMigrate(&KeyValue{}); err != nil {
		if sqlDB, closeErr := db.DB(); closeErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB instance: %w", err)
	}
	return sqlDB.Close()
}

func newKeyValue(key, value string) *KeyValue {
	kv := &KeyValue{Key: key, Value: value}
	if exp, ok := entitlements.ExpiryOf(value); ok {
		exp = exp.UTC()
		kv.ExpiresAt = &exp
	}
	return kv
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return get(s.db.WithContext(ctx), key)
}

func get(db *gorm.DB, key string) (string, bool, error) {
	var kv KeyValue
	if err := db.Where("key = ?", key).First(&kv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return kv.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return set(s.db.WithContext(ctx), key, value)
}

func set(db *gorm.DB, key, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(newKeyValue(key, value)).Error
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&KeyValue{}).Error
}

// Update runs fn inside a transaction; SQLite serializes writers.
func (s *Store) Update(ctx context.Context, key string, fn core.UpdateFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		val, ok, err := get(tx, key)
		if err != nil {
			return err
		}
		switch m, next := fn(val, ok); m {
		case core.Put:
			return set(tx, key, next)
		case core.Delete:
			return tx.Where("key = ?", key).Delete(&KeyValue{}).Error
		}
		return nil
	})
}

// Sweep deletes records that expired at or before now.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now.UTC()).
		Delete(&KeyValue{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
