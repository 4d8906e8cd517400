package pgstore

import (
	"context"
	"os"
	"testing"
	"time"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyValueTracksExpiry(t *testing.T) {
	exp := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	raw, err := entitlements.Record{Expiry: exp.UnixMilli()}.Encode()
	require.NoError(t, err)

	kv := newKeyValue("k", raw)
	require.NotNil(t, kv.ExpiresAt)
	assert.True(t, kv.ExpiresAt.Equal(exp))

	kv = newKeyValue("k", "not a record")
	assert.Nil(t, kv.ExpiresAt)
}

func TestStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("DONORKIT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DONORKIT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	scope := uuid.NewString()
	clock := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc := core.NewService(core.Config{}, core.Scoped(s, scope), core.WithClock(core.ClockFunc(func() time.Time { return clock })))

	rec, err := svc.Redeem(ctx, "CRS-W7-SGJQ")
	require.NoError(t, err)
	assert.Equal(t, 30, rec.PrintCount)

	got, err := svc.ConsumeRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, 29, got.PrintCount)

	n, err := s.Sweep(ctx, clock.Add(8*24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, st)
}
