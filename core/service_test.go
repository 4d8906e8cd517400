package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PaulFidika/donorkit/badge"
	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	memorystore "github.com/PaulFidika/donorkit/storage/memory"
	dtesting "github.com/PaulFidika/donorkit/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memorystore.Store
	clock    *dtesting.Clock
	notes    *dtesting.Notifier
	nav      *dtesting.Navigator
	renderer *dtesting.Renderer
	svc      *core.Service
}

func newFixture() *fixture {
	f := &fixture{
		store:    memorystore.NewStore(),
		clock:    dtesting.NewClock(time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)),
		notes:    &dtesting.Notifier{},
		nav:      &dtesting.Navigator{},
		renderer: &dtesting.Renderer{},
	}
	f.svc = core.NewService(core.Config{}, f.store,
		core.WithClock(f.clock),
		core.WithNotifier(f.notes),
		core.WithNavigator(f.nav),
		core.WithRenderer(f.renderer),
	)
	return f
}

func (f *fixture) stored(t *testing.T) (*entitlements.Record, bool) {
	t.Helper()
	raw, ok, err := f.store.Get(context.Background(), core.DefaultStorageKey)
	require.NoError(t, err)
	if !ok {
		return nil, false
	}
	rec, err := entitlements.Decode(raw)
	require.NoError(t, err)
	return rec, true
}

func (f *fixture) put(t *testing.T, rec entitlements.Record) {
	t.Helper()
	enc, err := rec.Encode()
	require.NoError(t, err)
	require.NoError(t, f.store.Set(context.Background(), core.DefaultStorageKey, enc))
}

func TestRedeemEveryTier(t *testing.T) {
	for _, tier := range entitlements.DefaultTiers() {
		for _, code := range tier.Codes {
			f := newFixture()
			rec, err := f.svc.Redeem(context.Background(), code)
			require.NoError(t, err, code)

			stored, ok := f.stored(t)
			require.True(t, ok)
			assert.Equal(t, *rec, *stored)
			assert.Equal(t, tier.Label, stored.TypeName)
			assert.Equal(t, tier.Quota, stored.PrintCount)
			assert.Equal(t, f.clock.Now().Add(tier.Duration).UnixMilli(), stored.Expiry)
			assert.True(t, stored.IsPremium)
			assert.Equal(t, code, stored.Code)
		}
	}
}

func TestRedeemSuccessNotifiesAndNavigates(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Redeem(context.Background(), "CRS-W7-9WRF")
	require.NoError(t, err)

	n, ok := f.notes.Last()
	require.True(t, ok)
	assert.Equal(t, core.NoticeRedeemed, n.Kind)
	assert.Equal(t, "7-day pass", n.TypeName)
	assert.Equal(t, 30, n.PrintCount)
	assert.Equal(t, "Activated! [7-day pass]\nPrints available: 30", n.Message)
	assert.Equal(t, []string{core.DefaultLandingURL}, f.nav.Destinations)
}

func TestRedeemInvalidLeavesStorageUntouched(t *testing.T) {
	f := newFixture()
	prior := entitlements.Record{IsPremium: true, Code: "CRS-D1-X3G6", Expiry: f.clock.Now().Add(time.Hour).UnixMilli(), PrintCount: 2, TypeName: "1-day pass"}
	f.put(t, prior)

	for _, code := range []string{"", "CRS-D1-0000", "crs-d1-x3g6", "CRS-D1-X3G6\n"} {
		_, err := f.svc.Redeem(context.Background(), code)
		assert.ErrorIs(t, err, entitlements.ErrInvalidCode)
	}
	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.Equal(t, prior, *stored)
	assert.Empty(t, f.nav.Destinations)
	n, _ := f.notes.Last()
	assert.Equal(t, core.NoticeInvalidCode, n.Kind)

	empty := newFixture()
	_, err := empty.svc.Redeem(context.Background(), "nope")
	assert.ErrorIs(t, err, entitlements.ErrInvalidCode)
	assert.Equal(t, 0, empty.store.Len())
}

func TestRedeemOverwritesPriorRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.Redeem(ctx, "CRS-M1-JZ9B")
	require.NoError(t, err)
	_, err = f.svc.Redeem(ctx, "CRS-D1-FHVX")
	require.NoError(t, err)

	stored, _ := f.stored(t)
	assert.Equal(t, "1-day pass", stored.TypeName)
	assert.Equal(t, 5, stored.PrintCount)
	assert.Equal(t, 1, f.store.Len())
}

func TestRedeemStorageFailureIsNotPartial(t *testing.T) {
	notes := &dtesting.Notifier{}
	nav := &dtesting.Navigator{}
	svc := core.NewService(core.Config{}, dtesting.FailingStorage{}, core.WithNotifier(notes), core.WithNavigator(nav))
	_, err := svc.Redeem(context.Background(), "CRS-D1-X3G6")
	assert.ErrorIs(t, err, dtesting.ErrStorage)
	assert.Empty(t, notes.Notices)
	assert.Empty(t, nav.Destinations)
}

func TestStatusExpiredPurges(t *testing.T) {
	f := newFixture()
	now := f.clock.Now()
	for _, expiry := range []time.Time{now, now.Add(-time.Millisecond), now.Add(-72 * time.Hour)} {
		f.put(t, entitlements.Record{IsPremium: true, Expiry: expiry.UnixMilli(), PrintCount: 3})
		rec, err := f.svc.Status(context.Background())
		require.NoError(t, err)
		assert.Nil(t, rec)
		_, ok := f.stored(t)
		assert.False(t, ok, "expired record must be removed")
	}
}

func TestStatusMalformedIsAbsent(t *testing.T) {
	f := newFixture()
	for _, raw := range []string{"not json", "{", "42", "null", `{"printCount":5}`} {
		require.NoError(t, f.store.Set(context.Background(), core.DefaultStorageKey, raw))
		rec, err := f.svc.Status(context.Background())
		require.NoError(t, err, raw)
		assert.Nil(t, rec, raw)
	}
}

func TestStatusLive(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Redeem(context.Background(), "CRS-D1-X3G6")
	require.NoError(t, err)

	f.clock.Advance(23 * time.Hour)
	rec, err := f.svc.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 5, rec.PrintCount)

	f.clock.Advance(time.Hour)
	rec, err = f.svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 0, f.store.Len())
}

func TestStatusStorageError(t *testing.T) {
	svc := core.NewService(core.Config{}, dtesting.FailingStorage{})
	_, err := svc.Status(context.Background())
	assert.ErrorIs(t, err, dtesting.ErrStorage)
}

func TestConsumeAtZeroFails(t *testing.T) {
	f := newFixture()
	f.put(t, entitlements.Record{IsPremium: true, Expiry: f.clock.Now().Add(time.Hour).UnixMilli(), PrintCount: 0})

	ok, err := f.svc.Consume(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	stored, _ := f.stored(t)
	assert.Equal(t, 0, stored.PrintCount)

	_, err = f.svc.ConsumeRecord(context.Background())
	assert.ErrorIs(t, err, entitlements.ErrQuotaExhausted)
	assert.Empty(t, f.renderer.Renders)
}

func TestConsumeWithoutEntitlement(t *testing.T) {
	f := newFixture()
	ok, err := f.svc.Consume(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, f.store.Len())

	f.put(t, entitlements.Record{IsPremium: true, Expiry: f.clock.Now().UnixMilli(), PrintCount: 9})
	_, err = f.svc.ConsumeRecord(context.Background())
	assert.ErrorIs(t, err, entitlements.ErrNoEntitlement)
	assert.Equal(t, 0, f.store.Len(), "consume purges an expired record")
}

func TestConsumeCountsDown(t *testing.T) {
	const n = 7
	f := newFixture()
	f.put(t, entitlements.Record{IsPremium: true, Expiry: f.clock.Now().Add(time.Hour).UnixMilli(), PrintCount: n})

	for i := n - 1; i >= 0; i-- {
		ok, err := f.svc.Consume(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		stored, _ := f.stored(t)
		require.Equal(t, i, stored.PrintCount)
	}
	ok, err := f.svc.Consume(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.renderer.Renders, n, "badge refreshes after every successful consume")
}

func TestConsumeWithPlainStorage(t *testing.T) {
	// Storage without Update goes through the service lock.
	store := &plainStorage{data: map[string]string{}}
	clock := dtesting.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := core.NewService(core.Config{StorageKey: "k"}, store, core.WithClock(clock))
	_, err := svc.Redeem(context.Background(), "CRS-D1-X3G6")
	require.NoError(t, err)
	rec, err := svc.ConsumeRecord(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, rec.PrintCount)
	_, ok := store.data["k"]
	assert.True(t, ok)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	page := badge.BlankPage()
	svc := core.NewService(core.Config{}, f.store, core.WithClock(f.clock), core.WithRenderer(badge.NewRenderer(page)))

	_, err := svc.Redeem(ctx, "CRS-D1-X3G6")
	require.NoError(t, err)
	stored, _ := f.stored(t)
	assert.Equal(t, "1-day pass", stored.TypeName)
	assert.Equal(t, 5, stored.PrintCount)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour).UnixMilli(), stored.Expiry)

	require.NoError(t, svc.RefreshBadge(ctx))
	assert.Equal(t, 1, page.Count(badge.ElementID))

	ok, err := svc.Consume(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	stored, _ = f.stored(t)
	assert.Equal(t, 4, stored.PrintCount)
	assert.Equal(t, "🙏 1-day pass (prints: 4)", page.Text(badge.ElementID))

	for i := 0; i < 4; i++ {
		ok, err = svc.Consume(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
	stored, _ = f.stored(t)
	assert.Equal(t, 0, stored.PrintCount)

	ok, err = svc.Consume(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	stored, _ = f.stored(t)
	assert.Equal(t, 0, stored.PrintCount)
	assert.Equal(t, 1, page.Count(badge.ElementID))
	assert.Equal(t, "🙏 1-day pass (prints: 0)", page.Text(badge.ElementID))

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, svc.RefreshBadge(ctx))
	assert.Equal(t, 0, page.Count(badge.ElementID))
}

func TestRefreshBadgeClearsOnStorageError(t *testing.T) {
	r := &dtesting.Renderer{}
	svc := core.NewService(core.Config{}, dtesting.FailingStorage{}, core.WithRenderer(r))
	err := svc.RefreshBadge(context.Background())
	assert.True(t, errors.Is(err, dtesting.ErrStorage))
	require.Len(t, r.Renders, 1)
	assert.Nil(t, r.Renders[0])
}

func TestScopedStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	shared := memorystore.NewStore()
	a := core.NewService(core.Config{}, core.Scoped(shared, "a"))
	b := core.NewService(core.Config{}, core.Scoped(shared, "b"))

	_, err := a.Redeem(ctx, "CRS-D1-X3G6")
	require.NoError(t, err)
	rec, err := b.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = a.ConsumeRecord(ctx)
	assert.NoError(t, err)
	_, present, _ := shared.Get(ctx, "a:"+core.DefaultStorageKey)
	assert.True(t, present)
}

func TestSweep(t *testing.T) {
	f := newFixture()
	f.put(t, entitlements.Record{Expiry: f.clock.Now().Add(-time.Second).UnixMilli()})
	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	plain := core.NewService(core.Config{}, &plainStorage{data: map[string]string{}})
	n, err = plain.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

type plainStorage struct {
	data map[string]string
}

func (p *plainStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := p.data[key]
	return v, ok, nil
}
func (p *plainStorage) Set(ctx context.Context, key, value string) error {
	p.data[key] = value
	return nil
}
func (p *plainStorage) Del(ctx context.Context, key string) error {
	delete(p.data, key)
	return nil
}

// interleavingStore runs between once, right after the first Get, to stand
// in for a request from the same client landing mid-operation.
type interleavingStore struct {
	*memorystore.Store
	between func()
}

func (s *interleavingStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.Store.Get(ctx, key)
	if s.between != nil {
		fn := s.between
		s.between = nil
		fn()
	}
	return v, ok, err
}

func TestStatusPurgeKeepsConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.svc.Redeem(ctx, "CRS-D1-X3G6")
	require.NoError(t, err)
	f.clock.Advance(25 * time.Hour)

	other := core.NewService(core.Config{}, f.store, core.WithClock(f.clock))
	wrapped := &interleavingStore{Store: f.store, between: func() {
		_, err := other.Redeem(ctx, "CRS-M1-RUPT")
		require.NoError(t, err)
	}}
	svc := core.NewService(core.Config{}, wrapped, core.WithClock(f.clock))

	rec, err := svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec, "the fresh redemption is live")
	assert.Equal(t, "1-month pass", rec.TypeName)

	stored, ok := f.stored(t)
	require.True(t, ok, "fresh redemption must survive the expiry purge")
	assert.Equal(t, "CRS-M1-RUPT", stored.Code)
}

type failingNotifier struct{}

func (failingNotifier) Notify(ctx context.Context, n core.Notice) error {
	return errors.New("alert blocked")
}

func TestRedeemInvalidCodeWithFailingNotifier(t *testing.T) {
	svc := core.NewService(core.Config{}, memorystore.NewStore(), core.WithNotifier(failingNotifier{}))
	_, err := svc.Redeem(context.Background(), "CRS-XX-0000")
	assert.ErrorIs(t, err, entitlements.ErrInvalidCode)
}
