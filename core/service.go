package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/PaulFidika/donorkit/lang"
	"github.com/sirupsen/logrus"
)

// Service redeems codes into entitlements, answers status checks and
// consumes prints. All reads go through Status, which collapses missing,
// unreadable and expired records into "no entitlement".
type Service struct {
	cfg      Config
	store    Storage
	clock    Clock
	nav      Navigator
	notifier Notifier
	renderer Renderer
	events   EventLogger
	log      logrus.FieldLogger

	// mu serializes read-modify-write for stores that do not implement Updater.
	mu *sync.Mutex
}

type Option func(*Service)

func WithClock(c Clock) Option             { return func(s *Service) { s.clock = c } }
func WithNavigator(n Navigator) Option     { return func(s *Service) { s.nav = n } }
func WithNotifier(n Notifier) Option       { return func(s *Service) { s.notifier = n } }
func WithRenderer(r Renderer) Option       { return func(s *Service) { s.renderer = r } }
func WithEventLogger(e EventLogger) Option { return func(s *Service) { s.events = e } }
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLock shares a mutex between services built over the same plain Storage.
func WithLock(mu *sync.Mutex) Option {
	return func(s *Service) {
		if mu != nil {
			s.mu = mu
		}
	}
}

func NewService(cfg Config, store Storage, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg.defaulted(),
		store: store,
		clock: SystemClock,
		log:   logrus.StandardLogger(),
		mu:    &sync.Mutex{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// Redeem validates code against the catalog. On a match it replaces any
// stored record with a fresh one, notifies the user and navigates to the
// landing page. On a miss it notifies the user, leaves storage untouched and
// returns entitlements.ErrInvalidCode.
func (s *Service) Redeem(ctx context.Context, code string) (*entitlements.Record, error) {
	tier, ok := s.cfg.Catalog.Lookup(code)
	if !ok {
		s.logEvent(ctx, "rejected", func(e EventLogger) error { return e.LogRejected(ctx, code) })
		if err := s.notify(ctx, Notice{Kind: NoticeInvalidCode, Message: lang.MessageCtx(ctx, lang.InvalidCode)}); err != nil {
			s.log.WithError(err).Warn("invalid code notice failed")
			return nil, errors.Join(entitlements.ErrInvalidCode, fmt.Errorf("notify: %w", err))
		}
		return nil, entitlements.ErrInvalidCode
	}

	rec := entitlements.Grant(tier, code, s.clock.Now())
	enc, err := rec.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode entitlement: %w", err)
	}
	put := func(string, bool) (Mutation, string) { return Put, enc }
	if err := s.update(ctx, put); err != nil {
		return nil, fmt.Errorf("persist entitlement: %w", err)
	}
	s.logEvent(ctx, "redeemed", func(e EventLogger) error { return e.LogRedeemed(ctx, tier.ID, rec) })

	if err := s.notify(ctx, Notice{
		Kind:       NoticeRedeemed,
		Message:    lang.MessageCtx(ctx, lang.Redeemed, rec.TypeName, rec.PrintCount),
		TypeName:   rec.TypeName,
		PrintCount: rec.PrintCount,
	}); err != nil {
		return &rec, fmt.Errorf("notify: %w", err)
	}
	if s.nav != nil {
		if err := s.nav.Navigate(ctx, s.cfg.LandingURL); err != nil {
			return &rec, fmt.Errorf("navigate: %w", err)
		}
	}
	return &rec, nil
}

// Status returns the live record, or nil when there is none. An expired
// record is deleted as a side effect. Only storage failures are errors.
func (s *Service) Status(ctx context.Context) (*entitlements.Record, error) {
	raw, ok, err := s.store.Get(ctx, s.cfg.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read entitlement: %w", err)
	}
	rec, expired := s.inspect(raw, ok)
	if !expired {
		return rec, nil
	}
	return s.purgeExpired(ctx)
}

// purgeExpired deletes the record only if it is still expired when re-read
// under the store's update, so a redemption that lands after the first read
// survives. It returns whatever live record it finds instead.
func (s *Service) purgeExpired(ctx context.Context) (*entitlements.Record, error) {
	var live *entitlements.Record
	purged := false
	fn := func(raw string, ok bool) (Mutation, string) {
		rec, expired := s.inspect(raw, ok)
		live, purged = rec, expired
		if expired {
			return Delete, ""
		}
		return Keep, ""
	}
	if err := s.update(ctx, fn); err != nil {
		return nil, fmt.Errorf("purge expired entitlement: %w", err)
	}
	if purged {
		s.log.WithField("key", s.cfg.StorageKey).Debug("purged expired entitlement")
	}
	return live, nil
}

func (s *Service) inspect(raw string, ok bool) (*entitlements.Record, bool) {
	if !ok {
		return nil, false
	}
	rec, err := entitlements.Decode(raw)
	if err != nil {
		s.log.WithField("key", s.cfg.StorageKey).Debug("ignoring unreadable entitlement")
		return nil, false
	}
	if rec.Expired(s.clock.Now()) {
		return nil, true
	}
	return rec, false
}

// Consume takes one print. It reports false without error when there is no
// live entitlement or no prints remain.
func (s *Service) Consume(ctx context.Context) (bool, error) {
	_, err := s.ConsumeRecord(ctx)
	switch {
	case errors.Is(err, entitlements.ErrNoEntitlement), errors.Is(err, entitlements.ErrQuotaExhausted):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// ConsumeRecord is Consume returning the updated record, or
// ErrNoEntitlement / ErrQuotaExhausted.
func (s *Service) ConsumeRecord(ctx context.Context) (*entitlements.Record, error) {
	var (
		out     *entitlements.Record
		outcome error
	)
	fn := func(raw string, ok bool) (Mutation, string) {
		out, outcome = nil, nil
		rec, expired := s.inspect(raw, ok)
		switch {
		case expired:
			outcome = entitlements.ErrNoEntitlement
			return Delete, ""
		case rec == nil:
			outcome = entitlements.ErrNoEntitlement
			return Keep, ""
		case rec.Exhausted():
			outcome = entitlements.ErrQuotaExhausted
			return Keep, ""
		}
		next := *rec
		next.PrintCount--
		enc, err := next.Encode()
		if err != nil {
			outcome = fmt.Errorf("encode entitlement: %w", err)
			return Keep, ""
		}
		out = &next
		return Put, enc
	}
	if err := s.update(ctx, fn); err != nil {
		return nil, fmt.Errorf("consume print: %w", err)
	}
	if outcome != nil {
		return nil, outcome
	}

	s.logEvent(ctx, "consumed", func(e EventLogger) error { return e.LogConsumed(ctx, *out) })
	if err := s.RefreshBadge(ctx); err != nil {
		s.log.WithError(err).Warn("badge refresh failed after consume")
	}
	return out, nil
}

func (s *Service) update(ctx context.Context, fn UpdateFunc) error {
	if u, ok := s.store.(Updater); ok {
		return u.Update(ctx, s.cfg.StorageKey, fn)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.store.Get(ctx, s.cfg.StorageKey)
	if err != nil {
		return err
	}
	switch m, next := fn(raw, ok); m {
	case Put:
		return s.store.Set(ctx, s.cfg.StorageKey, next)
	case Delete:
		return s.store.Del(ctx, s.cfg.StorageKey)
	}
	return nil
}

// RefreshBadge re-renders the badge from the current status. The renderer
// always runs, with a nil record when the status cannot be read.
func (s *Service) RefreshBadge(ctx context.Context) error {
	if s.renderer == nil {
		return nil
	}
	rec, err := s.Status(ctx)
	if err != nil {
		_ = s.renderer.Render(ctx, nil)
		return err
	}
	return s.renderer.Render(ctx, rec)
}

// Sweep purges expired records when the store supports it.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	sw, ok := s.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sw.Sweep(ctx, s.clock.Now())
}

func (s *Service) notify(ctx context.Context, n Notice) error {
	if s.notifier == nil {
		s.log.WithField("kind", n.Kind).Debug(n.Message)
		return nil
	}
	return s.notifier.Notify(ctx, n)
}

func (s *Service) logEvent(ctx context.Context, name string, fn func(EventLogger) error) {
	if s.events == nil {
		return
	}
	if err := fn(s.events); err != nil {
		s.log.WithError(err).WithField("event", name).Warn("event logger failed")
	}
}
