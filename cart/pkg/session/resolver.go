package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/store"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/user/pkg/auth"
)

type PersisterFactory interface {
	Local(deviceID string) store.Persister
	Remote(userID uuid.UUID) store.Persister
}

type Session struct {
	mu       sync.Mutex
	identity Identity
	cart     *store.Store
	lastSeen time.Time
}

func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Session) Cart() *store.Store {
	return s.cart
}

type Option func(*Resolver)

// WithMergeGuestCart unions the guest cart into the remote cart on sign-in instead of
// replacing it.
func WithMergeGuestCart(merge bool) Option {
	return func(r *Resolver) {
		r.mergeGuestCart = merge
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// Resolver owns one session per device and picks the persistence target of its cart.
type Resolver struct {
	mu             sync.Mutex
	sessions       map[string]*Session
	factory        PersisterFactory
	mergeGuestCart bool
	now            func() time.Time
}

var _ auth.Listener = (*Resolver)(nil)

func NewResolver(factory PersisterFactory, opts ...Option) *Resolver {
	r := &Resolver{
		sessions: map[string]*Session{},
		factory:  factory,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) persisters(identity Identity) (store.Persister, []store.Persister) {
	local := r.factory.Local(identity.DeviceID)
	if !identity.Authenticated() {
		return local, nil
	}
	return r.factory.Remote(identity.UserID), []store.Persister{local}
}

func (r *Resolver) session(identity Identity) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[identity.DeviceID]
	if ok {
		return sess, false
	}
	active, others := r.persisters(identity)
	sess = &Session{identity: identity, cart: store.New(active, others...), lastSeen: r.now()}
	r.sessions[identity.DeviceID] = sess
	return sess, true
}

// Resolve returns the session of the device, applying the auth transition when the
// caller's identity differs from the one the session was last resolved with.
func (r *Resolver) Resolve(c context.Context, identity Identity) (*Session, error) {
	c, span := otel.Tracer.Start(c, "Resolver Resolve")
	defer span.End()

	if identity.DeviceID == "" {
		otel.RecordError(commonErrors.ErrMissingDeviceID, span)
		return nil, commonErrors.ErrMissingDeviceID
	}

	sess, created := r.session(identity)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = r.now()
	if created || sess.identity == identity {
		return sess, nil
	}

	if err := r.transition(c, sess, identity); err != nil {
		otel.RecordError(err, span)
		return nil, err
	}
	return sess, nil
}

func (r *Resolver) OnAuthStateChanged(c context.Context, change auth.StateChange) error {
	identity := Guest(change.DeviceID)
	if change.SignedIn {
		identity.UserID = change.UserID
	}
	_, err := r.Resolve(c, identity)
	return err
}

// transition replaces the cart with the one stored for the new identity. Caller holds sess.mu.
func (r *Resolver) transition(c context.Context, sess *Session, to Identity) error {
	c, span := otel.Tracer.Start(c, "Resolver transition")
	defer span.End()

	from := sess.identity
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Resolver transition").
		Str(log.KeyDeviceID, to.DeviceID).
		Str(log.KeyUserID, to.Owner()).
		Logger()

	merge := r.mergeGuestCart && !from.Authenticated() && to.Authenticated()
	var pending []response.CartItem
	if merge {
		logger = logger.With().Str(log.KeyProcess, "reading guest cart").Logger()
		logger.Trace().Msg("reading guest cart")
		items, err := sess.cart.Items(c)
		if err != nil {
			err = fmt.Errorf("failed reading guest cart with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		pending = items
		logger.Trace().Int(log.KeyCartItemsCount, len(items)).Msg("read guest cart")
	}

	logger = logger.With().Str(log.KeyProcess, "switching persistence target").Logger()
	logger.Debug().Msg("switching persistence target")
	active, others := r.persisters(to)
	sess.identity = to
	if _, err := sess.cart.Switch(c, active, others...); err != nil {
		err = fmt.Errorf("failed switching cart to target=%s with error=%w", active.Target(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Debug().Str(log.KeyPersistenceTarget, active.Target()).Msg("switched persistence target")

	if merge && len(pending) > 0 {
		logger = logger.With().Str(log.KeyProcess, "merging guest cart").Logger()
		logger.Debug().Msg("merging guest cart")
		if _, err := sess.cart.MergeIn(c, pending); err != nil {
			err = fmt.Errorf("failed merging guest cart with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Debug().Msg("merged guest cart")
	}
	return nil
}

// Sweep forgets sessions idle for longer than idle. Their carts stay persisted.
func (r *Resolver) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-idle)
	removed := 0
	for deviceID, sess := range r.sessions {
		sess.mu.Lock()
		stale := sess.lastSeen.Before(deadline)
		sess.mu.Unlock()
		if stale {
			delete(r.sessions, deviceID)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until c is done.
func (r *Resolver) RunSweeper(c context.Context, interval time.Duration, idle time.Duration) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Resolver RunSweeper").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(idle); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("swept idle sessions")
			}
		}
	}
}
