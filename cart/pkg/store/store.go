package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/focushoney/cart/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
)

const (
	TargetLocal  = "local"
	TargetRemote = "remote"
)

// Persister reads and writes one serialized cart, either device-local or remote.
type Persister interface {
	Load(c context.Context) ([]response.CartItem, bool, error)
	Save(c context.Context, items []response.CartItem) error
	Delete(c context.Context) error
	Target() string
}

// Store is the cart of one session. Mutations are computed on a copy, written to the
// active persister and only then committed in memory. A failed load leaves the store
// stale and the next access loads again.
type Store struct {
	mu     sync.Mutex
	items  []response.CartItem
	active Persister
	others []Persister
	stale  bool
}

func New(active Persister, others ...Persister) *Store {
	return &Store{active: active, others: others, stale: true, items: []response.CartItem{}}
}

func (s *Store) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Target()
}

func (s *Store) ensureLoaded(c context.Context) error {
	if !s.stale {
		return nil
	}

	c, span := otel.Tracer.Start(c, "Store load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store load").
		Str(log.KeyPersistenceTarget, s.active.Target()).
		Logger()

	logger.Trace().Msg("loading cart")
	items, found, err := s.active.Load(c)
	if err != nil {
		err = fmt.Errorf("failed loading cart from target=%s with error=%w", s.active.Target(), errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if !found || items == nil {
		items = []response.CartItem{}
	}
	s.items = items
	s.stale = false
	logger.Trace().Int(log.KeyCartItemsCount, len(items)).Msg("loaded cart")
	return nil
}

func (s *Store) commit(c context.Context, next []response.CartItem) error {
	if err := s.active.Save(c, next); err != nil {
		return fmt.Errorf("failed saving cart to target=%s with error=%w", s.active.Target(), errors.Join(err, commonErrors.ErrPersistence))
	}
	s.items = next
	return nil
}

func (s *Store) Items(c context.Context) ([]response.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(c); err != nil {
		return nil, err
	}
	return response.Clone(s.items), nil
}

func (s *Store) Cart(c context.Context) (response.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(c); err != nil {
		return response.Cart{}, err
	}
	return response.Cart{
		Items:  response.Clone(s.items),
		Total:  response.Total(s.items),
		Count:  response.Count(s.items),
		Target: s.active.Target(),
	}, nil
}

func (s *Store) Total(c context.Context) (decimal.Decimal, error) {
	cart, err := s.Cart(c)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total, nil
}

func (s *Store) Count(c context.Context) (int, error) {
	cart, err := s.Cart(c)
	if err != nil {
		return 0, err
	}
	return cart.Count, nil
}

func (s *Store) mutate(
	c context.Context,
	name string,
	reduce func([]response.CartItem) ([]response.CartItem, bool),
) ([]response.CartItem, error) {
	c, span := otel.Tracer.Start(c, "Store "+name)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store "+name).
		Str(log.KeyPersistenceTarget, s.active.Target()).
		Logger()

	if err := s.ensureLoaded(c); err != nil {
		otel.RecordError(err, span)
		return nil, err
	}

	next, changed := reduce(s.items)
	if !changed {
		logger.Trace().Msg("cart unchanged")
		return response.Clone(s.items), nil
	}

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Trace().Msg("saving cart")
	if err := s.commit(c, next); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(log.KeyCartItemsCount, len(next)).Msg("saved cart")

	return response.Clone(s.items), nil
}

// Add increments the quantity of an existing entry or appends the item with quantity 1.
func (s *Store) Add(c context.Context, item response.CartItem) ([]response.CartItem, error) {
	return s.mutate(c, "Add", func(items []response.CartItem) ([]response.CartItem, bool) {
		return addItem(items, item), true
	})
}

func (s *Store) Remove(c context.Context, id string) ([]response.CartItem, error) {
	return s.mutate(c, "Remove", func(items []response.CartItem) ([]response.CartItem, bool) {
		return removeItem(items, id)
	})
}

func (s *Store) SetQuantity(c context.Context, id string, quantity int) ([]response.CartItem, error) {
	return s.mutate(c, "SetQuantity", func(items []response.CartItem) ([]response.CartItem, bool) {
		return setQuantity(items, id, quantity)
	})
}

// Clear empties the cart and deletes it from every persister the store knows about.
func (s *Store) Clear(c context.Context) error {
	c, span := otel.Tracer.Start(c, "Store Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Clear").
		Str(log.KeyPersistenceTarget, s.active.Target()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting active cart").Logger()
	logger.Trace().Msg("deleting active cart")
	if err := s.active.Delete(c); err != nil {
		err = fmt.Errorf("failed deleting cart in target=%s with error=%w", s.active.Target(), errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.items = []response.CartItem{}
	s.stale = false
	logger.Trace().Msg("deleted active cart")

	var errs error
	for _, other := range s.others {
		logger = logger.With().Str(log.KeyProcess, "deleting cart in "+other.Target()).Logger()
		logger.Trace().Msg("deleting cart")
		if err := other.Delete(c); err != nil {
			err = fmt.Errorf("failed deleting cart in target=%s with error=%w", other.Target(), err)
			logger.Error().Err(err).Msg(err.Error())
			errs = errors.Join(errs, err)
			continue
		}
		logger.Trace().Msg("deleted cart")
	}
	if errs != nil {
		errs = errors.Join(errs, commonErrors.ErrPersistence)
		otel.RecordError(errs, span)
		return errs
	}
	return nil
}

// Switch replaces the cart with the contents of the new active persister. When the load
// fails the store stays stale on the new persister so the old items are never written to it.
func (s *Store) Switch(c context.Context, active Persister, others ...Persister) ([]response.CartItem, error) {
	c, span := otel.Tracer.Start(c, "Store Switch")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = active
	s.others = others
	s.stale = true
	s.items = []response.CartItem{}
	if err := s.ensureLoaded(c); err != nil {
		otel.RecordError(err, span)
		return nil, err
	}
	return response.Clone(s.items), nil
}

// MergeIn unions incoming into the loaded cart and writes the result once.
func (s *Store) MergeIn(c context.Context, incoming []response.CartItem) ([]response.CartItem, error) {
	return s.mutate(c, "MergeIn", func(items []response.CartItem) ([]response.CartItem, bool) {
		if len(incoming) == 0 {
			return items, false
		}
		return Merge(items, incoming), true
	})
}
