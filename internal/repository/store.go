package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
)

const (
	pgUniqueViolation    = "23505"
	orderPaymentRefIndex = "orders_payment_ref_key"
)

// Store is the remote document store holding users, per-user carts and orders.
type Store interface {
	InsertUser(c context.Context, arg InsertUserParams) (User, error)
	FindUserByEmail(c context.Context, email string) (User, error)

	FindCart(c context.Context, userID uuid.UUID) ([]cartResponse.CartItem, bool, error)
	SaveCart(c context.Context, userID uuid.UUID, items []cartResponse.CartItem) error
	DeleteCart(c context.Context, userID uuid.UUID) error

	InsertOrder(c context.Context, order orderResponse.Order) (orderResponse.Order, error)
	FindOrdersByUserID(c context.Context, userID uuid.UUID) ([]orderResponse.Order, error)
	FindOrderByID(c context.Context, userID uuid.UUID, orderID uuid.UUID) (orderResponse.Order, error)
}

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	queries *Queries
}

func NewPostgresStore(queries *Queries) *PostgresStore {
	return &PostgresStore{queries: queries}
}

func (s *PostgresStore) InsertUser(c context.Context, arg InsertUserParams) (User, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore InsertUser")
	defer span.End()

	user, err := s.queries.InsertUser(c, arg)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			err = errors.Join(err, commonErrors.ErrUserAlreadyExists)
		} else {
			err = errors.Join(err, commonErrors.ErrPersistence)
		}
		err = fmt.Errorf("failed inserting user with error=%w", err)
		otel.RecordError(err, span)
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) FindUserByEmail(c context.Context, email string) (User, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore FindUserByEmail")
	defer span.End()

	user, err := s.queries.FindUserByEmail(c, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, commonErrors.ErrUserNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding user by email with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) FindCart(c context.Context, userID uuid.UUID) ([]cartResponse.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresStore FindCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cart, err := s.queries.FindCartByUserId(c, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Trace().Msg("cart not found")
		return nil, false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}

	items, err := cart.Response()
	if err != nil {
		err = fmt.Errorf("failed decoding cart items with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	return items, true, nil
}

func (s *PostgresStore) SaveCart(c context.Context, userID uuid.UUID, items []cartResponse.CartItem) error {
	c, span := otel.Tracer.Start(c, "PostgresStore SaveCart")
	defer span.End()

	if items == nil {
		items = []cartResponse.CartItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed encoding cart items with error=%w", err)
		otel.RecordError(err, span)
		return err
	}

	if err = s.queries.UpsertCart(c, UpsertCartParams{UserID: userID, Items: encoded}); err != nil {
		err = fmt.Errorf("failed upserting cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return err
	}
	return nil
}

func (s *PostgresStore) DeleteCart(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "PostgresStore DeleteCart")
	defer span.End()

	if err := s.queries.DeleteCartByUserId(c, userID); err != nil {
		err = fmt.Errorf("failed deleting cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return err
	}
	return nil
}

func (s *PostgresStore) InsertOrder(c context.Context, order orderResponse.Order) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore InsertOrder")
	defer span.End()

	params, err := InsertOrderParamsFrom(order)
	if err != nil {
		err = fmt.Errorf("failed mapping order with error=%w", err)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}

	inserted, err := s.queries.InsertOrder(c, params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == orderPaymentRefIndex {
			err = errors.Join(err, commonErrors.ErrPaymentRefUsed, commonErrors.ErrVerificationFailed)
		} else {
			err = errors.Join(err, commonErrors.ErrPersistence)
		}
		err = fmt.Errorf("failed inserting order with error=%w", err)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	return inserted.Response()
}

func (s *PostgresStore) FindOrdersByUserID(c context.Context, userID uuid.UUID) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore FindOrdersByUserID")
	defer span.End()

	rows, err := s.queries.FindOrdersByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return nil, err
	}

	orders := make([]orderResponse.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.Response()
		if err != nil {
			err = fmt.Errorf("failed mapping order id=%s with error=%w", row.ID, errors.Join(err, commonErrors.ErrPersistence))
			otel.RecordError(err, span)
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *PostgresStore) FindOrderByID(c context.Context, userID uuid.UUID, orderID uuid.UUID) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "PostgresStore FindOrderByID")
	defer span.End()

	row, err := s.queries.FindOrderById(c, FindOrderByIdParams{ID: orderID, UserID: userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return orderResponse.Order{}, commonErrors.ErrOrderNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	return row.Response()
}
