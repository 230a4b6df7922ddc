package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/order/internal/receipt"
	"github.com/Alturino/focushoney/order/pkg/response"
)

type OrderStore interface {
	FindOrdersByUserID(c context.Context, userID uuid.UUID) ([]response.Order, error)
	FindOrderByID(c context.Context, userID uuid.UUID, orderID uuid.UUID) (response.Order, error)
}

type OrderService struct {
	store OrderStore
}

func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store}
}

// ListOrders returns every order of userID, newest first.
func (s *OrderService) ListOrders(c context.Context, userID uuid.UUID) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ListOrders").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	orders, err := s.store.FindOrdersByUserID(c, userID)
	if err != nil {
		if !errors.Is(err, commonErrors.ErrPersistence) {
			err = errors.Join(err, commonErrors.ErrPersistence)
		}
		err = fmt.Errorf("failed finding orders with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("ordersCount", len(orders)).Msg("found orders")

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if orders == nil {
		orders = []response.Order{}
	}

	return orders, nil
}

func (s *OrderService) FindOrder(c context.Context, userID uuid.UUID, orderID uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrder").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Info().Msg("finding order")
	order, err := s.store.FindOrderByID(c, userID, orderID)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order")

	return order, nil
}

func (s *OrderService) ExportReceipt(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
	customerName string,
) (receipt.Receipt, error) {
	c, span := otel.Tracer.Start(c, "OrderService ExportReceipt")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService ExportReceipt").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	order, err := s.FindOrder(logger.WithContext(c), userID, orderID)
	if err != nil {
		err = fmt.Errorf("failed exporting receipt with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return receipt.Receipt{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "rendering receipt").Logger()
	logger.Info().Msg("rendering receipt")
	rec, err := receipt.Render(logger.WithContext(c), order, customerName)
	if err != nil {
		err = fmt.Errorf("failed rendering receipt with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return receipt.Receipt{}, err
	}
	logger.Info().Str("filename", rec.Filename).Msg("rendered receipt")

	return rec, nil
}
