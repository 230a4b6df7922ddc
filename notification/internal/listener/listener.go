// Package listener turns order-created events into shop owner notices.
package listener

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/internal/common/money"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/order/pkg/event"
)

// Notice is the single line the shop owner reads for a new order.
func Notice(e event.OrderCreated) string {
	items := make([]string, 0, len(e.Order.OrderItems))
	for _, item := range e.Order.OrderItems {
		items = append(items, fmt.Sprintf("%d x %s", item.Quantity, item.Name))
	}
	return fmt.Sprintf(
		"New order %s from %s (%s): %s. Total %s, %s, %s",
		e.Order.ID,
		e.Order.ShippingAddress.Name,
		e.Order.ShippingAddress.Phone,
		strings.Join(items, ", "),
		money.FormatFixed(e.Order.TotalPrice),
		e.Order.PaymentMethod,
		e.Order.Status,
	)
}

func NotifyOwner(c context.Context, e event.OrderCreated) error {
	_, span := otel.Tracer.Start(c, "listener NotifyOwner")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "listener NotifyOwner").
		Str(log.KeyOrderID, e.Order.ID.String()).
		Str(log.KeyUserID, e.Order.UserID.String()).
		Logger()

	if e.Order.ID == uuid.Nil {
		err := errors.New("order-created event without order id")
		otel.RecordError(err, span)
		return err
	}

	logger.Info().
		Str("shippingAddress", e.Order.ShippingAddress.Address).
		Str("shippingNote", e.Order.ShippingAddress.Note).
		Msg(Notice(e))
	return nil
}
