package repository

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (c Cart) Response() ([]cartResponse.CartItem, error) {
	items := []cartResponse.CartItem{}
	if len(c.Items) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(c.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (o Order) Response() (orderResponse.Order, error) {
	orderItems := []orderResponse.OrderItem{}
	if err := json.Unmarshal(o.OrderItems, &orderItems); err != nil {
		return orderResponse.Order{}, err
	}
	return orderResponse.Order{
		ID:         o.ID,
		UserID:     o.UserID,
		OrderItems: orderItems,
		ShippingAddress: orderResponse.ShippingDetails{
			Name:    o.ShippingName,
			Phone:   o.ShippingPhone,
			Address: o.ShippingAddress,
			Note:    o.ShippingNote,
		},
		PaymentMethod: o.PaymentMethod,
		PaymentRef:    o.PaymentRef.String,
		Status:        o.Status,
		TotalPrice:    DecimalFromNumeric(o.TotalPrice),
		CreatedAt:     o.CreatedAt.Time,
	}, nil
}

func InsertOrderParamsFrom(o orderResponse.Order) (InsertOrderParams, error) {
	orderItems, err := json.Marshal(o.OrderItems)
	if err != nil {
		return InsertOrderParams{}, err
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return InsertOrderParams{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderItems:      orderItems,
		ShippingName:    o.ShippingAddress.Name,
		ShippingPhone:   o.ShippingAddress.Phone,
		ShippingAddress: o.ShippingAddress.Address,
		ShippingNote:    o.ShippingAddress.Note,
		PaymentMethod:   o.PaymentMethod,
		PaymentRef:      pgtype.Text{String: o.PaymentRef, Valid: o.PaymentRef != ""},
		Status:          o.Status,
		TotalPrice:      NumericFromDecimal(o.TotalPrice),
		CreatedAt:       pgtype.Timestamptz{Time: createdAt, Valid: true},
	}, nil
}
