package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodPaystack       = "Paystack"
	PaymentMethodCashOnDelivery = "Cash on Delivery"

	StatusProcessing = "Processing"
	StatusPending    = "Pending"

	NoteNotApplicable = "N/A"
)

type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Product  string          `json:"product"`
}

type ShippingDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

type Order struct {
	CreatedAt       time.Time       `json:"created_at"`
	OrderItems      []OrderItem     `json:"order_items"`
	ShippingAddress ShippingDetails `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentRef      string          `json:"payment_ref,omitempty"`
	Status          string          `json:"status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
}
