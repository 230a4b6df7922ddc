package response

import (
	"github.com/shopspring/decimal"

	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
)

type State string

const (
	StateCollectingDetails           State = "CollectingDetails"
	StateConfirmingOrSubmitting      State = "ConfirmingOrSubmitting"
	StateAwaitingPaymentVerification State = "AwaitingPaymentVerification"
	StateCompleted                   State = "Completed"
	StateFailed                      State = "Failed"
)

const RedirectOrders = "/orders"

// PaymentWidget is what the client-side payment widget needs. Amount is in minor units.
type PaymentWidget struct {
	PublicKey string `json:"public_key"`
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type Checkout struct {
	State      State                `json:"state"`
	Mode       string               `json:"mode,omitempty"`
	Total      decimal.Decimal      `json:"total"`
	MessageURL string               `json:"message_url,omitempty"`
	Payment    *PaymentWidget       `json:"payment,omitempty"`
	Order      *orderResponse.Order `json:"order,omitempty"`
	Redirect   string               `json:"redirect,omitempty"`
	Error      string               `json:"error,omitempty"`
}
