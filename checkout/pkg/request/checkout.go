package request

import (
	"github.com/rs/zerolog"
)

const (
	ModeWhatsapp       = "whatsapp"
	ModeCashOnDelivery = "cod"
	ModePaystack       = "paystack"
)

type Checkout struct {
	Name    string `json:"name"    validate:"required,notblank"`
	Phone   string `json:"phone"   validate:"required,notblank"`
	Address string `json:"address" validate:"required,notblank"`
	Note    string `json:"note"`
	Email   string `json:"email"   validate:"omitempty,email"`
	Mode    string `json:"mode"    validate:"required,oneof=whatsapp cod paystack"`
}

func (r Checkout) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", r.Name).
		Str("address", r.Address).
		Str("mode", r.Mode).
		Bool("hasNote", r.Note != "")
}

type ConfirmPayment struct {
	Reference string `json:"reference" validate:"required,notblank"`
}
