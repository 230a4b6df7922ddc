package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	DisplayName string `validate:"required,notblank" json:"display_name"`
	Email       string `validate:"required,email"    json:"email"`
	Password    string `validate:"required,min=6"    json:"password"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("display_name", r.DisplayName).Str("password", "***")
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R Register
	return json.Marshal(R(r))
}
