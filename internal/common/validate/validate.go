package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/Alturino/focushoney/internal/common/money"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// New returns the shared validator with the storefront's custom tags registered:
// notblank rejects whitespace-only strings and price accepts "Ghc 50" style text.
func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		_ = validate.RegisterValidation("price", ValidatePrice)
	})
	return validate
}

func ValidatePrice(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := money.Parse(value)
	if err != nil {
		return false
	}
	return d.IsPositive()
}
