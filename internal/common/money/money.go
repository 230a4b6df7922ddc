// Package money holds the single price parsing rule shared by the cart and checkout.
// Prices may arrive as JSON numbers or as currency-tagged text such as "Ghc 50".
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
)

const CurrencyPrefix = "Ghc "

func Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, strings.TrimSpace(CurrencyPrefix))
	trimmed = strings.TrimSpace(trimmed)
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		err = fmt.Errorf("failed parsing price=%q with error=%w", s, err)
		return decimal.Zero, errors.Join(err, commonErrors.ErrInvalidPrice)
	}
	return d, nil
}

func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Format(d decimal.Decimal) string {
	return CurrencyPrefix + d.String()
}

func FormatFixed(d decimal.Decimal) string {
	return CurrencyPrefix + d.StringFixed(2)
}

// LineTotal returns price multiplied by quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Price is a decimal that accepts both numbers and currency-tagged strings when decoded.
// It always encodes as a JSON number.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

func (p Price) Amount() decimal.Decimal {
	return p.Decimal
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		p.Decimal = decimal.Zero
		return nil
	}

	if b[0] == '"' {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		d, err := Parse(text)
		if err != nil {
			return err
		}
		p.Decimal = d
		return nil
	}

	d, err := decimal.NewFromString(string(b))
	if err != nil {
		err = fmt.Errorf("failed parsing price=%s with error=%w", string(b), err)
		return errors.Join(err, commonErrors.ErrInvalidPrice)
	}
	p.Decimal = d
	return nil
}
