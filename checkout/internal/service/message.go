package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/checkout/pkg/request"
	"github.com/Alturino/focushoney/internal/common/money"
)

// OrderMessage is the prefilled text handed to the shop's messaging account.
func OrderMessage(items []cartResponse.CartItem, total decimal.Decimal, details request.Checkout) string {
	b := strings.Builder{}
	b.WriteString("Hello! I want:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%d x %s\n", item.Quantity, item.Name)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n", money.Format(total))
	fmt.Fprintf(&b, "Name: %s\n", strings.TrimSpace(details.Name))
	fmt.Fprintf(&b, "Delivery Address: %s\n", strings.TrimSpace(details.Address))
	fmt.Fprintf(&b, "Contact Number: %s", strings.TrimSpace(details.Phone))
	if note := strings.TrimSpace(details.Note); note != "" {
		fmt.Fprintf(&b, "\nNote: %s", note)
	}
	return b.String()
}

// MessageURL builds https://wa.me/<digits>?text=<message> with spaces encoded as %20.
func MessageURL(phone string, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
