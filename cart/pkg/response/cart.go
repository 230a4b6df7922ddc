package response

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/focushoney/internal/common/money"
)

type CartItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    money.Price `json:"price"`
	Image    string      `json:"image"`
	Alt      string      `json:"alt,omitempty"`
	Quantity int         `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return money.LineTotal(i.Price.Amount(), i.Quantity)
}

type Cart struct {
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
	Target string          `json:"target"`
}

func Total(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func Count(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func Clone(items []CartItem) []CartItem {
	cloned := make([]CartItem, len(items))
	copy(cloned, items)
	return cloned
}
