package response

import (
	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/internal/common/money"
)

type Product struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price money.Price `json:"price"`
	Image string      `json:"image"`
	Alt   string      `json:"alt"`
}

func (p Product) CartItem() cartResponse.CartItem {
	return cartResponse.CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Alt:      p.Alt,
		Quantity: 1,
	}
}
