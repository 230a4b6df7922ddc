package request

import "github.com/Alturino/focushoney/internal/config"

type Product struct {
	ID    string `validate:"required,notblank" json:"id"`
	Name  string `validate:"required,notblank" json:"name"`
	Price string `validate:"required,price"    json:"price"`
	Image string `validate:"required,notblank" json:"image"`
	Alt   string `json:"alt"`
}

func FromConfig(p config.Product) Product {
	return Product{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image, Alt: p.Alt}
}
