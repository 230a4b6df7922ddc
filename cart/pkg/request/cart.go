package request

type AddItem struct {
	ProductID string `validate:"required,notblank" json:"product_id"`
}

// UpdateQuantity removes the item when Quantity is zero or negative.
type UpdateQuantity struct {
	Quantity *int `validate:"required" json:"quantity"`
}
