package request

type Verify struct {
	Reference string `validate:"required,notblank" json:"reference"`
}
