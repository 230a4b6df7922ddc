package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `validate:"required,notblank"`
	Price string `validate:"required,price"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   sample
		isValid bool
	}{
		{name: "given filled fields should be valid", input: sample{Name: "Raw Honey", Price: "Ghc 50"}, isValid: true},
		{name: "given blank name should be invalid", input: sample{Name: "   ", Price: "Ghc 50"}, isValid: false},
		{name: "given non numeric price should be invalid", input: sample{Name: "Raw Honey", Price: "Ghc abc"}, isValid: false},
		{name: "given zero price should be invalid", input: sample{Name: "Raw Honey", Price: "0"}, isValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Struct(tt.input)
			if tt.isValid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
