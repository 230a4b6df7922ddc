package receipt

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/focushoney/order/pkg/response"
)

func TestFilename(t *testing.T) {
	testCases := []struct {
		name     string
		customer string
		orderID  string
		expected string
	}{
		{
			name:     "spaces become underscores",
			customer: "Ama Serwaa Mensah",
			orderID:  "5f0c2a1e-8b7d-4c3e-9a1b-0e2f3d4c5b6a",
			expected: "FocusHoney_Ama_Serwaa_Mensah_Order_4c5b6a.pdf",
		},
		{
			name:     "missing name falls back",
			customer: "",
			orderID:  "abcdef123456",
			expected: "FocusHoney_Customer_Order_123456.pdf",
		},
		{
			name:     "short order id is kept whole",
			customer: "Kofi",
			orderID:  "abc",
			expected: "FocusHoney_Kofi_Order_abc.pdf",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Filename(tc.customer, tc.orderID))
		})
	}
}

func TestRender(t *testing.T) {
	orderID := uuid.MustParse("5f0c2a1e-8b7d-4c3e-9a1b-0e2f3d4c5b6a")
	order := response.Order{
		ID:        orderID,
		CreatedAt: time.Date(2024, 12, 1, 10, 30, 0, 0, time.UTC),
		OrderItems: []response.OrderItem{
			{Name: "Raw Honey 500ml", Quantity: 2, Price: decimal.NewFromInt(50)},
			{Name: "Hibiscus Honey 250ml", Quantity: 1, Price: decimal.NewFromInt(45)},
		},
		PaymentMethod: response.PaymentMethodCashOnDelivery,
		Status:        response.StatusPending,
		TotalPrice:    decimal.NewFromInt(145),
	}

	receipt, err := Render(context.Background(), order, "Ama Mensah")
	require.NoError(t, err)
	assert.Equal(t, "FocusHoney_Ama_Mensah_Order_4c5b6a.pdf", receipt.Filename)
	assert.True(t, bytes.HasPrefix(receipt.Content, []byte("%PDF-")))
	assert.Greater(t, len(receipt.Content), 500)
}
