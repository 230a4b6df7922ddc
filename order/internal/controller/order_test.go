package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/focushoney/internal/common"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/middleware"
	"github.com/Alturino/focushoney/order/internal/service"
	"github.com/Alturino/focushoney/order/pkg/response"
)

const secret = "secret"

type fakeOrderStore struct {
	orders []response.Order
}

func (f fakeOrderStore) FindOrdersByUserID(c context.Context, userID uuid.UUID) ([]response.Order, error) {
	orders := []response.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f fakeOrderStore) FindOrderByID(c context.Context, userID uuid.UUID, orderID uuid.UUID) (response.Order, error) {
	for _, o := range f.orders {
		if o.UserID == userID && o.ID == orderID {
			return o, nil
		}
	}
	return response.Order{}, commonErrors.ErrOrderNotFound
}

func TestOrderController(t *testing.T) {
	userID := uuid.New()
	token, err := common.NewToken(userID, secret, time.Now())
	require.NoError(t, err)

	order := response.Order{
		ID:            uuid.MustParse("5f0c2a1e-8b7d-4c3e-9a1b-0e2f3d4c5b6a"),
		UserID:        userID,
		CreatedAt:     time.Now(),
		OrderItems:    []response.OrderItem{{Name: "Raw Honey 500ml", Quantity: 1, Price: decimal.NewFromInt(50)}},
		PaymentMethod: response.PaymentMethodPaystack,
		PaymentRef:    "ref-1",
		Status:        response.StatusProcessing,
		TotalPrice:    decimal.NewFromInt(50),
	}

	router := mux.NewRouter()
	router.Use(middleware.Session(secret))
	AttachOrderController(router, service.NewOrderService(fakeOrderStore{orders: []response.Order{order}}))

	testCases := []struct {
		name         string
		path         string
		token        string
		expectedCode int
		check        func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:         "guest is rejected",
			path:         "/orders",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "list orders",
			path:         "/orders",
			token:        token,
			expectedCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := struct {
					Data struct {
						Orders []response.Order `json:"orders"`
					} `json:"data"`
				}{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				require.Len(t, body.Data.Orders, 1)
				assert.Equal(t, order.ID, body.Data.Orders[0].ID)
				assert.Equal(t, response.StatusProcessing, body.Data.Orders[0].Status)
			},
		},
		{
			name:         "invalid order id",
			path:         "/orders/not-a-uuid",
			token:        token,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown order",
			path:         "/orders/" + uuid.NewString(),
			token:        token,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "download receipt",
			path:         "/orders/" + order.ID.String() + "/receipt?name=Ama%20Mensah",
			token:        token,
			expectedCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, inHttp.HeaderValuePdf, rec.Header().Get(inHttp.HeaderContentType))
				assert.Equal(
					t,
					`attachment; filename="FocusHoney_Ama_Mensah_Order_4c5b6a.pdf"`,
					rec.Header().Get(inHttp.HeaderContentDisposition),
				)
				assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set(inHttp.HeaderDeviceID, "device-1")
			if tc.token != "" {
				req.Header.Set(inHttp.HeaderAuthorization, "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.check != nil {
				tc.check(t, rec)
			}
		})
	}
}
