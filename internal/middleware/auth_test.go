package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/focushoney/internal/common"
	inHttp "github.com/Alturino/focushoney/internal/common/http"
)

const secret = "secret"

func TestSessionAndAuth(t *testing.T) {
	userID := uuid.New()
	validToken, err := common.NewToken(userID, secret, time.Now())
	assert.NoError(t, err)

	tests := []struct {
		name          string
		deviceID      string
		authorization string
		requireAuth   bool
		expected      int
	}{
		{
			name:     "given no device id should return bad request",
			expected: http.StatusBadRequest,
		},
		{
			name:     "given guest device should pass session",
			deviceID: "device-1",
			expected: http.StatusOK,
		},
		{
			name:          "given invalid token should return unauthorized",
			deviceID:      "device-1",
			authorization: "Bearer garbage",
			expected:      http.StatusUnauthorized,
		},
		{
			name:        "given guest on authenticated route should return unauthorized",
			deviceID:    "device-1",
			requireAuth: true,
			expected:    http.StatusUnauthorized,
		},
		{
			name:          "given valid token on authenticated route should pass",
			deviceID:      "device-1",
			authorization: "Bearer " + validToken,
			requireAuth:   true,
			expected:      http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.deviceID, common.DeviceIDFromContext(r.Context()))
				if tt.authorization != "" {
					actual, err := common.UserIdFromJwtToken(r.Context())
					assert.NoError(t, err)
					assert.Equal(t, userID, actual)
				}
				w.WriteHeader(http.StatusOK)
			})
			if tt.requireAuth {
				handler = Auth(handler)
			}
			handler = Session(secret)(handler)

			r := httptest.NewRequest(http.MethodGet, "/carts", nil)
			if tt.deviceID != "" {
				r.Header.Set(inHttp.HeaderDeviceID, tt.deviceID)
			}
			if tt.authorization != "" {
				r.Header.Set(inHttp.HeaderAuthorization, tt.authorization)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
