package common

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	c := context.Background()
	userID := uuid.New()

	token, err := NewToken(userID, "secret", time.Now())
	require.NoError(t, err)

	jwtToken, err := VerifyToken(c, token, "secret")
	require.NoError(t, err)

	c = AttachJwtToken(c, jwtToken)
	actual, err := UserIdFromJwtToken(c)
	require.NoError(t, err)
	assert.Equal(t, userID, actual)
}

func TestVerifyToken(t *testing.T) {
	tests := []struct {
		name   string
		token  func() string
		secret string
	}{
		{
			name: "given token signed with another secret should return invalid token",
			token: func() string {
				token, _ := NewToken(uuid.New(), "other", time.Now())
				return token
			},
			secret: "secret",
		},
		{
			name: "given expired token should return invalid token",
			token: func() string {
				token, _ := NewToken(uuid.New(), "secret", time.Now().Add(-2*TokenTTL))
				return token
			},
			secret: "secret",
		},
		{
			name:   "given garbage should return invalid token",
			token:  func() string { return "not-a-token" },
			secret: "secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(context.Background(), tt.token(), tt.secret)
			assert.ErrorIs(t, err, commonErrors.ErrTokenInvalid)
		})
	}
}

func TestUserIdFromJwtTokenWithoutToken(t *testing.T) {
	_, err := UserIdFromJwtToken(context.Background())
	assert.ErrorIs(t, err, commonErrors.ErrAuthRequired)
}
