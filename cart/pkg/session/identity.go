package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/Alturino/focushoney/internal/common"
)

// Identity is either a guest device (UserID is uuid.Nil) or an authenticated user on a device.
type Identity struct {
	DeviceID string
	UserID   uuid.UUID
}

func Guest(deviceID string) Identity {
	return Identity{DeviceID: deviceID}
}

func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil
}

// Owner is the order owner tag, the user id or "guest".
func (i Identity) Owner() string {
	if !i.Authenticated() {
		return "guest"
	}
	return i.UserID.String()
}

// FromContext reads the identity attached by the session middleware.
func FromContext(c context.Context) Identity {
	identity := Guest(common.DeviceIDFromContext(c))
	if userID, err := common.UserIdFromJwtToken(c); err == nil {
		identity.UserID = userID
	}
	return identity
}
