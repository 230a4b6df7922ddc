package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/focushoney/internal/common"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/repository"
	"github.com/Alturino/focushoney/user/pkg/auth"
	"github.com/Alturino/focushoney/user/pkg/request"
)

type fakeUserStore struct {
	users map[string]repository.User
}

func (f *fakeUserStore) InsertUser(c context.Context, arg repository.InsertUserParams) (repository.User, error) {
	if _, ok := f.users[arg.Email]; ok {
		return repository.User{}, commonErrors.ErrUserAlreadyExists
	}
	user := repository.User{ID: arg.ID, Email: arg.Email, DisplayName: arg.DisplayName, Password: arg.Password}
	f.users[arg.Email] = user
	return user, nil
}

func (f *fakeUserStore) FindUserByEmail(c context.Context, email string) (repository.User, error) {
	user, ok := f.users[email]
	if !ok {
		return repository.User{}, commonErrors.ErrUserNotFound
	}
	return user, nil
}

func TestUserService(t *testing.T) {
	c := context.Background()
	changes := []auth.StateChange{}
	notifier := auth.NewNotifier()
	notifier.Subscribe(auth.ListenerFunc(func(c context.Context, change auth.StateChange) error {
		changes = append(changes, change)
		return nil
	}))
	svc := NewUserService(&fakeUserStore{users: map[string]repository.User{}}, notifier, "secret")

	registered, err := svc.Register(c, "device-1", request.Register{
		DisplayName: " Ama Mensah ",
		Email:       "Ama@FocusHoney.com",
		Password:    "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ama@focushoney.com", registered.User.Email)
	assert.Equal(t, "Ama Mensah", registered.User.DisplayName)

	_, err = svc.Register(c, "device-1", request.Register{DisplayName: "Ama", Email: "ama@focushoney.com", Password: "secret1"})
	assert.ErrorIs(t, err, commonErrors.ErrUserAlreadyExists)

	_, err = svc.Login(c, "device-2", request.Login{Email: "ama@focushoney.com", Password: "wrong"})
	assert.ErrorIs(t, err, commonErrors.ErrInvalidCredentials)

	_, err = svc.Login(c, "device-2", request.Login{Email: "kofi@focushoney.com", Password: "secret1"})
	assert.ErrorIs(t, err, commonErrors.ErrInvalidCredentials)

	login, err := svc.Login(c, "device-2", request.Login{Email: "ama@focushoney.com", Password: "secret1"})
	require.NoError(t, err)
	token, err := common.VerifyToken(c, login.Token, "secret")
	require.NoError(t, err)
	subject, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID.String(), subject)
	assert.WithinDuration(t, time.Now().Add(common.TokenTTL), login.ExpiresAt, time.Minute)

	require.NoError(t, svc.Logout(c, "device-2", registered.User.ID))

	assert.Equal(t, []auth.StateChange{
		{DeviceID: "device-1", UserID: registered.User.ID, SignedIn: true},
		{DeviceID: "device-2", UserID: registered.User.ID, SignedIn: true},
		{DeviceID: "device-2", UserID: registered.User.ID, SignedIn: false},
	}, changes)
}

func TestLoginSucceedsWhenSubscriberFails(t *testing.T) {
	c := context.Background()
	notifier := auth.NewNotifier()
	notifier.Subscribe(auth.ListenerFunc(func(c context.Context, change auth.StateChange) error {
		return errors.New("remote store unavailable")
	}))
	store := &fakeUserStore{users: map[string]repository.User{}}
	svc := NewUserService(store, notifier, "secret")

	_, err := svc.Register(c, "device-1", request.Register{DisplayName: "Ama", Email: "ama@focushoney.com", Password: "secret1"})
	require.NoError(t, err)

	login, err := svc.Login(c, "device-1", request.Login{Email: "ama@focushoney.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.NotEqual(t, uuid.Nil, login.User.ID)
}
