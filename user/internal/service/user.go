package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/focushoney/internal/common"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/internal/repository"
	"github.com/Alturino/focushoney/user/pkg/auth"
	"github.com/Alturino/focushoney/user/pkg/request"
	"github.com/Alturino/focushoney/user/pkg/response"
)

type UserStore interface {
	InsertUser(c context.Context, arg repository.InsertUserParams) (repository.User, error)
	FindUserByEmail(c context.Context, email string) (repository.User, error)
}

type UserService struct {
	store     UserStore
	notifier  *auth.Notifier
	secretKey string
	now       func() time.Time
}

func NewUserService(store UserStore, notifier *auth.Notifier, secretKey string) *UserService {
	return &UserService{store: store, notifier: notifier, secretKey: secretKey, now: time.Now}
}

func userResponse(user repository.User) response.User {
	return response.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt.Time,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// signIn issues a token and tells the session resolver that the device is now signed in.
func (u *UserService) signIn(c context.Context, deviceID string, user repository.User) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService signIn")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService signIn").
		Str(log.KeyUserID, user.ID.String()).
		Str(log.KeyDeviceID, deviceID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	logger.Trace().Msg("signing token")
	now := u.now()
	token, err := common.NewToken(user.ID, u.secretKey, now)
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Trace().Msg("signed token")

	logger = logger.With().Str(log.KeyProcess, "publishing sign in").Logger()
	logger.Trace().Msg("publishing sign in")
	err = u.notifier.Publish(c, auth.StateChange{DeviceID: deviceID, UserID: user.ID, SignedIn: true})
	if err != nil {
		// the session resolver applies the transition on the next request anyway
		logger.Warn().Err(err).Msg("failed publishing sign in")
	} else {
		logger.Trace().Msg("published sign in")
	}

	return response.Login{
		User:      userResponse(user),
		Token:     token,
		ExpiresAt: now.Add(common.TokenTTL),
	}, nil
}

func (u *UserService) Login(c context.Context, deviceID string, param request.Login) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	email := normalizeEmail(param.Email)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by email")
	user, err := u.store.FindUserByEmail(c, email)
	if errors.Is(err, commonErrors.ErrUserNotFound) {
		err = fmt.Errorf("failed finding user with error=%w", errors.Join(err, commonErrors.ErrInvalidCredentials))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, commonErrors.ErrInvalidCredentials
	}
	if err != nil {
		err = fmt.Errorf("failed finding user with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Trace().Msg("verifying password")
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password)); err != nil {
		err = fmt.Errorf("failed verifying password with error=%w", errors.Join(err, commonErrors.ErrInvalidCredentials))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, commonErrors.ErrInvalidCredentials
	}
	logger.Trace().Msg("verified password")

	return u.signIn(c, deviceID, user)
}

func (u *UserService) Register(c context.Context, deviceID string, param request.Register) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	email := normalizeEmail(param.Email)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Trace().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", errors.Join(err, commonErrors.ErrFailedHashToken))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Trace().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Info().Msg("inserting user")
	user, err := u.store.InsertUser(c, repository.InsertUserParams{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: strings.TrimSpace(param.DisplayName),
		Password:    string(hashed),
	})
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("inserted user")

	return u.signIn(c, deviceID, user)
}

func (u *UserService) Logout(c context.Context, deviceID string, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "UserService Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Logout").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyDeviceID, deviceID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "publishing sign out").Logger()
	logger.Info().Msg("publishing sign out")
	err := u.notifier.Publish(c, auth.StateChange{DeviceID: deviceID, UserID: userID, SignedIn: false})
	if err != nil {
		err = fmt.Errorf("failed publishing sign out with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("published sign out")
	return nil
}
