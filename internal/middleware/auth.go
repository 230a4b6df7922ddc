package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/internal/common"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/log"
)

func bearerToken(r *http.Request) (string, bool) {
	authorization := strings.TrimSpace(r.Header.Get(inHttp.HeaderAuthorization))
	if authorization == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Session resolves the identity of the caller. X-Device-ID is mandatory; a bearer token
// is verified when present and attached to the request context.
func Session(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Session").Logger()
			c := r.Context()

			deviceID := strings.TrimSpace(r.Header.Get(inHttp.HeaderDeviceID))
			if deviceID == "" {
				err := commonErrors.ErrMissingDeviceID
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}
			logger = logger.With().Str(log.KeyDeviceID, deviceID).Logger()
			c = common.AttachDeviceID(c, deviceID)

			if token, ok := bearerToken(r); ok {
				jwtToken, err := common.VerifyToken(c, token, secretKey)
				if err != nil {
					err = fmt.Errorf("failed verifying token with error=%w", err)
					logger.Error().Err(err).Msg(err.Error())
					inHttp.WriteErrorResponse(c, w, err)
					return
				}
				c = common.AttachJwtToken(c, jwtToken)
			}

			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

// Auth rejects requests without a valid bearer token. It expects Session to run first.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
		c := r.Context()

		if _, ok := bearerToken(r); !ok {
			err := commonErrors.ErrEmptyAuth
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}

		userID, err := common.UserIdFromJwtToken(c)
		if err != nil {
			err = fmt.Errorf("failed getting user id from token with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}

		c = logger.With().Str(log.KeyUserID, userID.String()).Logger().WithContext(c)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
