package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Set(HeaderContentType, HeaderValueJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"]; ok {
		w.WriteHeader(v.(int))
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msgf("failed encode response body with error=%s", err.Error())
		return
	}
}

func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": StatusFromError(err),
		"message":    err.Error(),
	})
}

// StatusFromError maps the error taxonomy to an HTTP status code.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, commonErrors.ErrValidation),
		errors.Is(err, commonErrors.ErrEmptyCart),
		errors.Is(err, commonErrors.ErrMissingDeviceID),
		errors.Is(err, commonErrors.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, commonErrors.ErrAuthRequired),
		errors.Is(err, commonErrors.ErrEmptyAuth),
		errors.Is(err, commonErrors.ErrTokenInvalid),
		errors.Is(err, commonErrors.ErrEmptySubject),
		errors.Is(err, commonErrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, commonErrors.ErrVerificationFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, commonErrors.ErrProductNotFound),
		errors.Is(err, commonErrors.ErrOrderNotFound),
		errors.Is(err, commonErrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, commonErrors.ErrInvalidTransition),
		errors.Is(err, commonErrors.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, commonErrors.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
