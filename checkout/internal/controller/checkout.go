package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/checkout/internal/service"
	"github.com/Alturino/focushoney/checkout/pkg/request"
	"github.com/Alturino/focushoney/checkout/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/common/validate"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
)

type CheckoutController struct {
	orchestrator *service.Orchestrator
}

// AttachCheckoutController expects the session middleware on mux. Guests may check out
// through the message hand-off, every other mode is rejected by the orchestrator.
func AttachCheckoutController(mux *mux.Router, orchestrator *service.Orchestrator) {
	controller := CheckoutController{orchestrator: orchestrator}

	router := mux.PathPrefix("/checkout").Subrouter()
	router.HandleFunc("", controller.State).Methods(http.MethodGet)
	router.HandleFunc("", controller.Submit).Methods(http.MethodPost)
	router.HandleFunc("", controller.Reset).Methods(http.MethodDelete)
	router.HandleFunc("/payment", controller.ConfirmPayment).Methods(http.MethodPost)
}

func writeCheckout(c context.Context, w http.ResponseWriter, message string, checkout response.Checkout) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data": map[string]interface{}{
			"checkout": checkout,
		},
	})
}

func (ctrl CheckoutController) State(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController State")
	defer span.End()

	writeCheckout(c, w, "successfully get checkout", ctrl.orchestrator.State(session.FromContext(c)))
}

func (ctrl CheckoutController) Submit(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Submit")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CheckoutController Submit").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", errors.Join(err, commonErrors.ErrValidation))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "submitting checkout").Logger()
	logger.Info().Msg("submitting checkout")
	checkout, err := ctrl.orchestrator.Submit(logger.WithContext(c), session.FromContext(c), reqBody)
	if err != nil {
		err = fmt.Errorf("failed submitting checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyCheckoutState, string(checkout.State)).Msg("submitted checkout")

	writeCheckout(c, w, "successfully submitted checkout", checkout)
}

func (ctrl CheckoutController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController ConfirmPayment")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CheckoutController ConfirmPayment").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.ConfirmPayment{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", errors.Join(err, commonErrors.ErrValidation))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", errors.Join(err, commonErrors.ErrValidation))
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Trace().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "confirming payment").
		Str(log.KeyPaymentReference, reqBody.Reference).
		Logger()
	logger.Info().Msg("confirming payment")
	checkout, err := ctrl.orchestrator.ConfirmPayment(logger.WithContext(c), session.FromContext(c), reqBody.Reference)
	if err != nil {
		err = fmt.Errorf("failed confirming payment with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("confirmed payment")

	writeCheckout(c, w, "successfully confirmed payment", checkout)
}

func (ctrl CheckoutController) Reset(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Reset")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CheckoutController Reset").Logger()

	checkout, err := ctrl.orchestrator.Reset(session.FromContext(c))
	if err != nil {
		err = fmt.Errorf("failed resetting checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	writeCheckout(c, w, "successfully reset checkout", checkout)
}
