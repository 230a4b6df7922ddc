package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/common/validate"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/payment/internal/paystack"
	"github.com/Alturino/focushoney/payment/pkg/request"
	"github.com/Alturino/focushoney/payment/pkg/response"
)

type TransactionVerifier interface {
	VerifyTransaction(c context.Context, reference string) (paystack.Transaction, error)
}

type PaymentController struct {
	verifier TransactionVerifier
}

func AttachPaymentController(mux *mux.Router, verifier TransactionVerifier) {
	controller := PaymentController{verifier: verifier}

	router := mux.PathPrefix("/payments").Subrouter()
	router.HandleFunc("/verify", controller.Verify).Methods(http.MethodPost)
}

func (ctrl PaymentController) Verify(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController Verify")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "PaymentController Verify").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.Verify{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeMessage(c, w, http.StatusBadRequest, "Missing reference")
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeMessage(c, w, http.StatusBadRequest, "Missing reference")
		return
	}
	logger.Trace().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "verifying transaction").
		Str(log.KeyPaymentReference, reqBody.Reference).
		Logger()
	logger.Info().Msg("verifying transaction")
	transaction, err := ctrl.verifier.VerifyTransaction(logger.WithContext(c), reqBody.Reference)
	if err != nil {
		err = fmt.Errorf("failed verifying transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeMessage(c, w, http.StatusBadGateway, "Verification failed")
		return
	}
	logger = logger.With().Str(log.KeyVerificationStatus, transaction.Data.Status).Logger()
	logger.Info().Msg("verified transaction")

	verification := response.Verification{
		Reference: reqBody.Reference,
		Status:    response.StatusFailed,
		Amount:    transaction.Data.Amount,
		Currency:  transaction.Data.Currency,
		Raw:       transaction.Raw,
	}
	if transaction.Data.Status == response.StatusSuccess {
		verification.Status = response.StatusSuccess
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    response.MessageVerified,
			"data":       verification,
		})
		return
	}

	logger.Warn().Msg("payment not successful")
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": http.StatusBadRequest,
		"message":    response.MessageFailed,
		"data":       verification,
	})
}

func writeMessage(c context.Context, w http.ResponseWriter, statusCode int, message string) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"message":    message,
	})
}

var _ TransactionVerifier = (*paystack.Client)(nil)
