package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/internal/common"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	inHttp "github.com/Alturino/focushoney/internal/common/http"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/middleware"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/order/internal/service"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(mux *mux.Router, service *service.OrderService) {
	controller := OrderController{service: service}

	router := mux.PathPrefix("/orders").Subrouter()
	router.Use(middleware.Auth)
	router.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	router.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
	router.HandleFunc("/{orderId}/receipt", controller.ExportReceipt).Methods(http.MethodGet)
}

func (ctrl OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrders").Logger()

	userID, err := common.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting user id with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Str(log.KeyUserID, userID.String()).Logger()
	logger.Info().Msg("finding orders")
	orders, err := ctrl.service.ListOrders(logger.WithContext(c), userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found orders")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully get orders",
		"data": map[string]interface{}{
			"orders": orders,
		},
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController FindOrderById").Logger()

	userID, orderID, err := identifiers(r)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding order").Str(log.KeyOrderID, orderID.String()).Logger()
	logger.Info().Msg("finding order")
	order, err := ctrl.service.FindOrder(logger.WithContext(c), userID, orderID)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully get order",
		"data": map[string]interface{}{
			"order": order,
		},
	})
}

// ExportReceipt reads the customer name from ?name= since tokens carry no display name.
func (ctrl OrderController) ExportReceipt(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ExportReceipt")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "OrderController ExportReceipt").Logger()

	userID, orderID, err := identifiers(r)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "exporting receipt").Str(log.KeyOrderID, orderID.String()).Logger()
	logger.Info().Msg("exporting receipt")
	rec, err := ctrl.service.ExportReceipt(logger.WithContext(c), userID, orderID, r.URL.Query().Get("name"))
	if err != nil {
		err = fmt.Errorf("failed exporting receipt with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("exported receipt")

	w.Header().Set(inHttp.HeaderContentType, inHttp.HeaderValuePdf)
	w.Header().Set(inHttp.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rec.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(rec.Content); err != nil {
		err = fmt.Errorf("failed writing receipt with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
}

func identifiers(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := common.UserIdFromJwtToken(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed getting user id with error=%w", err)
	}

	rawOrderID := mux.Vars(r)["orderId"]
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		err = fmt.Errorf("failed parsing orderId=%s with error=%w", rawOrderID, errors.Join(err, commonErrors.ErrValidation))
		return uuid.Nil, uuid.Nil, err
	}
	return userID, orderID, nil
}
