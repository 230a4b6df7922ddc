package cmd

import (
	"context"
	"fmt"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/focushoney/internal/common/constants"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/middleware"
	inOtel "github.com/Alturino/focushoney/internal/otel"
	paymentCmd "github.com/Alturino/focushoney/payment/cmd"
)

func runPaymentVerifier(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "runPaymentVerifier")
	defer span.End()

	logger := log.InitLogger(fmt.Sprintf("/var/log/%s.log", constants.AppPaymentVerifier), "").
		With().
		Str(log.KeyAppName, constants.AppPaymentVerifier).
		Str(log.KeyTag, "main runPaymentVerifier").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppPaymentVerifier)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppPaymentVerifier, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := inOtel.ShutdownOtel(context.Background(), shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppPaymentVerifier), middleware.Logging, middleware.RecoverPanic)
	if err = paymentCmd.AttachPayment(router, cfg.Paystack); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized router")

	c = logger.WithContext(c)
	if err = serve(c, constants.AppPaymentVerifier, cfg.Application, router); err != nil {
		inOtel.RecordError(err, span)
		return
	}
	logger.Info().Msg("completely shutdown payment verifier")
}
