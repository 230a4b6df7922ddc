package cmd

import (
	"context"
	"fmt"

	"github.com/Alturino/focushoney/internal/common/constants"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/infra"
	"github.com/Alturino/focushoney/internal/log"
	inOtel "github.com/Alturino/focushoney/internal/otel"
	notificationCmd "github.com/Alturino/focushoney/notification/cmd"
)

func runNotificationService(c context.Context) {
	logger := log.InitLogger(fmt.Sprintf("/var/log/%s.log", constants.AppNotification), "").
		With().
		Str(log.KeyAppName, constants.AppNotification).
		Str(log.KeyTag, "main runNotificationService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppNotification)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppNotification, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
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

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("closing cache")
		if err := cache.Close(); err != nil {
			logger.Error().Err(err).Msg("failed closing cache")
		}
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "listening order created").Logger()
	logger.Info().Msg("listening order created")
	if err = notificationCmd.ListenOrderCreated(logger.WithContext(c), cache); err != nil {
		err = fmt.Errorf("failed listening order created with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("stopped listening order created")
}
