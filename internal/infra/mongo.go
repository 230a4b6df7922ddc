package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/log"
)

func NewMongoDatabase(c context.Context, cfg config.Mongo) *mongo.Database {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main NewMongoDatabase").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "connecting to mongo").Logger()
	logger.Info().Msg("connecting to mongo")
	connectCtx, cancel := context.WithTimeout(c, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		err = fmt.Errorf("failed connecting to mongo with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("connected to mongo")

	logger = logger.With().Str(log.KeyProcess, "pinging mongo").Logger()
	logger.Info().Msg("pinging mongo")
	if err = client.Ping(connectCtx, readpref.Primary()); err != nil {
		err = fmt.Errorf("failed pinging mongo with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("pinged mongo")

	return client.Database(cfg.Database)
}
