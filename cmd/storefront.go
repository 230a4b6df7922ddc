package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/Alturino/focushoney/cart/cmd"
	checkoutCmd "github.com/Alturino/focushoney/checkout/cmd"
	"github.com/Alturino/focushoney/internal/common/constants"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/infra"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/middleware"
	inOtel "github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/internal/repository"
	"github.com/Alturino/focushoney/internal/repository/mongostore"
	orderCmd "github.com/Alturino/focushoney/order/cmd"
	"github.com/Alturino/focushoney/order/pkg/event"
	paymentClient "github.com/Alturino/focushoney/payment/pkg/client"
	productCmd "github.com/Alturino/focushoney/product/cmd"
	"github.com/Alturino/focushoney/product/pkg/catalog"
	userCmd "github.com/Alturino/focushoney/user/cmd"
	"github.com/Alturino/focushoney/user/pkg/auth"
)

const (
	sessionSweepInterval = time.Minute
	sessionIdleTimeout   = 2 * time.Hour
)

func runStorefront(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "runStorefront")
	defer span.End()

	logger := log.InitLogger(fmt.Sprintf("/var/log/%s.log", constants.AppStorefront), "").
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main runStorefront").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppStorefront)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppStorefront, cfg.Otel)
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

	logger = logger.With().Str(log.KeyProcess, "initializing store").Str("driver", cfg.Store.Driver).Logger()
	logger.Info().Msg("initializing store")
	c = logger.WithContext(c)
	var store repository.Store
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		db := infra.NewMongoDatabase(c, cfg.Mongo)
		defer func() {
			logger.Info().Msg("disconnecting mongo")
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed disconnecting mongo")
			}
		}()
		mongoStore := mongostore.New(db)
		if err = mongoStore.EnsureIndexes(c); err != nil {
			err = fmt.Errorf("failed ensuring mongo indexes with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		store = mongoStore
	case config.StoreDriverPostgres:
		pool := infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger.Info().Msg("closing database")
			pool.Close()
		}()
		store = repository.NewPostgresStore(repository.New(pool))
	default:
		err = fmt.Errorf("unknown store driver=%s", cfg.Store.Driver)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized store")

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

	logger = logger.With().Str(log.KeyProcess, "initializing catalog").Logger()
	logger.Info().Msg("initializing catalog")
	products, err := catalog.New(c, cfg.Catalog)
	if err != nil {
		err = fmt.Errorf("failed initializing catalog with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized catalog")

	logger = logger.With().Str(log.KeyProcess, "initializing payment verifier client").Logger()
	logger.Info().Msg("initializing payment verifier client")
	verifier, err := paymentClient.New(cfg.Checkout.VerifierURL)
	if err != nil {
		err = fmt.Errorf("failed initializing payment verifier client with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized payment verifier client")

	logger = logger.With().Str(log.KeyProcess, "initializing session resolver").Logger()
	logger.Info().Msg("initializing session resolver")
	resolver := cartCmd.NewSessionResolver(cache, store, cfg.Session)
	notifier := auth.NewNotifier()
	notifier.Subscribe(resolver)
	go resolver.RunSweeper(logger.WithContext(c), sessionSweepInterval, sessionIdleTimeout)
	logger.Info().Msg("initialized session resolver")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.AppStorefront), middleware.Logging, middleware.RecoverPanic)
	router.Handle("/metrics", promhttp.Handler())
	productCmd.AttachProduct(router, products)

	api := router.NewRoute().Subrouter()
	api.Use(middleware.Session(cfg.Application.SecretKey))
	userCmd.AttachUser(api, store, notifier, cfg.Application.SecretKey)
	cartCmd.AttachCart(api, resolver, products)
	orchestrator := checkoutCmd.AttachCheckout(api, resolver, store, verifier, event.NewPublisher(cache), cfg.Checkout)
	go orchestrator.RunSweeper(logger.WithContext(c), sessionSweepInterval, sessionIdleTimeout)
	orderCmd.AttachOrder(api, store)
	logger.Info().Msg("initialized router")

	c = logger.WithContext(c)
	if err = serve(c, constants.AppStorefront, cfg.Application, router); err != nil {
		inOtel.RecordError(err, span)
		return
	}
	logger.Info().Msg("completely shutdown storefront")
}
