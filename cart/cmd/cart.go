package cmd

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/Alturino/focushoney/cart/internal/controller"
	"github.com/Alturino/focushoney/cart/internal/persister"
	"github.com/Alturino/focushoney/cart/internal/service"
	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/repository"
	"github.com/Alturino/focushoney/product/pkg/catalog"
)

// NewSessionResolver keeps guest carts in redis and authenticated carts in the remote store.
func NewSessionResolver(cache redis.Cmdable, store repository.Store, cfg config.Session) *session.Resolver {
	return session.NewResolver(
		persister.NewFactory(cache, store),
		session.WithMergeGuestCart(cfg.MergeGuestCart),
	)
}

func AttachCart(router *mux.Router, resolver *session.Resolver, catalog *catalog.Catalog) {
	controller.AttachCartController(router, service.NewCartService(resolver, catalog))
}
