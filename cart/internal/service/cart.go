package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/product/pkg/catalog"
)

type CartService struct {
	resolver *session.Resolver
	catalog  *catalog.Catalog
}

func NewCartService(resolver *session.Resolver, catalog *catalog.Catalog) *CartService {
	return &CartService{resolver: resolver, catalog: catalog}
}

func (svc *CartService) GetCart(c context.Context, identity session.Identity) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeyDeviceID, identity.DeviceID).
		Str(log.KeyUserID, identity.Owner()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving session").Logger()
	logger.Trace().Msg("resolving session")
	sess, err := svc.resolver.Resolve(c, identity)
	if err != nil {
		err = fmt.Errorf("failed resolving session with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Trace().Msg("resolved session")

	cart, err := sess.Cart().Cart(c)
	if err != nil {
		err = fmt.Errorf("failed reading cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return cart, nil
}

func (svc *CartService) mutate(
	c context.Context,
	name string,
	identity session.Identity,
	fn func(c context.Context, sess *session.Session) error,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService "+name)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService "+name).
		Str(log.KeyDeviceID, identity.DeviceID).
		Str(log.KeyUserID, identity.Owner()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving session").Logger()
	logger.Trace().Msg("resolving session")
	sess, err := svc.resolver.Resolve(c, identity)
	if err != nil {
		err = fmt.Errorf("failed resolving session with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Trace().Msg("resolved session")

	logger = logger.With().Str(log.KeyProcess, "updating cart").Logger()
	logger.Debug().Msg("updating cart")
	if err = fn(logger.WithContext(c), sess); err != nil {
		err = fmt.Errorf("failed updating cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	cart, err := sess.Cart().Cart(c)
	if err != nil {
		err = fmt.Errorf("failed reading cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Debug().
		Int(log.KeyCartItemsCount, cart.Count).
		Str(log.KeyCartTotal, cart.Total.String()).
		Msg("updated cart")
	return cart, nil
}

// AddItem resolves the product from the catalog so clients never dictate prices.
func (svc *CartService) AddItem(c context.Context, identity session.Identity, productID string) (response.Cart, error) {
	product, err := svc.catalog.Find(c, productID)
	if err != nil {
		return response.Cart{}, err
	}
	return svc.mutate(c, "AddItem", identity, func(c context.Context, sess *session.Session) error {
		_, err := sess.Cart().Add(c, product.CartItem())
		return err
	})
}

func (svc *CartService) RemoveItem(c context.Context, identity session.Identity, productID string) (response.Cart, error) {
	return svc.mutate(c, "RemoveItem", identity, func(c context.Context, sess *session.Session) error {
		_, err := sess.Cart().Remove(c, productID)
		return err
	})
}

func (svc *CartService) UpdateQuantity(
	c context.Context,
	identity session.Identity,
	productID string,
	quantity int,
) (response.Cart, error) {
	return svc.mutate(c, "UpdateQuantity", identity, func(c context.Context, sess *session.Session) error {
		_, err := sess.Cart().SetQuantity(c, productID, quantity)
		return err
	})
}

func (svc *CartService) ClearCart(c context.Context, identity session.Identity) (response.Cart, error) {
	return svc.mutate(c, "ClearCart", identity, func(c context.Context, sess *session.Session) error {
		return sess.Cart().Clear(c)
	})
}
