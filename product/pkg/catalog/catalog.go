// Package catalog serves the static honey catalog loaded from configuration.
package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/common/money"
	"github.com/Alturino/focushoney/internal/common/validate"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/product/pkg/request"
	"github.com/Alturino/focushoney/product/pkg/response"
)

type Catalog struct {
	products []response.Product
	byID     map[string]int
}

func New(c context.Context, cfg config.Catalog) (*Catalog, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "catalog New").
		Logger()

	catalog := &Catalog{
		products: make([]response.Product, 0, len(cfg.Products)),
		byID:     make(map[string]int, len(cfg.Products)),
	}
	v := validate.New()
	for _, p := range cfg.Products {
		req := request.FromConfig(p)
		if err := v.StructCtx(c, req); err != nil {
			err = fmt.Errorf("failed validating product id=%s with error=%w", p.ID, err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		if _, ok := catalog.byID[req.ID]; ok {
			err := fmt.Errorf("duplicate product id=%s in catalog", req.ID)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}

		price, err := money.Parse(req.Price)
		if err != nil {
			return nil, err
		}
		catalog.byID[req.ID] = len(catalog.products)
		catalog.products = append(catalog.products, response.Product{
			ID:    req.ID,
			Name:  req.Name,
			Price: money.NewPrice(price),
			Image: req.Image,
			Alt:   req.Alt,
		})
	}
	logger.Info().Int("products", len(catalog.products)).Msg("loaded catalog")
	return catalog, nil
}

func (cat *Catalog) List(c context.Context) []response.Product {
	_, span := otel.Tracer.Start(c, "Catalog List")
	defer span.End()

	products := make([]response.Product, len(cat.products))
	copy(products, cat.products)
	return products
}

func (cat *Catalog) Find(c context.Context, id string) (response.Product, error) {
	_, span := otel.Tracer.Start(c, "Catalog Find")
	defer span.End()

	i, ok := cat.byID[id]
	if !ok {
		err := fmt.Errorf("failed finding product id=%s with error=%w", id, commonErrors.ErrProductNotFound)
		otel.RecordError(err, span)
		return response.Product{}, err
	}
	return cat.products[i], nil
}
