// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/relabs-tech/showcase/catalog"
	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/config"
	"github.com/relabs-tech/showcase/core/csql"
	"github.com/relabs-tech/showcase/core/logger"
	"github.com/relabs-tech/showcase/core/schema"
)

// ProductsDataKey is the name of the product list in the envelope
const ProductsDataKey = "products"

// Products serves the product catalog
type Products struct {
	store *catalog.Store
}

// NewProducts returns a new product source reading from store
func NewProducts(store *catalog.Store) *Products {
	return &Products{store: store}
}

// DataKey implements Source
func (p *Products) DataKey() string { return ProductsDataKey }

// Fetch implements Source
func (p *Products) Fetch(ctx context.Context, claims access.Claims, level access.Level) (Batch, error) {
	result, err := p.store.Fetch(ctx, claims, level)
	if err != nil {
		return Batch{}, err
	}
	batch := Batch{Data: result.Products, Count: len(result.Products)}
	if result.User != nil {
		batch.UserName = result.User.DisplayName
	}
	return batch, nil
}

// Fallback implements Source
func (p *Products) Fallback(ctx context.Context, level access.Level) Batch {
	products := catalog.Fallback(level, p.store.Policy())
	return Batch{Data: products, Count: len(products)}
}

// DatabaseOpener returns an opener which resolves the connection parameters and
// connects for every call. Nothing is kept between calls, so a rotated secret is
// picked up by the next request.
func DatabaseOpener(cfg config.Configuration, secrets config.SecretReader) csql.Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		db, err := cfg.ResolveDatabase(ctx, secrets)
		if err != nil {
			return nil, err
		}
		if db.Host == "" {
			return nil, fmt.Errorf("no database host configured")
		}
		logger.FromContext(ctx).Debugln("connecting to", db.Redacted())
		return csql.Open(ctx, db.DSN())
	}
}

// ProductPolicy returns the catalog policy for cfg
func ProductPolicy(cfg config.Configuration) catalog.Policy {
	return catalog.Policy{
		AdminLimit:         cfg.AdminProductLimit,
		StandardLimit:      cfg.StandardProductLimit,
		StandardCategories: cfg.Categories(),
	}
}

// NewProductsHandler returns the handler of the product data function
func NewProductsHandler(cfg config.Configuration, open csql.Opener) *Handler {
	h := NewHandler(NewProducts(catalog.NewStore(open, cfg.DBSchema, ProductPolicy(cfg))))
	return withConfiguration(h, cfg, schema.ProductsEnvelopeID)
}

// withConfiguration applies the parts of cfg every handler shares
func withConfiguration(h *Handler, cfg config.Configuration, schemaID string) *Handler {
	if err := cfg.Validate(); err != nil {
		return h.WithSetupError(err)
	}
	if cfg.ValidateResponses {
		validator, err := schema.Envelopes()
		if err != nil {
			return h.WithSetupError(fmt.Errorf("cannot load envelope schemas: %w", err))
		}
		if !validator.HasSchema(schemaID) {
			return h.WithSetupError(fmt.Errorf("no envelope schema %s", schemaID))
		}
		h.WithValidation(validator, schemaID)
	}
	return h
}
