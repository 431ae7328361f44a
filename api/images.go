// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package api

import (
	"context"
	"time"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/config"
	"github.com/relabs-tech/showcase/core/kss"
	"github.com/relabs-tech/showcase/core/schema"
	"github.com/relabs-tech/showcase/gallery"
)

// ImagesDataKey is the name of the image list in the envelope
const ImagesDataKey = "images"

// Images serves the dashboard images
type Images struct {
	store *gallery.Store
	now   func() time.Time
}

// NewImages returns a new image source listing from store
func NewImages(store *gallery.Store) *Images {
	return &Images{store: store, now: time.Now}
}

// DataKey implements Source
func (i *Images) DataKey() string { return ImagesDataKey }

// Fetch implements Source
func (i *Images) Fetch(ctx context.Context, claims access.Claims, level access.Level) (Batch, error) {
	images, err := i.store.Fetch(ctx, level)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Data: images, Count: len(images)}, nil
}

// Fallback implements Source
func (i *Images) Fallback(ctx context.Context, level access.Level) Batch {
	images := gallery.Fallback(level, i.store.Policy(), i.now())
	return Batch{Data: images, Count: len(images)}
}

// ImagePolicy returns the gallery policy for cfg
func ImagePolicy(cfg config.Configuration) gallery.Policy {
	return gallery.Policy{StandardLimit: cfg.StandardImageLimit, TTL: cfg.URLTTL}
}

// NewImagesHandler returns the handler of the image data function
func NewImagesHandler(cfg config.Configuration, driver kss.Driver) *Handler {
	h := NewHandler(NewImages(gallery.NewStore(driver, cfg.ImagesPrefix, ImagePolicy(cfg))))
	return withConfiguration(h, cfg, schema.ImagesEnvelopeID)
}
