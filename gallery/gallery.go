// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package gallery serves the dashboard images stored in the object store. Images are
// handed out as time limited pre-signed URLs.
package gallery

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/kss"
	"github.com/relabs-tech/showcase/core/logger"
)

// Image is an image record returned to callers
type Image struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified,omitempty"`
	ExpiresAt    string `json:"expiresAt"`
}

// Policy controls how many images a caller gets and how long their URLs are valid
type Policy struct {
	// StandardLimit is the number of images standard users get, taken from the
	// beginning of the listing
	StandardLimit int
	// TTL is the validity of the signed URLs
	TTL time.Duration
}

// Store lists images from the object store
type Store struct {
	driver kss.Driver
	prefix string
	policy Policy
	now    func() time.Time
}

// NewStore returns a new Store listing the images under prefix
func NewStore(driver kss.Driver, prefix string, policy Policy) *Store {
	return &Store{driver: driver, prefix: prefix, policy: policy, now: time.Now}
}

// Policy returns the policy of the store
func (s *Store) Policy() Policy {
	return s.policy
}

// Fetch lists the images under the store's prefix and signs a URL for each of them.
// Admins get all images, standard users the first images of the listing.
func (s *Store) Fetch(ctx context.Context, level access.Level) ([]Image, error) {
	if s.driver == nil {
		return nil, fmt.Errorf("no object store configured")
	}
	objects, err := s.driver.ListAllWithPrefix(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("cannot list images: %w", err)
	}

	var files []kss.Object
	for _, o := range objects {
		// the prefix marker and folder placeholders are no images
		if o.Key == s.prefix || strings.HasSuffix(o.Key, "/") {
			continue
		}
		files = append(files, o)
	}
	if !level.IsAdmin() {
		files = truncate(files, s.policy.StandardLimit)
	}

	issued := s.now()
	expiresAt := issued.Add(s.policy.TTL).UTC().Format(time.RFC3339)
	images := make([]Image, 0, len(files))
	for _, o := range files {
		url, err := s.driver.GetPreSignedURL(ctx, kss.Get, o.Key, s.policy.TTL)
		if err != nil {
			return nil, fmt.Errorf("cannot sign url for %s: %w", o.Key, err)
		}
		img := Image{
			Key:       o.Key,
			Name:      path.Base(o.Key),
			URL:       url,
			Size:      o.Size,
			ExpiresAt: expiresAt,
		}
		if !o.LastModified.IsZero() {
			img.LastModified = o.LastModified.UTC().Format(time.RFC3339)
		}
		images = append(images, img)
	}
	logger.FromContext(ctx).Debugf("signed %d of %d images for %s user", len(images), len(objects), level)
	return images, nil
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
