// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package gallery

import (
	"time"

	"github.com/relabs-tech/showcase/core/access"
)

// placeholder images served when the object store is unavailable
var fallbackImages = []Image{
	{Key: "images/sample-dashboard.png", Name: "sample-dashboard.png", URL: "https://placehold.co/800x600/png?text=Dashboard"},
	{Key: "images/sample-analytics.png", Name: "sample-analytics.png", URL: "https://placehold.co/800x600/png?text=Analytics"},
	{Key: "images/sample-reports.png", Name: "sample-reports.png", URL: "https://placehold.co/800x600/png?text=Reports"},
	{Key: "images/sample-team.png", Name: "sample-team.png", URL: "https://placehold.co/800x600/png?text=Team"},
	{Key: "images/sample-settings.png", Name: "sample-settings.png", URL: "https://placehold.co/800x600/png?text=Settings"},
	{Key: "images/sample-billing.png", Name: "sample-billing.png", URL: "https://placehold.co/800x600/png?text=Billing"},
}

// Fallback returns the placeholder images for the given level, truncated the same way
// Fetch truncates. The expiry is computed from now so the records look exactly like
// signed ones.
func Fallback(level access.Level, policy Policy, now time.Time) []Image {
	expiresAt := now.Add(policy.TTL).UTC().Format(time.RFC3339)
	images := make([]Image, 0, len(fallbackImages))
	for _, img := range fallbackImages {
		img.ExpiresAt = expiresAt
		images = append(images, img)
	}
	if level.IsAdmin() {
		return images
	}
	return truncate(images, policy.StandardLimit)
}
