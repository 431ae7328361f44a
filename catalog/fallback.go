// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package catalog

import (
	"github.com/relabs-tech/showcase/core/access"
)

// Policy controls how many and which products a caller gets
type Policy struct {
	// AdminLimit is the maximum number of products for admins
	AdminLimit int
	// StandardLimit is the maximum number of products for standard users
	StandardLimit int
	// StandardCategories are the categories visible to standard users
	StandardCategories []string
	// StandardFallbackLimit is the number of fallback products standard users get
	StandardFallbackLimit int
}

// DefaultStandardFallbackLimit is the size of the fallback slice for standard users
const DefaultStandardFallbackLimit = 1

// fallbackProducts is the fixed data served when the store is unavailable. The
// first entries must stay in the default standard categories.
var fallbackProducts = []Display{
	{ID: 1, Name: "Laptop Pro 15", Category: "Electronics", Price: 1299.99, Description: "High performance laptop for professionals", InStock: true},
	{ID: 2, Name: "Wireless Mouse", Category: "Electronics", Price: 29.99, Description: "Ergonomic wireless mouse", InStock: true},
	{ID: 3, Name: "Go in Practice", Category: "Books", Price: 39.99, Description: "Techniques for idiomatic Go", InStock: true},
	{ID: 4, Name: "Office Chair", Category: "Furniture", Price: 249.00, Description: "Adjustable ergonomic office chair", InStock: false},
	{ID: 5, Name: "Standing Desk", Category: "Furniture", Price: 499.00, Description: "Height adjustable standing desk", InStock: true},
	{ID: 6, Name: "Noise Cancelling Headphones", Category: "Electronics", Price: 199.99, Description: "Over-ear headphones with active noise cancelling", InStock: true},
	{ID: 7, Name: "Coffee Maker", Category: "Appliances", Price: 89.50, Description: "Programmable drip coffee maker", InStock: true},
	{ID: 8, Name: "Desk Lamp", Category: "Furniture", Price: 45.00, Description: "LED desk lamp with dimmer", InStock: false},
}

// Fallback returns the fixed substitute data for the given level. Admins get the full
// list up to the admin limit, standard users a fixed prefix of the products in their
// categories. The result is never empty.
func Fallback(level access.Level, policy Policy) []Product {
	all := make([]Product, 0, len(fallbackProducts))
	for _, d := range fallbackProducts {
		all = append(all, d.Normalize())
	}

	if level.IsAdmin() {
		return truncate(all, policy.AdminLimit)
	}

	var visible []Product
	for _, p := range all {
		if contains(policy.StandardCategories, p.Category) {
			visible = append(visible, p)
		}
	}
	if len(visible) == 0 {
		visible = all
	}
	limit := policy.StandardFallbackLimit
	if limit <= 0 {
		limit = DefaultStandardFallbackLimit
	}
	return truncate(visible, limit)
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
