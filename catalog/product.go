// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package catalog serves the products shown on the dashboard.

Products exist in two shapes: the Row read from the relational store and the
Display shape of the built-in fallback data. Both are normalized into Product at the
fetch boundary, so the response shaping never knows where a product came from.
*/
package catalog

import (
	"database/sql"
	"strconv"
	"time"
)

// Product is the canonical product record returned to callers
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	InStock     bool    `json:"inStock"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Row is a product as stored in the products table
type Row struct {
	ProductID     int64
	ProductName   string
	Category      sql.NullString
	Price         float64
	Description   sql.NullString
	StockQuantity int64
	CreatedAt     time.Time
	UpdatedAt     sql.NullTime
}

// Normalize returns the canonical product for the row
func (r Row) Normalize() Product {
	p := Product{
		ID:          strconv.FormatInt(r.ProductID, 10),
		Name:        r.ProductName,
		Category:    r.Category.String,
		Price:       r.Price,
		Description: r.Description.String,
		InStock:     r.StockQuantity > 0,
	}
	if !r.CreatedAt.IsZero() {
		p.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if r.UpdatedAt.Valid {
		p.UpdatedAt = r.UpdatedAt.Time.UTC().Format(time.RFC3339)
	}
	return p
}

// Display is a product in the compact shape of the built-in data
type Display struct {
	ID          int
	Name        string
	Category    string
	Price       float64
	Description string
	InStock     bool
}

// Normalize returns the canonical product for the display record
func (d Display) Normalize() Product {
	return Product{
		ID:          strconv.Itoa(d.ID),
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		Description: d.Description,
		InStock:     d.InStock,
	}
}

// UserRecord is the caller's row in the users table
type UserRecord struct {
	Email       string
	DisplayName string
	Role        string
}
