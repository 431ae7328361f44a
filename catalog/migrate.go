// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package catalog

import (
	"context"
	"database/sql"
	_ "embed" // schema.sql
	"fmt"
	"time"

	"github.com/lib/pq"
)

//go:embed sql/schema.sql
var schemaSQL string

// Migrate creates the schema and its tables if they do not exist yet
func Migrate(ctx context.Context, db *sql.DB, schema string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", pq.QuoteIdentifier(schema)),
		fmt.Sprintf("SET LOCAL search_path TO %s;", pq.QuoteIdentifier(schema)),
		schemaSQL,
	}
	for _, s := range statements {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("cannot migrate schema %s: %w", schema, err)
		}
	}
	return tx.Commit()
}

// SeedUser is a user row written by Seed
type SeedUser struct {
	Email       string
	DisplayName string
	Role        string
}

// Seed inserts the built-in products as active rows, together with the given users.
// Existing users are updated.
func Seed(ctx context.Context, db *sql.DB, schema string, users []SeedUser) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	insertProduct := fmt.Sprintf(`INSERT INTO %s.products (product_name, category, price, description, stock_quantity, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, true, $6);`, pq.QuoteIdentifier(schema))
	// rows of one transaction share now(), so the built-in order is kept with
	// explicit creation times, the first product being the newest
	newest := time.Now().UTC().Truncate(time.Second)
	for i, d := range fallbackProducts {
		stock := 0
		if d.InStock {
			stock = 10
		}
		if _, err := tx.ExecContext(ctx, insertProduct, d.Name, d.Category, d.Price, d.Description, stock, newest.Add(-time.Duration(i)*time.Minute)); err != nil {
			return 0, fmt.Errorf("cannot seed product %s: %w", d.Name, err)
		}
	}

	upsertUser := fmt.Sprintf(`INSERT INTO %s.users (email, display_name, role) VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role;`, pq.QuoteIdentifier(schema))
	for _, u := range users {
		if _, err := tx.ExecContext(ctx, upsertUser, u.Email, u.DisplayName, u.Role); err != nil {
			return 0, fmt.Errorf("cannot seed user %s: %w", u.Email, err)
		}
	}
	return len(fallbackProducts), tx.Commit()
}
