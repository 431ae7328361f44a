// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/showcase/core/access"
	"github.com/relabs-tech/showcase/core/csql"
	"github.com/relabs-tech/showcase/core/logger"
)

const productColumns = "product_id, product_name, category, price, description, stock_quantity, created_at, updated_at"

// Store reads products from the relational store
type Store struct {
	open   csql.Opener
	schema string
	policy Policy
}

// NewStore returns a new Store. A database handle is acquired with open for every
// Fetch and released before Fetch returns.
func NewStore(open csql.Opener, schema string, policy Policy) *Store {
	if schema == "" {
		schema = "public"
	}
	return &Store{open: open, schema: pq.QuoteIdentifier(schema), policy: policy}
}

// Policy returns the policy of the store
func (s *Store) Policy() Policy {
	return s.policy
}

// Result is the outcome of a successful Fetch
type Result struct {
	Products []Product
	// User is the caller's user record. It is only looked up for admins and is nil
	// when the caller has no record.
	User *UserRecord
}

// Fetch reads the products visible at the given level. Admins get the newest active
// products up to the admin limit; their user record is read at the same time. Standard
// users get the newest active products of the standard categories up to the standard
// limit.
func (s *Store) Fetch(ctx context.Context, claims access.Claims, level access.Level) (Result, error) {
	var result Result
	err := csql.WithDB(ctx, s.open, func(db *sql.DB) (err error) {
		if !level.IsAdmin() {
			defer recoverAsError(&err)
			result.Products, err = s.queryProducts(ctx, db,
				fmt.Sprintf("SELECT %s FROM %s.products WHERE is_active = true AND category = ANY($1) ORDER BY created_at DESC LIMIT $2;", productColumns, s.schema),
				pq.Array(s.policy.StandardCategories), s.policy.StandardLimit)
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		goRecover(g, func() error {
			products, err := s.queryProducts(gctx, db,
				fmt.Sprintf("SELECT %s FROM %s.products WHERE is_active = true ORDER BY created_at DESC LIMIT $1;", productColumns, s.schema),
				s.policy.AdminLimit)
			result.Products = products
			return err
		})
		if claims.Email != "" {
			goRecover(g, func() error {
				user, err := s.queryUser(gctx, db, claims.Email)
				result.User = user
				return err
			})
		}
		return g.Wait()
	})
	if err != nil {
		return Result{}, err
	}
	logger.FromContext(ctx).Debugf("read %d products for %s user", len(result.Products), level)
	return result, nil
}

// goRecover runs fn in g. A panic in fn is returned as an error of the group, it must
// not take down the process.
func goRecover(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer recoverAsError(&err)
		return fn()
	})
}

func recoverAsError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic while reading from the database: %v", r)
	}
}

func (s *Store) queryProducts(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]Product, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Category, &r.Price, &r.Description,
			&r.StockQuantity, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("cannot scan product: %w", err)
		}
		products = append(products, r.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read products: %w", err)
	}
	return products, nil
}

func (s *Store) queryUser(ctx context.Context, db *sql.DB, email string) (*UserRecord, error) {
	var u UserRecord
	var displayName, role sql.NullString
	err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT email, display_name, role FROM %s.users WHERE email = $1;", s.schema), email).
		Scan(&u.Email, &displayName, &role)
	if errors.Is(err, csql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot query user: %w", err)
	}
	u.DisplayName = displayName.String
	u.Role = role.String
	return &u, nil
}
