// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package csql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // load database driver for postgres

	"github.com/relabs-tech/showcase/core/logger"
)

// MaxOpenConns bounds the pool of a scoped handle. An invocation issues at most two
// reads at the same time.
const MaxOpenConns = 2

// ErrNoRows is returned by Scan when QueryRow doesn't return a
// row. In such a case, QueryRow returns a placeholder *Row value that
// defers this error until a Scan.
var ErrNoRows = sql.ErrNoRows

// Opener acquires a database handle for the duration of one invocation
type Opener func(ctx context.Context) (*sql.DB, error)

// Open opens a postgres database and verifies that it can be reached.
func Open(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxOpenConns)
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WithDB acquires a handle with open, passes it to fn and releases it again. The handle
// is released on every exit path, including a panic in fn.
func WithDB(ctx context.Context, open Opener, fn func(db *sql.DB) error) (err error) {
	if open == nil {
		return fmt.Errorf("no database configured")
	}
	db, err := open(ctx)
	if err != nil {
		return fmt.Errorf("cannot connect to database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.FromContext(ctx).WithError(cerr).Warnln("cannot close database handle")
		}
	}()
	return fn(db)
}
