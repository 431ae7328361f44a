package csql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockOpener(t *testing.T) (Opener, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return func(ctx context.Context) (*sql.DB, error) { return db, nil }, mock
}

func TestWithDB_ReleasesOnSuccess(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectClose()

	called := false
	err := WithDB(context.Background(), open, func(db *sql.DB) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithDB_ReleasesOnError(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectClose()

	queryErr := errors.New("relation does not exist")
	err := WithDB(context.Background(), open, func(db *sql.DB) error {
		return queryErr
	})
	assert.ErrorIs(t, err, queryErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithDB_ReleasesOnPanic(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectClose()

	assert.Panics(t, func() {
		_ = WithDB(context.Background(), open, func(db *sql.DB) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithDB_OpenFails(t *testing.T) {
	open := func(ctx context.Context) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}
	called := false
	err := WithDB(context.Background(), open, func(db *sql.DB) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "connection refused")
	assert.False(t, called)

	err = WithDB(context.Background(), nil, func(db *sql.DB) error { return nil })
	assert.Error(t, err)
}
