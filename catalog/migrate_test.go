package catalog

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createdAt records the creation times passed to the product inserts
type createdAt struct {
	seen *[]time.Time
}

func (c createdAt) Match(v driver.Value) bool {
	t, ok := v.(time.Time)
	if ok {
		*c.seen = append(*c.seen, t)
	}
	return ok
}

func TestSeed_NewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var seen []time.Time
	mock.ExpectBegin()
	for _, d := range fallbackProducts {
		mock.ExpectExec(`INSERT INTO "showcase"\.products`).
			WithArgs(d.Name, d.Category, d.Price, d.Description, sqlmock.AnyArg(), createdAt{seen: &seen}).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec(`INSERT INTO "showcase"\.users`).
		WithArgs("admin@example.com", "Ada", "admin").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := Seed(context.Background(), db, "showcase", []SeedUser{{Email: "admin@example.com", DisplayName: "Ada", Role: "admin"}})
	require.NoError(t, err)
	assert.Equal(t, len(fallbackProducts), n)
	require.Len(t, seen, len(fallbackProducts))
	for i := 1; i < len(seen); i++ {
		assert.True(t, seen[i].Before(seen[i-1]), "product %d must be older than product %d", i, i-1)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
