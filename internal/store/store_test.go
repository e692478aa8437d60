package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

// sequentialIDs hands out 00000000-0000-0000-0000-000000000001, ...
type sequentialIDs struct{ n int }

func (s *sequentialIDs) next() uuid.UUID {
	s.n++
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", s.n))
}

func idN(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ids := &sequentialIDs{}
	s := New(db, zap.NewNop(),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(ids.next))
	return s, mock
}

func activeRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"?column?"}).AddRow(1)
}

var unitSystemRowColumns = []string{
	"id", "name", "created_at", "created_by", "updated_at", "updated_by", "is_deleted", "deleted_at", "deleted_by",
}

var physicalQuantityRowColumns = []string{"id", "unit_system_id", "quantity", "value", "type"}

var pgconnError = pgconn.PgError{Code: "23502", ColumnName: "quantity"}
