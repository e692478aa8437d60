// Package store persists testbench records in PostgreSQL.
//
// Every method maps database errors through crud.ConvertDBError, so callers
// only see the crud sentinels (ErrNotFound, ErrConflict, constraint
// violations) wrapped with context. Soft-deleted parents behave as missing.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labbench/testbench/internal/orm/crud"
	"github.com/labbench/testbench/internal/orm/transaction"
)

// Store is the data access layer shared by all HTTP handlers.
type Store struct {
	db     *sql.DB
	tx     *transaction.Manager
	logger *zap.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt, updatedAt and
// deleted_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a Store on top of an open connection pool.
func New(db *sql.DB, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		db:     db,
		tx:     transaction.NewManager(db),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ensureActive returns crud.ErrNotFound unless table holds a row with id that
// is not soft-deleted.
func ensureActive(ctx context.Context, q transaction.Querier, table string, id uuid.UUID) error {
	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = $1 AND is_deleted = false", table)
	if err := q.QueryRowContext(ctx, query, id).Scan(&one); err != nil {
		return crud.ConvertDBError(err)
	}
	return nil
}

// softDelete flags a row as deleted. Deleting a row twice is ErrNotFound.
func softDelete(ctx context.Context, q transaction.Querier, table string, id uuid.UUID, at time.Time, by *uuid.UUID) error {
	query := fmt.Sprintf(
		"UPDATE %s SET is_deleted = true, deleted_at = $1, deleted_by = $2 WHERE id = $3 AND is_deleted = false",
		table)
	res, err := q.ExecContext(ctx, query, at, by, id)
	if err != nil {
		return crud.ConvertDBError(err)
	}
	return expectAffected(res)
}

// parent names the soft-deletable table a child row belongs to and the
// child's foreign key column.
type parent struct {
	table  string
	column string
}

var (
	projectParent        = parent{table: "projects", column: "project_id"}
	testParent           = parent{table: "tests", column: "test_id"}
	testTemplateParent   = parent{table: "test_templates", column: "test_template_id"}
	objectTemplateParent = parent{table: "object_templates", column: "object_template_id"}
)

// flagsSet reports whether every NOT NULL boolean input was supplied.
func flagsSet(flags ...*bool) bool {
	for _, f := range flags {
		if f == nil {
			return false
		}
	}
	return true
}

// hardDelete physically removes a child row whose parent is not
// soft-deleted. A missing child and an inactive parent are both ErrNotFound.
func hardDelete(ctx context.Context, q transaction.Querier, table string, p parent, id uuid.UUID) error {
	query := fmt.Sprintf(
		"DELETE FROM %s c USING %s p WHERE c.id = $1 AND p.id = c.%s AND p.is_deleted = false",
		table, p.table, p.column)
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return crud.ConvertDBError(err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return crud.ErrNotFound
	}
	return nil
}

// queryList runs query and scans every row with scan.
func queryList[T any](ctx context.Context, q transaction.Querier, scan func(rowScanner) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, crud.ConvertDBError(err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, crud.ConvertDBError(err)
	}
	return items, nil
}

// idStrings renders ids for an "= ANY($1)" parameter.
func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// actorOr returns explicit when set, otherwise fallback.
func actorOr(explicit, fallback *uuid.UUID) *uuid.UUID {
	if explicit != nil {
		return explicit
	}
	return fallback
}
