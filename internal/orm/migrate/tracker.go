// Package migrate applies the embedded schema migrations and tracks which
// ones a database has seen.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Migration is one numbered schema change. Applied and AppliedAt are only
// set on values read back from schema_migrations or returned by Status.
type Migration struct {
	Version   int64
	Name      string
	Up        string
	Down      string
	Applied   bool
	AppliedAt time.Time
}

// Tracker reads and writes the schema_migrations table. The down SQL is
// stored with each row so a rollback works even after the migration file
// has been removed from the binary.
type Tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

const (
	createTrackingTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	down_sql TEXT
)`
	selectApplied = `
SELECT version, name, applied_at, down_sql
FROM schema_migrations`
)

// Initialize creates schema_migrations if needed.
func (t *Tracker) Initialize(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, createTrackingTable); err != nil {
		return fmt.Errorf("failed to initialize migrations table: %w", err)
	}
	return nil
}

func scanApplied(row interface{ Scan(...interface{}) error }) (*Migration, error) {
	m := &Migration{Applied: true}
	var down sql.NullString
	if err := row.Scan(&m.Version, &m.Name, &m.AppliedAt, &down); err != nil {
		return nil, err
	}
	m.Down = down.String
	return m, nil
}

// GetApplied returns the applied migrations in version order.
func (t *Tracker) GetApplied(ctx context.Context) ([]*Migration, error) {
	rows, err := t.db.QueryContext(ctx, selectApplied+"\nORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var applied []*Migration
	for rows.Next() {
		m, err := scanApplied(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied = append(applied, m)
	}
	return applied, rows.Err()
}

// GetLast returns the highest applied version, or nil on a fresh database.
func (t *Tracker) GetLast(ctx context.Context) (*Migration, error) {
	m, err := scanApplied(t.db.QueryRowContext(ctx, selectApplied+"\nORDER BY version DESC\nLIMIT 1"))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get last migration: %w", err)
	}
	return m, nil
}

// Record inserts m inside tx, next to the migration's own statements.
func (t *Tracker) Record(ctx context.Context, tx *sql.Tx, m *Migration) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, down_sql) VALUES ($1, $2, $3)",
		m.Version, m.Name, m.Down); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	return nil
}

// Remove deletes the row for version inside tx.
func (t *Tracker) Remove(ctx context.Context, tx *sql.Tx, version int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version)
	if err != nil {
		return fmt.Errorf("failed to remove migration %d: %w", version, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return fmt.Errorf("migration version %d not recorded", version)
	}
	return nil
}

// GetPending filters all down to the versions not yet applied.
func (t *Tracker) GetPending(ctx context.Context, all []*Migration) ([]*Migration, error) {
	applied, err := t.GetApplied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int64]struct{}, len(applied))
	for _, m := range applied {
		done[m.Version] = struct{}{}
	}

	var pending []*Migration
	for _, m := range all {
		if _, ok := done[m.Version]; !ok {
			pending = append(pending, m)
		}
	}
	return pending, nil
}
