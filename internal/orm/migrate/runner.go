package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNothingToRollback is returned by MigrateDown on a fresh database
var ErrNothingToRollback = errors.New("no migrations to rollback")

// Runner executes migrations with transaction support
type Runner struct {
	db      *sql.DB
	tracker *Tracker
	logger  *zap.Logger
}

// NewRunner creates a new migration runner
func NewRunner(db *sql.DB, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		db:      db,
		tracker: NewTracker(db),
		logger:  logger,
	}
}

// MigrateUp applies all pending migrations and returns how many ran
func (r *Runner) MigrateUp(ctx context.Context, migrations []*Migration) (int, error) {
	if err := r.tracker.Initialize(ctx); err != nil {
		return 0, err
	}

	pending, err := r.tracker.GetPending(ctx, migrations)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending migrations: %w", err)
	}

	if len(pending) == 0 {
		r.logger.Info("no pending migrations")
		return 0, nil
	}

	for _, migration := range pending {
		if err := r.apply(ctx, migration); err != nil {
			return 0, fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
	}

	r.logger.Info("migrations applied", zap.Int("count", len(pending)))
	return len(pending), nil
}

// MigrateDown rolls back the last applied migration
func (r *Runner) MigrateDown(ctx context.Context) (*Migration, error) {
	if err := r.tracker.Initialize(ctx); err != nil {
		return nil, err
	}

	last, err := r.tracker.GetLast(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last migration: %w", err)
	}
	if last == nil {
		return nil, ErrNothingToRollback
	}
	if last.Down == "" {
		return nil, fmt.Errorf("migration %s has no down migration", last.Name)
	}

	start := time.Now()
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, last.Down); err != nil {
			return fmt.Errorf("failed to execute rollback SQL: %w", err)
		}
		return r.tracker.Remove(ctx, tx, last.Version)
	})
	if err != nil {
		return nil, fmt.Errorf("rollback of %s failed: %w", last.Name, err)
	}

	r.logger.Info("migration rolled back",
		zap.String("name", last.Name),
		zap.Duration("took", time.Since(start)))
	return last, nil
}

// apply applies a single migration in a transaction
func (r *Runner) apply(ctx context.Context, migration *Migration) error {
	if migration.Up == "" {
		return fmt.Errorf("migration has no up SQL")
	}

	start := time.Now()
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}
		return r.tracker.Record(ctx, tx, migration)
	})
	if err != nil {
		return err
	}

	r.logger.Info("migration applied",
		zap.Int64("version", migration.Version),
		zap.String("name", migration.Name),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (r *Runner) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Warn("failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Status returns the current migration status
func (r *Runner) Status(ctx context.Context, all []*Migration) (*MigrationStatus, error) {
	if err := r.tracker.Initialize(ctx); err != nil {
		return nil, err
	}

	applied, err := r.tracker.GetApplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedAt := make(map[int64]time.Time, len(applied))
	for _, m := range applied {
		appliedAt[m.Version] = m.AppliedAt
	}

	status := &MigrationStatus{Total: len(all)}
	for _, m := range all {
		entry := *m
		if at, ok := appliedAt[m.Version]; ok {
			entry.Applied = true
			entry.AppliedAt = at
			status.Applied = append(status.Applied, &entry)
		} else {
			status.Pending = append(status.Pending, &entry)
		}
		status.All = append(status.All, &entry)
	}
	return status, nil
}

// MigrationStatus represents the current state of migrations
type MigrationStatus struct {
	Total   int
	All     []*Migration
	Applied []*Migration
	Pending []*Migration
}

// Summary returns a human-readable summary
func (s *MigrationStatus) Summary() string {
	return fmt.Sprintf("Total: %d migrations (%d applied, %d pending)",
		s.Total,
		len(s.Applied),
		len(s.Pending))
}
