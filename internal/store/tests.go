package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
)

const testColumns = `id, is_vl_compatible, version, is_last_version, created_at, created_by,
updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func scanTest(row rowScanner) (models.Test, error) {
	var t models.Test
	err := row.Scan(&t.ID, &t.IsVLCompatible, &t.Version, &t.IsLastVersion, &t.CreatedAt, &t.CreatedBy,
		&t.UpdatedAt, &t.UpdatedBy, &t.IsDeleted, &t.DeletedAt, &t.DeletedBy)
	return t, err
}

func scanRealCondition(row rowScanner) (models.RealCondition, error) {
	var c models.RealCondition
	err := row.Scan(&c.ID, &c.TestID, &c.Name, &c.Value, &c.PhysicalQuantity, &c.Required)
	return c, err
}

func scanReading(row rowScanner) (models.Reading, error) {
	var r models.Reading
	err := row.Scan(&r.ID, &r.TestID, &r.Name, &r.Value, &r.PhysicalQuantity, &r.IsRequired)
	return r, err
}

// ReadingTable selects between plain and VL readings, which share a shape.
type ReadingTable string

const (
	Readings   ReadingTable = "readings"
	VLReadings ReadingTable = "vl_readings"
)

func (s *Store) CreateTest(ctx context.Context, in models.TestCreate) (*models.Test, error) {
	if in.CreatedBy == nil || !flagsSet(in.IsVLCompatible) {
		return nil, fmt.Errorf("create test: %w", crud.ErrNotNullViolation)
	}
	now := s.now()
	t := models.Test{
		ID:             s.newID(),
		IsVLCompatible: *in.IsVLCompatible,
		Version:        in.Version,
		IsLastVersion:  in.IsLastVersion,
		CreatedAt:      now,
		CreatedBy:      *in.CreatedBy,
		UpdatedAt:      now,
		UpdatedBy:      *actorOr(in.UpdatedBy, in.CreatedBy),
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tests (id, is_vl_compatible, version, is_last_version, created_at, created_by, updated_at, updated_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.IsVLCompatible, t.Version, t.IsLastVersion, t.CreatedAt, t.CreatedBy, t.UpdatedAt, t.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("create test: %w", crud.ConvertDBError(err))
	}
	return &t, nil
}

func (s *Store) ListTests(ctx context.Context) ([]models.Test, error) {
	tests, err := queryList(ctx, s.db, scanTest,
		"SELECT "+testColumns+" FROM tests WHERE is_deleted = false ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return tests, nil
}

func (s *Store) GetTest(ctx context.Context, id uuid.UUID) (*models.Test, error) {
	t, err := scanTest(s.db.QueryRowContext(ctx,
		"SELECT "+testColumns+" FROM tests WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get test %s: %w", id, crud.ConvertDBError(err))
	}
	return &t, nil
}

// UpdateTest writes the fields present in in. updatedBy falls back to the
// acting user when one is known.
func (s *Store) UpdateTest(ctx context.Context, id uuid.UUID, in models.TestUpdate, actor *uuid.UUID) (*models.Test, error) {
	var set crud.SetClause
	crud.SetIf(&set, "is_vl_compatible", in.IsVLCompatible)
	crud.SetIf(&set, "version", in.Version)
	crud.SetIf(&set, "is_last_version", in.IsLastVersion)
	crud.SetIf(&set, "updated_by", actor)
	set.Set("updated_at", s.now())

	query, args := set.Build("tests", "id", id)
	t, err := scanTest(s.db.QueryRowContext(ctx,
		query+" AND is_deleted = false RETURNING "+testColumns, args...))
	if err != nil {
		return nil, fmt.Errorf("update test %s: %w", id, crud.ConvertDBError(err))
	}
	return &t, nil
}

func (s *Store) DeleteTest(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	if err := softDelete(ctx, s.db, "tests", id, s.now(), deletedBy); err != nil {
		return fmt.Errorf("delete test %s: %w", id, err)
	}
	return nil
}

func (s *Store) ListRealConditions(ctx context.Context, testID uuid.UUID) ([]models.RealCondition, error) {
	if err := ensureActive(ctx, s.db, "tests", testID); err != nil {
		return nil, fmt.Errorf("list real conditions of %s: %w", testID, err)
	}
	conditions, err := queryList(ctx, s.db, scanRealCondition,
		"SELECT id, test_id, name, value, physical_quantity, required FROM real_conditions WHERE test_id = $1 ORDER BY name",
		testID)
	if err != nil {
		return nil, fmt.Errorf("list real conditions of %s: %w", testID, err)
	}
	return conditions, nil
}

func (s *Store) CreateRealCondition(ctx context.Context, testID uuid.UUID, in models.RealConditionCreate) (*models.RealCondition, error) {
	if !flagsSet(in.Required) {
		return nil, fmt.Errorf("create real condition: %w", crud.ErrNotNullViolation)
	}
	if err := ensureActive(ctx, s.db, "tests", testID); err != nil {
		return nil, fmt.Errorf("create real condition: %w", err)
	}
	c := models.RealCondition{
		ID: s.newID(), TestID: testID, Name: in.Name, Value: in.Value,
		PhysicalQuantity: in.PhysicalQuantity, Required: *in.Required,
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO real_conditions (id, test_id, name, value, physical_quantity, required)
VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.TestID, c.Name, c.Value, c.PhysicalQuantity, c.Required)
	if err != nil {
		return nil, fmt.Errorf("create real condition: %w", crud.ConvertDBError(err))
	}
	return &c, nil
}

func (s *Store) DeleteRealCondition(ctx context.Context, id uuid.UUID) error {
	if err := hardDelete(ctx, s.db, "real_conditions", testParent, id); err != nil {
		return fmt.Errorf("delete real condition %s: %w", id, err)
	}
	return nil
}

// ListReadings returns the readings of an active test from table.
func (s *Store) ListReadings(ctx context.Context, table ReadingTable, testID uuid.UUID) ([]models.Reading, error) {
	if err := ensureActive(ctx, s.db, "tests", testID); err != nil {
		return nil, fmt.Errorf("list %s of %s: %w", table, testID, err)
	}
	readings, err := queryList(ctx, s.db, scanReading, fmt.Sprintf(
		"SELECT id, test_id, name, value, physical_quantity, is_required FROM %s WHERE test_id = $1 ORDER BY name",
		table), testID)
	if err != nil {
		return nil, fmt.Errorf("list %s of %s: %w", table, testID, err)
	}
	return readings, nil
}

func (s *Store) CreateReading(ctx context.Context, table ReadingTable, testID uuid.UUID, in models.ReadingCreate) (*models.Reading, error) {
	if !flagsSet(in.IsRequired) {
		return nil, fmt.Errorf("create %s: %w", table, crud.ErrNotNullViolation)
	}
	if err := ensureActive(ctx, s.db, "tests", testID); err != nil {
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	r := models.Reading{
		ID: s.newID(), TestID: testID, Name: in.Name, Value: in.Value,
		PhysicalQuantity: in.PhysicalQuantity, IsRequired: *in.IsRequired,
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (id, test_id, name, value, physical_quantity, is_required)
VALUES ($1, $2, $3, $4, $5, $6)`, table),
		r.ID, r.TestID, r.Name, r.Value, r.PhysicalQuantity, r.IsRequired)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", table, crud.ConvertDBError(err))
	}
	return &r, nil
}

func (s *Store) DeleteReading(ctx context.Context, table ReadingTable, id uuid.UUID) error {
	if err := hardDelete(ctx, s.db, string(table), testParent, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}
