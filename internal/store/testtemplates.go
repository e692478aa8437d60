package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
)

const testTemplateColumns = `id, name, tags, is_vl_compatible, version, is_last_version, created_at,
updated_at, updated_by, is_deleted, deleted_at, deleted_by`

const (
	generalInfoColumns = "id, test_template_id, description, objective, standard, procedure"
	conditionColumns   = "id, test_template_id, name, value, physical_quantity, required"
	readingColumns     = "id, test_template_id, name, value, physical_quantity, is_required"
)

func scanTestTemplate(row rowScanner) (models.TestTemplate, error) {
	var t models.TestTemplate
	err := row.Scan(&t.ID, &t.Name, pq.Array(&t.Tags), &t.IsVLCompatible, &t.Version, &t.IsLastVersion,
		&t.CreatedAt, &t.UpdatedAt, &t.UpdatedBy, &t.IsDeleted, &t.DeletedAt, &t.DeletedBy)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, err
}

func scanGeneralInfo(row rowScanner) (models.TestTemplateGeneralInfo, error) {
	var g models.TestTemplateGeneralInfo
	err := row.Scan(&g.ID, &g.TestTemplateID, &g.Description, &g.Objective, &g.Standard, &g.Procedure)
	return g, err
}

func scanTemplateCondition(row rowScanner) (models.TestTemplateCondition, error) {
	var c models.TestTemplateCondition
	err := row.Scan(&c.ID, &c.TestTemplateID, &c.Name, &c.Value, &c.PhysicalQuantity, &c.Required)
	return c, err
}

func scanTemplateReading(row rowScanner) (models.TestTemplateReading, error) {
	var r models.TestTemplateReading
	err := row.Scan(&r.ID, &r.TestTemplateID, &r.Name, &r.Value, &r.PhysicalQuantity, &r.IsRequired)
	return r, err
}

func (s *Store) CreateTestTemplate(ctx context.Context, in models.TestTemplateCreate, actor *uuid.UUID) (*models.TestTemplate, error) {
	now := s.now()
	t := models.TestTemplate{
		ID:             s.newID(),
		Name:           in.Name,
		Tags:           nonNilStrings(in.Tags),
		IsVLCompatible: in.IsVLCompatible,
		Version:        in.Version,
		IsLastVersion:  in.IsLastVersion,
		CreatedAt:      now,
		UpdatedAt:      now,
		UpdatedBy:      actor,
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO test_templates (id, name, tags, is_vl_compatible, version, is_last_version, created_at, updated_at, updated_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, pq.Array(t.Tags), t.IsVLCompatible, t.Version, t.IsLastVersion, t.CreatedAt, t.UpdatedAt, t.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("create test template: %w", crud.ConvertDBError(err))
	}
	return &t, nil
}

func (s *Store) ListTestTemplates(ctx context.Context) ([]models.TestTemplate, error) {
	templates, err := queryList(ctx, s.db, scanTestTemplate,
		"SELECT "+testTemplateColumns+" FROM test_templates WHERE is_deleted = false ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list test templates: %w", err)
	}
	return templates, nil
}

func (s *Store) GetTestTemplate(ctx context.Context, id uuid.UUID) (*models.TestTemplate, error) {
	t, err := scanTestTemplate(s.db.QueryRowContext(ctx,
		"SELECT "+testTemplateColumns+" FROM test_templates WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get test template %s: %w", id, crud.ConvertDBError(err))
	}
	return &t, nil
}

func (s *Store) UpdateTestTemplate(ctx context.Context, id uuid.UUID, in models.TestTemplateUpdate, actor *uuid.UUID) (*models.TestTemplate, error) {
	var set crud.SetClause
	crud.SetIf(&set, "name", in.Name)
	if in.Tags != nil {
		set.Set("tags", pq.Array(nonNilStrings(*in.Tags)))
	}
	crud.SetIf(&set, "is_vl_compatible", in.IsVLCompatible)
	crud.SetIf(&set, "version", in.Version)
	crud.SetIf(&set, "is_last_version", in.IsLastVersion)
	crud.SetIf(&set, "updated_by", actorOr(in.UpdatedBy, actor))
	set.Set("updated_at", s.now())

	query, args := set.Build("test_templates", "id", id)
	t, err := scanTestTemplate(s.db.QueryRowContext(ctx,
		query+" AND is_deleted = false RETURNING "+testTemplateColumns, args...))
	if err != nil {
		return nil, fmt.Errorf("update test template %s: %w", id, crud.ConvertDBError(err))
	}
	return &t, nil
}

func (s *Store) DeleteTestTemplate(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	if err := softDelete(ctx, s.db, "test_templates", id, s.now(), deletedBy); err != nil {
		return fmt.Errorf("delete test template %s: %w", id, err)
	}
	return nil
}

// CreateGeneralInfo attaches the general info of a template. A template has
// at most one; a second create is crud.ErrConflict.
func (s *Store) CreateGeneralInfo(ctx context.Context, templateID uuid.UUID, in models.GeneralInfoInput) (*models.TestTemplateGeneralInfo, error) {
	g := models.TestTemplateGeneralInfo{
		ID:             s.newID(),
		TestTemplateID: templateID,
		Description:    in.Description,
		Objective:      in.Objective,
		Standard:       in.Standard,
		Procedure:      in.Procedure,
	}
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureActive(ctx, tx, "test_templates", templateID); err != nil {
			return err
		}
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM test_template_general_info WHERE test_template_id = $1)",
			templateID).Scan(&exists)
		if err != nil {
			return crud.ConvertDBError(err)
		}
		if exists {
			return fmt.Errorf("%w: general info already exists", crud.ErrConflict)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO test_template_general_info (id, test_template_id, description, objective, standard, procedure)
VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.TestTemplateID, g.Description, g.Objective, g.Standard, g.Procedure)
		return crud.ConvertDBError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("create general info for %s: %w", templateID, err)
	}
	return &g, nil
}

func (s *Store) GetGeneralInfo(ctx context.Context, templateID uuid.UUID) (*models.TestTemplateGeneralInfo, error) {
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("get general info for %s: %w", templateID, err)
	}
	g, err := scanGeneralInfo(s.db.QueryRowContext(ctx,
		"SELECT "+generalInfoColumns+" FROM test_template_general_info WHERE test_template_id = $1", templateID))
	if err != nil {
		return nil, fmt.Errorf("get general info for %s: %w", templateID, crud.ConvertDBError(err))
	}
	return &g, nil
}

// UpdateGeneralInfo writes the fields present in in. A template without
// general info is ErrNotFound.
func (s *Store) UpdateGeneralInfo(ctx context.Context, templateID uuid.UUID, in models.GeneralInfoInput) (*models.TestTemplateGeneralInfo, error) {
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("update general info for %s: %w", templateID, err)
	}

	var set crud.SetClause
	crud.SetIf(&set, "description", in.Description)
	crud.SetIf(&set, "objective", in.Objective)
	crud.SetIf(&set, "standard", in.Standard)
	crud.SetIf(&set, "procedure", in.Procedure)
	if set.Len() == 0 {
		return s.GetGeneralInfo(ctx, templateID)
	}

	query, args := set.Build("test_template_general_info", "test_template_id", templateID)
	g, err := scanGeneralInfo(s.db.QueryRowContext(ctx, query+" RETURNING "+generalInfoColumns, args...))
	if err != nil {
		return nil, fmt.Errorf("update general info for %s: %w", templateID, crud.ConvertDBError(err))
	}
	return &g, nil
}

func (s *Store) ListTemplateConditions(ctx context.Context, templateID uuid.UUID) ([]models.TestTemplateCondition, error) {
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("list conditions of %s: %w", templateID, err)
	}
	items, err := queryList(ctx, s.db, scanTemplateCondition,
		"SELECT "+conditionColumns+" FROM test_template_conditions WHERE test_template_id = $1 ORDER BY name", templateID)
	if err != nil {
		return nil, fmt.Errorf("list conditions of %s: %w", templateID, err)
	}
	return items, nil
}

func (s *Store) CreateTemplateCondition(ctx context.Context, templateID uuid.UUID, in models.TestTemplateConditionCreate) (*models.TestTemplateCondition, error) {
	if !flagsSet(in.Required) {
		return nil, fmt.Errorf("create condition: %w", crud.ErrNotNullViolation)
	}
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("create condition: %w", err)
	}
	c := models.TestTemplateCondition{
		ID: s.newID(), TestTemplateID: templateID, Name: in.Name, Value: in.Value,
		PhysicalQuantity: in.PhysicalQuantity, Required: *in.Required,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO test_template_conditions ("+conditionColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		c.ID, c.TestTemplateID, c.Name, c.Value, c.PhysicalQuantity, c.Required)
	if err != nil {
		return nil, fmt.Errorf("create condition: %w", crud.ConvertDBError(err))
	}
	return &c, nil
}

// UpdateTemplateCondition updates a condition only when it belongs to
// templateID.
func (s *Store) UpdateTemplateCondition(ctx context.Context, templateID, id uuid.UUID, in models.TestTemplateConditionUpdate) (*models.TestTemplateCondition, error) {
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("update condition %s: %w", id, err)
	}

	var set crud.SetClause
	crud.SetIf(&set, "name", in.Name)
	crud.SetIf(&set, "value", in.Value)
	crud.SetIf(&set, "physical_quantity", in.PhysicalQuantity)
	crud.SetIf(&set, "required", in.Required)

	var (
		c   models.TestTemplateCondition
		err error
	)
	if set.Len() == 0 {
		c, err = scanTemplateCondition(s.db.QueryRowContext(ctx,
			"SELECT "+conditionColumns+" FROM test_template_conditions WHERE id = $1 AND test_template_id = $2",
			id, templateID))
	} else {
		query, args := set.Build("test_template_conditions", "id", id)
		args = append(args, templateID)
		c, err = scanTemplateCondition(s.db.QueryRowContext(ctx, fmt.Sprintf(
			"%s AND test_template_id = $%d RETURNING %s", query, len(args), conditionColumns), args...))
	}
	if err != nil {
		return nil, fmt.Errorf("update condition %s: %w", id, crud.ConvertDBError(err))
	}
	return &c, nil
}

func (s *Store) DeleteTemplateCondition(ctx context.Context, id uuid.UUID) error {
	if err := hardDelete(ctx, s.db, "test_template_conditions", testTemplateParent, id); err != nil {
		return fmt.Errorf("delete condition %s: %w", id, err)
	}
	return nil
}

func (s *Store) ListTemplateReadings(ctx context.Context, templateID uuid.UUID) ([]models.TestTemplateReading, error) {
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("list readings of %s: %w", templateID, err)
	}
	items, err := queryList(ctx, s.db, scanTemplateReading,
		"SELECT "+readingColumns+" FROM test_template_readings WHERE test_template_id = $1 ORDER BY name", templateID)
	if err != nil {
		return nil, fmt.Errorf("list readings of %s: %w", templateID, err)
	}
	return items, nil
}

func (s *Store) CreateTemplateReading(ctx context.Context, templateID uuid.UUID, in models.TestTemplateReadingCreate) (*models.TestTemplateReading, error) {
	if !flagsSet(in.IsRequired) {
		return nil, fmt.Errorf("create reading: %w", crud.ErrNotNullViolation)
	}
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("create reading: %w", err)
	}
	r := models.TestTemplateReading{
		ID: s.newID(), TestTemplateID: templateID, Name: in.Name, Value: in.Value,
		PhysicalQuantity: in.PhysicalQuantity, IsRequired: *in.IsRequired,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO test_template_readings ("+readingColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		r.ID, r.TestTemplateID, r.Name, r.Value, r.PhysicalQuantity, r.IsRequired)
	if err != nil {
		return nil, fmt.Errorf("create reading: %w", crud.ConvertDBError(err))
	}
	return &r, nil
}

// UpdateTemplateReading updates a reading only when it belongs to
// templateID.
func (s *Store) UpdateTemplateReading(ctx context.Context, templateID, id uuid.UUID, in models.TestTemplateReadingUpdate) (*models.TestTemplateReading, error) {
	if err := ensureActive(ctx, s.db, "test_templates", templateID); err != nil {
		return nil, fmt.Errorf("update reading %s: %w", id, err)
	}

	var set crud.SetClause
	crud.SetIf(&set, "name", in.Name)
	crud.SetIf(&set, "value", in.Value)
	crud.SetIf(&set, "physical_quantity", in.PhysicalQuantity)
	crud.SetIf(&set, "is_required", in.IsRequired)

	var (
		r   models.TestTemplateReading
		err error
	)
	if set.Len() == 0 {
		r, err = scanTemplateReading(s.db.QueryRowContext(ctx,
			"SELECT "+readingColumns+" FROM test_template_readings WHERE id = $1 AND test_template_id = $2",
			id, templateID))
	} else {
		query, args := set.Build("test_template_readings", "id", id)
		args = append(args, templateID)
		r, err = scanTemplateReading(s.db.QueryRowContext(ctx, fmt.Sprintf(
			"%s AND test_template_id = $%d RETURNING %s", query, len(args), readingColumns), args...))
	}
	if err != nil {
		return nil, fmt.Errorf("update reading %s: %w", id, crud.ConvertDBError(err))
	}
	return &r, nil
}

func (s *Store) DeleteTemplateReading(ctx context.Context, id uuid.UUID) error {
	if err := hardDelete(ctx, s.db, "test_template_readings", testTemplateParent, id); err != nil {
		return fmt.Errorf("delete reading %s: %w", id, err)
	}
	return nil
}
