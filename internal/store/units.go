package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
)

const linearUnitColumns = "id, name, base, factor_to_base, created_at, created_by, is_deleted, deleted_at, deleted_by"

const functionalUnitColumns = "id, name, base, to_base, from_base, created_at, created_by, is_deleted, deleted_at, deleted_by"

// prefixed qualifies every column of a column list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

func scanLinearUnit(row rowScanner) (models.LinearUnit, error) {
	var u models.LinearUnit
	err := row.Scan(&u.ID, &u.Name, &u.Base, &u.FactorToBase, &u.CreatedAt, &u.CreatedBy,
		&u.IsDeleted, &u.DeletedAt, &u.DeletedBy)
	return u, err
}

func scanFunctionalUnit(row rowScanner) (models.FunctionalUnit, error) {
	var u models.FunctionalUnit
	err := row.Scan(&u.ID, &u.Name, &u.Base, &u.ToBase, &u.FromBase, &u.CreatedAt, &u.CreatedBy,
		&u.IsDeleted, &u.DeletedAt, &u.DeletedBy)
	return u, err
}

// CreateLinearUnit stores a linear unit definition.
func (s *Store) CreateLinearUnit(ctx context.Context, in models.LinearUnitCreate) (*models.LinearUnit, error) {
	u := models.LinearUnit{
		ID:           s.newID(),
		Name:         in.Name,
		Base:         in.Base,
		FactorToBase: in.FactorToBase,
		CreatedAt:    s.now(),
		CreatedBy:    in.CreatedBy,
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO linear_units (id, name, base, factor_to_base, created_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Base, u.FactorToBase, u.CreatedAt, u.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("create linear unit: %w", crud.ConvertDBError(err))
	}
	return &u, nil
}

// ListLinearUnits returns the linear units that are not soft-deleted.
func (s *Store) ListLinearUnits(ctx context.Context) ([]models.LinearUnit, error) {
	units, err := queryList(ctx, s.db, scanLinearUnit,
		"SELECT "+linearUnitColumns+" FROM linear_units WHERE is_deleted = false ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list linear units: %w", err)
	}
	return units, nil
}

func (s *Store) GetLinearUnit(ctx context.Context, id uuid.UUID) (*models.LinearUnit, error) {
	u, err := scanLinearUnit(s.db.QueryRowContext(ctx,
		"SELECT "+linearUnitColumns+" FROM linear_units WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get linear unit %s: %w", id, crud.ConvertDBError(err))
	}
	return &u, nil
}

func (s *Store) DeleteLinearUnit(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	if err := softDelete(ctx, s.db, "linear_units", id, s.now(), deletedBy); err != nil {
		return fmt.Errorf("delete linear unit %s: %w", id, err)
	}
	return nil
}

// CreateFunctionalUnit stores a functional unit definition. The formulas
// are kept verbatim.
func (s *Store) CreateFunctionalUnit(ctx context.Context, in models.FunctionalUnitCreate) (*models.FunctionalUnit, error) {
	u := models.FunctionalUnit{
		ID:        s.newID(),
		Name:      in.Name,
		Base:      in.Base,
		ToBase:    in.ToBase,
		FromBase:  in.FromBase,
		CreatedAt: s.now(),
		CreatedBy: in.CreatedBy,
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO functional_units (id, name, base, to_base, from_base, created_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Base, u.ToBase, u.FromBase, u.CreatedAt, u.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("create functional unit: %w", crud.ConvertDBError(err))
	}
	return &u, nil
}

func (s *Store) ListFunctionalUnits(ctx context.Context) ([]models.FunctionalUnit, error) {
	units, err := queryList(ctx, s.db, scanFunctionalUnit,
		"SELECT "+functionalUnitColumns+" FROM functional_units WHERE is_deleted = false ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list functional units: %w", err)
	}
	return units, nil
}

func (s *Store) GetFunctionalUnit(ctx context.Context, id uuid.UUID) (*models.FunctionalUnit, error) {
	u, err := scanFunctionalUnit(s.db.QueryRowContext(ctx,
		"SELECT "+functionalUnitColumns+" FROM functional_units WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get functional unit %s: %w", id, crud.ConvertDBError(err))
	}
	return &u, nil
}

func (s *Store) DeleteFunctionalUnit(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	if err := softDelete(ctx, s.db, "functional_units", id, s.now(), deletedBy); err != nil {
		return fmt.Errorf("delete functional unit %s: %w", id, err)
	}
	return nil
}
