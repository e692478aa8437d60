package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
	"github.com/labbench/testbench/internal/orm/transaction"
)

const unitSystemColumns = "id, name, created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by"

const physicalQuantityColumns = "id, unit_system_id, quantity, value, type"

func scanUnitSystem(row rowScanner) (models.UnitSystem, error) {
	var u models.UnitSystem
	err := row.Scan(&u.ID, &u.Name, &u.CreatedAt, &u.CreatedBy, &u.UpdatedAt, &u.UpdatedBy,
		&u.IsDeleted, &u.DeletedAt, &u.DeletedBy)
	u.PhysicalQuantities = []models.PhysicalQuantity{}
	return u, err
}

func scanPhysicalQuantity(row rowScanner) (models.PhysicalQuantity, error) {
	var q models.PhysicalQuantity
	var kind sql.NullString
	err := row.Scan(&q.ID, &q.UnitSystemID, &q.Quantity, &q.Value, &kind)
	if kind.Valid {
		k := models.UnitKind(kind.String)
		q.Type = &k
	}
	q.LinearUnits = []models.LinearUnit{}
	q.FunctionalUnits = []models.FunctionalUnit{}
	return q, err
}

// CreateUnitSystem inserts a unit system and its physical quantities in one
// transaction.
func (s *Store) CreateUnitSystem(ctx context.Context, in models.UnitSystemCreate) (*models.UnitSystem, error) {
	now := s.now()
	us := models.UnitSystem{
		ID:                 s.newID(),
		Name:               in.Name,
		CreatedAt:          now,
		CreatedBy:          in.CreatedBy,
		UpdatedAt:          now,
		UpdatedBy:          in.CreatedBy,
		PhysicalQuantities: make([]models.PhysicalQuantity, 0, len(in.PhysicalQuantities)),
	}

	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO unit_systems (id, name, created_at, created_by, updated_at, updated_by)
VALUES ($1, $2, $3, $4, $5, $6)`,
			us.ID, us.Name, us.CreatedAt, us.CreatedBy, us.UpdatedAt, us.UpdatedBy)
		if err != nil {
			return crud.ConvertDBError(err)
		}

		for _, q := range in.PhysicalQuantities {
			quantity, err := s.insertPhysicalQuantity(ctx, tx, us.ID, q)
			if err != nil {
				return err
			}
			us.PhysicalQuantities = append(us.PhysicalQuantities, *quantity)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create unit system: %w", err)
	}

	s.logger.Debug("unit system created",
		zap.Stringer("id", us.ID),
		zap.Int("physical_quantities", len(us.PhysicalQuantities)))
	return &us, nil
}

func (s *Store) insertPhysicalQuantity(ctx context.Context, q transaction.Querier, systemID uuid.UUID, in models.PhysicalQuantityCreate) (*models.PhysicalQuantity, error) {
	quantity := models.PhysicalQuantity{
		ID:              s.newID(),
		UnitSystemID:    systemID,
		Quantity:        in.Quantity,
		Value:           in.Value,
		LinearUnits:     []models.LinearUnit{},
		FunctionalUnits: []models.FunctionalUnit{},
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO physical_quantities (id, unit_system_id, quantity, value) VALUES ($1, $2, $3, $4)",
		quantity.ID, quantity.UnitSystemID, quantity.Quantity, quantity.Value)
	if err != nil {
		return nil, crud.ConvertDBError(err)
	}
	return &quantity, nil
}

// ListUnitSystems returns every unit system that is not soft-deleted, with
// its quantities and their units.
func (s *Store) ListUnitSystems(ctx context.Context) ([]models.UnitSystem, error) {
	systems, err := queryList(ctx, s.db, scanUnitSystem,
		"SELECT "+unitSystemColumns+" FROM unit_systems WHERE is_deleted = false ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list unit systems: %w", err)
	}
	if err := s.loadPhysicalQuantities(ctx, systems); err != nil {
		return nil, fmt.Errorf("list unit systems: %w", err)
	}
	return systems, nil
}

// GetUnitSystem returns one unit system with its quantities and units.
func (s *Store) GetUnitSystem(ctx context.Context, id uuid.UUID) (*models.UnitSystem, error) {
	us, err := scanUnitSystem(s.db.QueryRowContext(ctx,
		"SELECT "+unitSystemColumns+" FROM unit_systems WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get unit system %s: %w", id, crud.ConvertDBError(err))
	}

	systems := []models.UnitSystem{us}
	if err := s.loadPhysicalQuantities(ctx, systems); err != nil {
		return nil, fmt.Errorf("get unit system %s: %w", id, err)
	}
	return &systems[0], nil
}

// loadPhysicalQuantities fills the quantities of systems, and the units of
// those quantities, with one query per table.
func (s *Store) loadPhysicalQuantities(ctx context.Context, systems []models.UnitSystem) error {
	if len(systems) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(systems))
	index := make(map[uuid.UUID]int, len(systems))
	for i, us := range systems {
		ids[i] = us.ID
		index[us.ID] = i
	}

	quantities, err := queryList(ctx, s.db, scanPhysicalQuantity,
		"SELECT "+physicalQuantityColumns+" FROM physical_quantities WHERE unit_system_id = ANY($1) ORDER BY quantity",
		pq.Array(idStrings(ids)))
	if err != nil {
		return fmt.Errorf("load physical quantities: %w", err)
	}
	if len(quantities) == 0 {
		return nil
	}

	pqIDs := make([]uuid.UUID, len(quantities))
	for i, q := range quantities {
		pqIDs[i] = q.ID
	}

	linear, err := s.linearUnitsFor(ctx, pqIDs)
	if err != nil {
		return err
	}
	functional, err := s.functionalUnitsFor(ctx, pqIDs)
	if err != nil {
		return err
	}

	for _, q := range quantities {
		if units, ok := linear[q.ID]; ok {
			q.LinearUnits = units
		}
		if units, ok := functional[q.ID]; ok {
			q.FunctionalUnits = units
		}
		i := index[q.UnitSystemID]
		systems[i].PhysicalQuantities = append(systems[i].PhysicalQuantities, q)
	}
	return nil
}

func (s *Store) linearUnitsFor(ctx context.Context, pqIDs []uuid.UUID) (map[uuid.UUID][]models.LinearUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT l.physical_quantity_id, `+prefixed("u", linearUnitColumns)+`
FROM linear_units u
JOIN linear_unit_physical_quantity l ON l.linear_unit_id = u.id
WHERE l.physical_quantity_id = ANY($1) AND u.is_deleted = false
ORDER BY u.name`, pq.Array(idStrings(pqIDs)))
	if err != nil {
		return nil, fmt.Errorf("load linear units: %w", crud.ConvertDBError(err))
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.LinearUnit)
	for rows.Next() {
		var pqID uuid.UUID
		var u models.LinearUnit
		if err := rows.Scan(&pqID, &u.ID, &u.Name, &u.Base, &u.FactorToBase, &u.CreatedAt, &u.CreatedBy,
			&u.IsDeleted, &u.DeletedAt, &u.DeletedBy); err != nil {
			return nil, fmt.Errorf("failed to scan linear unit: %w", err)
		}
		out[pqID] = append(out[pqID], u)
	}
	return out, rows.Err()
}

func (s *Store) functionalUnitsFor(ctx context.Context, pqIDs []uuid.UUID) (map[uuid.UUID][]models.FunctionalUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT l.physical_quantity_id, `+prefixed("u", functionalUnitColumns)+`
FROM functional_units u
JOIN functional_unit_physical_quantity l ON l.functional_unit_id = u.id
WHERE l.physical_quantity_id = ANY($1) AND u.is_deleted = false
ORDER BY u.name`, pq.Array(idStrings(pqIDs)))
	if err != nil {
		return nil, fmt.Errorf("load functional units: %w", crud.ConvertDBError(err))
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.FunctionalUnit)
	for rows.Next() {
		var pqID uuid.UUID
		var u models.FunctionalUnit
		if err := rows.Scan(&pqID, &u.ID, &u.Name, &u.Base, &u.ToBase, &u.FromBase, &u.CreatedAt, &u.CreatedBy,
			&u.IsDeleted, &u.DeletedAt, &u.DeletedBy); err != nil {
			return nil, fmt.Errorf("failed to scan functional unit: %w", err)
		}
		out[pqID] = append(out[pqID], u)
	}
	return out, rows.Err()
}

// UpdateUnitSystem applies a partial update. updatedAt is always refreshed.
func (s *Store) UpdateUnitSystem(ctx context.Context, id uuid.UUID, in models.UnitSystemUpdate) (*models.UnitSystem, error) {
	var set crud.SetClause
	crud.SetIf(&set, "name", in.Name)
	crud.SetIf(&set, "updated_by", in.UpdatedBy)
	set.Set("updated_at", s.now())

	query, args := set.Build("unit_systems", "id", id)
	res, err := s.db.ExecContext(ctx, query+" AND is_deleted = false", args...)
	if err == nil {
		err = expectAffected(res)
	}
	if err != nil {
		return nil, fmt.Errorf("update unit system %s: %w", id, crud.ConvertDBError(err))
	}
	return s.GetUnitSystem(ctx, id)
}

// DeleteUnitSystem soft-deletes a unit system.
func (s *Store) DeleteUnitSystem(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	if err := softDelete(ctx, s.db, "unit_systems", id, s.now(), deletedBy); err != nil {
		return fmt.Errorf("delete unit system %s: %w", id, err)
	}
	return nil
}

// AddPhysicalQuantity adds a quantity to an active unit system and returns
// the updated system.
func (s *Store) AddPhysicalQuantity(ctx context.Context, systemID uuid.UUID, in models.PhysicalQuantityCreate) (*models.UnitSystem, error) {
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureActive(ctx, tx, "unit_systems", systemID); err != nil {
			return err
		}
		_, err := s.insertPhysicalQuantity(ctx, tx, systemID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add physical quantity to %s: %w", systemID, err)
	}
	return s.GetUnitSystem(ctx, systemID)
}

// DeletePhysicalQuantity removes a quantity that belongs to systemID.
func (s *Store) DeletePhysicalQuantity(ctx context.Context, systemID, pqID uuid.UUID) (*models.UnitSystem, error) {
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureActive(ctx, tx, "unit_systems", systemID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM physical_quantities WHERE id = $1 AND unit_system_id = $2", pqID, systemID)
		if err != nil {
			return crud.ConvertDBError(err)
		}
		return expectAffected(res)
	})
	if err != nil {
		return nil, fmt.Errorf("delete physical quantity %s: %w", pqID, err)
	}
	return s.GetUnitSystem(ctx, systemID)
}

// unitLink names the tables behind one kind of unit definition.
type unitLink struct {
	kind       models.UnitKind
	units      string
	links      string
	unitColumn string
}

var (
	linearLink = unitLink{
		kind:       models.UnitKindLinear,
		units:      "linear_units",
		links:      "linear_unit_physical_quantity",
		unitColumn: "linear_unit_id",
	}
	functionalLink = unitLink{
		kind:       models.UnitKindFunctional,
		units:      "functional_units",
		links:      "functional_unit_physical_quantity",
		unitColumn: "functional_unit_id",
	}
)

// AttachLinearUnit links a linear unit to a physical quantity. A quantity
// that already carries functional units is a conflict.
func (s *Store) AttachLinearUnit(ctx context.Context, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error) {
	return s.attachUnit(ctx, linearLink, systemID, pqID, unitID)
}

// AttachFunctionalUnit links a functional unit to a physical quantity.
func (s *Store) AttachFunctionalUnit(ctx context.Context, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error) {
	return s.attachUnit(ctx, functionalLink, systemID, pqID, unitID)
}

// DetachLinearUnit removes the link between a linear unit and a quantity.
func (s *Store) DetachLinearUnit(ctx context.Context, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error) {
	return s.detachUnit(ctx, linearLink, systemID, pqID, unitID)
}

// DetachFunctionalUnit removes the link between a functional unit and a
// quantity.
func (s *Store) DetachFunctionalUnit(ctx context.Context, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error) {
	return s.detachUnit(ctx, functionalLink, systemID, pqID, unitID)
}

// lockQuantity reads the unit kind of a quantity of systemID and locks the
// row for the rest of the transaction.
func lockQuantity(ctx context.Context, tx *sql.Tx, systemID, pqID uuid.UUID) (sql.NullString, error) {
	if err := ensureActive(ctx, tx, "unit_systems", systemID); err != nil {
		return sql.NullString{}, err
	}
	var kind sql.NullString
	err := tx.QueryRowContext(ctx,
		"SELECT type FROM physical_quantities WHERE id = $1 AND unit_system_id = $2 FOR UPDATE",
		pqID, systemID).Scan(&kind)
	if err != nil {
		return sql.NullString{}, crud.ConvertDBError(err)
	}
	return kind, nil
}

func (s *Store) attachUnit(ctx context.Context, link unitLink, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error) {
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		kind, err := lockQuantity(ctx, tx, systemID, pqID)
		if err != nil {
			return err
		}
		if kind.Valid && models.UnitKind(kind.String) != link.kind {
			return fmt.Errorf("%w: physical quantity already uses %s units", crud.ErrConflict, kind.String)
		}
		if err := ensureActive(ctx, tx, link.units, unitID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (%s, physical_quantity_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			link.links, link.unitColumn), unitID, pqID)
		if err != nil {
			return crud.ConvertDBError(err)
		}
		if !kind.Valid {
			_, err = tx.ExecContext(ctx,
				"UPDATE physical_quantities SET type = $1 WHERE id = $2", string(link.kind), pqID)
			return crud.ConvertDBError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attach %s unit %s: %w", link.kind, unitID, err)
	}

	s.logger.Debug("unit attached",
		zap.String("kind", string(link.kind)),
		zap.Stringer("physical_quantity", pqID),
		zap.Stringer("unit", unitID))
	return s.GetUnitSystem(ctx, systemID)
}

func (s *Store) detachUnit(ctx context.Context, link unitLink, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error) {
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := lockQuantity(ctx, tx, systemID, pqID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE %s = $1 AND physical_quantity_id = $2",
			link.links, link.unitColumn), unitID, pqID)
		if err != nil {
			return crud.ConvertDBError(err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		var remaining int
		err = tx.QueryRowContext(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE physical_quantity_id = $1", link.links), pqID).Scan(&remaining)
		if err != nil {
			return crud.ConvertDBError(err)
		}
		if remaining == 0 {
			_, err = tx.ExecContext(ctx, "UPDATE physical_quantities SET type = NULL WHERE id = $1", pqID)
			return crud.ConvertDBError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("detach %s unit %s: %w", link.kind, unitID, err)
	}
	return s.GetUnitSystem(ctx, systemID)
}
