package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
)

const projectColumns = `id, name, client, status, type, tags, start_date, expected_delivery_date,
version, is_last_version, created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Client, &p.Status, &p.Type, pq.Array(&p.Tags),
		&p.StartDate, &p.ExpectedDeliveryDate, &p.Version, &p.IsLastVersion,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy,
		&p.IsDeleted, &p.DeletedAt, &p.DeletedBy)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, err
}

// CreateProject inserts a project. CreatedBy is required; UpdatedBy
// defaults to it.
func (s *Store) CreateProject(ctx context.Context, in models.ProjectCreate) (*models.Project, error) {
	if in.CreatedBy == nil {
		return nil, fmt.Errorf("create project: %w", crud.ErrNotNullViolation)
	}
	now := s.now()
	p := models.Project{
		ID:                   s.newID(),
		Name:                 in.Name,
		Client:               in.Client,
		Status:               in.Status,
		Type:                 in.Type,
		Tags:                 nonNilStrings(in.Tags),
		StartDate:            in.StartDate,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Version:              in.Version,
		IsLastVersion:        in.IsLastVersion,
		CreatedAt:            now,
		CreatedBy:            *in.CreatedBy,
		UpdatedAt:            now,
		UpdatedBy:            *actorOr(in.UpdatedBy, in.CreatedBy),
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO projects (id, name, client, status, type, tags, start_date, expected_delivery_date,
	version, is_last_version, created_at, created_by, updated_at, updated_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Name, p.Client, p.Status, p.Type, pq.Array(p.Tags), p.StartDate, p.ExpectedDeliveryDate,
		p.Version, p.IsLastVersion, p.CreatedAt, p.CreatedBy, p.UpdatedAt, p.UpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", crud.ConvertDBError(err))
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := queryList(ctx, s.db, scanProject,
		"SELECT "+projectColumns+" FROM projects WHERE is_deleted = false ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project that is not soft-deleted.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, crud.ConvertDBError(err))
	}
	return &p, nil
}

// UpdateProject writes the fields present in in and refreshes updatedAt.
func (s *Store) UpdateProject(ctx context.Context, id uuid.UUID, in models.ProjectUpdate) (*models.Project, error) {
	var set crud.SetClause
	crud.SetIf(&set, "name", in.Name)
	if in.Tags != nil {
		set.Set("tags", pq.Array(nonNilStrings(*in.Tags)))
	}
	crud.SetIf(&set, "client", in.Client)
	crud.SetIf(&set, "status", in.Status)
	crud.SetIf(&set, "type", in.Type)
	crud.SetIf(&set, "start_date", in.StartDate)
	crud.SetIf(&set, "expected_delivery_date", in.ExpectedDeliveryDate)
	crud.SetIf(&set, "version", in.Version)
	crud.SetIf(&set, "is_last_version", in.IsLastVersion)
	crud.SetIf(&set, "updated_by", in.UpdatedBy)
	set.Set("updated_at", s.now())

	query, args := set.Build("projects", "id", id)
	p, err := scanProject(s.db.QueryRowContext(ctx,
		query+" AND is_deleted = false RETURNING "+projectColumns, args...))
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, crud.ConvertDBError(err))
	}
	return &p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	if err := softDelete(ctx, s.db, "projects", id, s.now(), deletedBy); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// ListProjectMetaData returns the metadata of an active project.
func (s *Store) ListProjectMetaData(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMetaData, error) {
	return listProjectChildren(ctx, s, projectID, "project_metadata", "id, project_id, name, value",
		func(row rowScanner) (models.ProjectMetaData, error) {
			var m models.ProjectMetaData
			err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Value)
			return m, err
		})
}

func (s *Store) CreateProjectMetaData(ctx context.Context, projectID uuid.UUID, in models.ProjectMetaDataCreate) (*models.ProjectMetaData, error) {
	m := models.ProjectMetaData{ID: s.newID(), ProjectID: projectID, Name: in.Name, Value: in.Value}
	err := s.insertProjectChild(ctx, projectID,
		"INSERT INTO project_metadata (id, project_id, name, value) VALUES ($1, $2, $3, $4)",
		m.ID, m.ProjectID, m.Name, m.Value)
	if err != nil {
		return nil, fmt.Errorf("create project metadata: %w", err)
	}
	return &m, nil
}

func (s *Store) ListProjectRules(ctx context.Context, projectID uuid.UUID) ([]models.ProjectRule, error) {
	return listProjectChildren(ctx, s, projectID, "project_rules", "id, project_id, name, is_link, is_file, link",
		func(row rowScanner) (models.ProjectRule, error) {
			var r models.ProjectRule
			err := row.Scan(&r.ID, &r.ProjectID, &r.Name, &r.IsLink, &r.IsFile, &r.Link)
			return r, err
		})
}

func (s *Store) CreateProjectRule(ctx context.Context, projectID uuid.UUID, in models.ProjectRuleCreate) (*models.ProjectRule, error) {
	if !flagsSet(in.IsLink, in.IsFile) {
		return nil, fmt.Errorf("create project rule: %w", crud.ErrNotNullViolation)
	}
	r := models.ProjectRule{
		ID: s.newID(), ProjectID: projectID, Name: in.Name,
		IsLink: *in.IsLink, IsFile: *in.IsFile, Link: in.Link,
	}
	err := s.insertProjectChild(ctx, projectID,
		"INSERT INTO project_rules (id, project_id, name, is_link, is_file, link) VALUES ($1, $2, $3, $4, $5, $6)",
		r.ID, r.ProjectID, r.Name, r.IsLink, r.IsFile, r.Link)
	if err != nil {
		return nil, fmt.Errorf("create project rule: %w", err)
	}
	return &r, nil
}

func (s *Store) ListProjectObjectives(ctx context.Context, projectID uuid.UUID) ([]models.ProjectObjective, error) {
	return listProjectChildren(ctx, s, projectID, "project_objectives",
		"id, project_id, name, value_min, value_max, physical_quantity, text, is_optional",
		func(row rowScanner) (models.ProjectObjective, error) {
			var o models.ProjectObjective
			err := row.Scan(&o.ID, &o.ProjectID, &o.Name, &o.ValueMin, &o.ValueMax,
				&o.PhysicalQuantity, &o.Text, &o.IsOptional)
			return o, err
		})
}

func (s *Store) CreateProjectObjective(ctx context.Context, projectID uuid.UUID, in models.ProjectObjectiveCreate) (*models.ProjectObjective, error) {
	if !flagsSet(in.IsOptional) {
		return nil, fmt.Errorf("create project objective: %w", crud.ErrNotNullViolation)
	}
	o := models.ProjectObjective{
		ID: s.newID(), ProjectID: projectID, Name: in.Name,
		ValueMin: in.ValueMin, ValueMax: in.ValueMax,
		PhysicalQuantity: in.PhysicalQuantity, Text: in.Text, IsOptional: *in.IsOptional,
	}
	err := s.insertProjectChild(ctx, projectID, `
INSERT INTO project_objectives (id, project_id, name, value_min, value_max, physical_quantity, text, is_optional)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.ProjectID, o.Name, o.ValueMin, o.ValueMax, o.PhysicalQuantity, o.Text, o.IsOptional)
	if err != nil {
		return nil, fmt.Errorf("create project objective: %w", err)
	}
	return &o, nil
}

func (s *Store) ListProjectDeliverables(ctx context.Context, projectID uuid.UUID) ([]models.ProjectDeliverable, error) {
	return listProjectChildren(ctx, s, projectID, "project_deliverables", "id, project_id, name, content, is_optional",
		func(row rowScanner) (models.ProjectDeliverable, error) {
			var d models.ProjectDeliverable
			err := row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Content, &d.IsOptional)
			return d, err
		})
}

func (s *Store) CreateProjectDeliverable(ctx context.Context, projectID uuid.UUID, in models.ProjectDeliverableCreate) (*models.ProjectDeliverable, error) {
	if !flagsSet(in.IsOptional) {
		return nil, fmt.Errorf("create project deliverable: %w", crud.ErrNotNullViolation)
	}
	d := models.ProjectDeliverable{
		ID: s.newID(), ProjectID: projectID, Name: in.Name, Content: in.Content, IsOptional: *in.IsOptional,
	}
	err := s.insertProjectChild(ctx, projectID,
		"INSERT INTO project_deliverables (id, project_id, name, content, is_optional) VALUES ($1, $2, $3, $4, $5)",
		d.ID, d.ProjectID, d.Name, d.Content, d.IsOptional)
	if err != nil {
		return nil, fmt.Errorf("create project deliverable: %w", err)
	}
	return &d, nil
}

func (s *Store) ListProjectConstraints(ctx context.Context, projectID uuid.UUID) ([]models.ProjectConstraint, error) {
	return listProjectChildren(ctx, s, projectID, "project_constraints", "id, project_id, name, value",
		func(row rowScanner) (models.ProjectConstraint, error) {
			var c models.ProjectConstraint
			err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Value)
			return c, err
		})
}

func (s *Store) CreateProjectConstraint(ctx context.Context, projectID uuid.UUID, in models.ProjectConstraintCreate) (*models.ProjectConstraint, error) {
	c := models.ProjectConstraint{ID: s.newID(), ProjectID: projectID, Name: in.Name, Value: in.Value}
	err := s.insertProjectChild(ctx, projectID,
		"INSERT INTO project_constraints (id, project_id, name, value) VALUES ($1, $2, $3, $4)",
		c.ID, c.ProjectID, c.Name, c.Value)
	if err != nil {
		return nil, fmt.Errorf("create project constraint: %w", err)
	}
	return &c, nil
}

func (s *Store) ListProjectAttachments(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAttachment, error) {
	return listProjectChildren(ctx, s, projectID, "project_attachments", "id, project_id, name, attachment_id",
		func(row rowScanner) (models.ProjectAttachment, error) {
			var a models.ProjectAttachment
			err := row.Scan(&a.ID, &a.ProjectID, &a.Name, &a.AttachmentID)
			return a, err
		})
}

func (s *Store) CreateProjectAttachment(ctx context.Context, projectID uuid.UUID, in models.ProjectAttachmentCreate) (*models.ProjectAttachment, error) {
	a := models.ProjectAttachment{ID: s.newID(), ProjectID: projectID, Name: in.Name, AttachmentID: in.AttachmentID}
	err := s.insertProjectChild(ctx, projectID,
		"INSERT INTO project_attachments (id, project_id, name, attachment_id) VALUES ($1, $2, $3, $4)",
		a.ID, a.ProjectID, a.Name, a.AttachmentID)
	if err != nil {
		return nil, fmt.Errorf("create project attachment: %w", err)
	}
	return &a, nil
}

// ProjectChildTables maps the child kinds of a project, as named in the
// API, to their tables.
var ProjectChildTables = map[string]string{
	"metadata":     "project_metadata",
	"rules":        "project_rules",
	"objectives":   "project_objectives",
	"deliverables": "project_deliverables",
	"constraints":  "project_constraints",
	"attachments":  "project_attachments",
}

// DeleteProjectChild hard-deletes a child row of the given kind.
func (s *Store) DeleteProjectChild(ctx context.Context, kind string, id uuid.UUID) error {
	table, ok := ProjectChildTables[kind]
	if !ok {
		return fmt.Errorf("unknown project child kind %q", kind)
	}
	if err := hardDelete(ctx, s.db, table, projectParent, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

func listProjectChildren[T any](ctx context.Context, s *Store, projectID uuid.UUID, table, columns string, scan func(rowScanner) (T, error)) ([]T, error) {
	if err := ensureActive(ctx, s.db, "projects", projectID); err != nil {
		return nil, fmt.Errorf("list %s of project %s: %w", table, projectID, err)
	}
	items, err := queryList(ctx, s.db, scan,
		fmt.Sprintf("SELECT %s FROM %s WHERE project_id = $1 ORDER BY name", columns, table), projectID)
	if err != nil {
		return nil, fmt.Errorf("list %s of project %s: %w", table, projectID, err)
	}
	return items, nil
}

func (s *Store) insertProjectChild(ctx context.Context, projectID uuid.UUID, query string, args ...interface{}) error {
	if err := ensureActive(ctx, s.db, "projects", projectID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return crud.ConvertDBError(err)
	}
	return nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
