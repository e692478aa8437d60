package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
	"github.com/labbench/testbench/internal/orm/transaction"
)

const objectTemplateColumns = `id, name, description, type, tags, allowed_composition, fabricant, fournisseur,
version, is_last_version, created_at, updated_at, is_deleted, deleted_at`

const ruleColumns = "id, object_template_id, name, value, is_link, link, is_file"

const attachmentColumns = `a.id, a.object_template_id, a.file_name, a.file_type, a.size_bytes, a.file_hash,
a.uploaded_at, a.reference_count, a.meta_data, a.is_deleted, f.id, f.provider, f.path, f.bucket`

const attachmentFrom = "attachments a LEFT JOIN attachment_file_storages f ON f.id = a.file_storage_id"

func scanObjectTemplate(row rowScanner) (models.ObjectTemplate, error) {
	var o models.ObjectTemplate
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Type, pq.Array(&o.Tags), pq.Array(&o.AllowedComposition),
		&o.Fabricant, &o.Fournisseur, &o.Version, &o.IsLastVersion, &o.CreatedAt, &o.UpdatedAt,
		&o.IsDeleted, &o.DeletedAt)
	if o.Tags == nil {
		o.Tags = []string{}
	}
	if o.AllowedComposition == nil {
		o.AllowedComposition = []string{}
	}
	o.Rules = []models.ObjectTemplateRule{}
	o.Attachments = []models.Attachment{}
	return o, err
}

func scanRule(row rowScanner) (models.ObjectTemplateRule, error) {
	var r models.ObjectTemplateRule
	err := row.Scan(&r.ID, &r.ObjectTemplateID, &r.Name, &r.Value, &r.IsLink, &r.Link, &r.IsFile)
	return r, err
}

func scanAttachment(row rowScanner) (models.Attachment, error) {
	var (
		a        models.Attachment
		fsID     *uuid.UUID
		provider sql.NullString
		path     sql.NullString
		bucket   *string
	)
	err := row.Scan(&a.ID, &a.ObjectTemplateID, &a.FileName, &a.FileType, &a.SizeBytes, &a.FileHash,
		&a.UploadedAt, &a.ReferenceCount, &a.MetaData, &a.IsDeleted, &fsID, &provider, &path, &bucket)
	if fsID != nil {
		a.FileStorage = &models.FileStorage{ID: *fsID, Provider: provider.String, Path: path.String, Bucket: bucket}
	}
	if a.MetaData == nil {
		a.MetaData = models.JSONObject{}
	}
	return a, err
}

// CreateObjectTemplate inserts a template with its rules and attachments in
// one transaction.
func (s *Store) CreateObjectTemplate(ctx context.Context, in models.ObjectTemplateCreate) (*models.ObjectTemplate, error) {
	now := s.now()
	o := models.ObjectTemplate{
		ID:                 s.newID(),
		Name:               in.Name,
		Description:        in.Description,
		Type:               in.Type,
		Tags:               nonNilStrings(in.Tags),
		AllowedComposition: nonNilStrings(in.AllowedComposition),
		Fabricant:          in.Fabricant,
		Fournisseur:        in.Fournisseur,
		Version:            in.Version,
		IsLastVersion:      in.IsLastVersion,
		CreatedAt:          now,
		UpdatedAt:          now,
		Rules:              make([]models.ObjectTemplateRule, 0, len(in.Rules)),
		Attachments:        make([]models.Attachment, 0, len(in.Attachments)),
	}

	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO object_templates (id, name, description, type, tags, allowed_composition, fabricant, fournisseur,
	version, is_last_version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			o.ID, o.Name, o.Description, o.Type, pq.Array(o.Tags), pq.Array(o.AllowedComposition),
			o.Fabricant, o.Fournisseur, o.Version, o.IsLastVersion, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return crud.ConvertDBError(err)
		}

		for _, r := range in.Rules {
			rule, err := s.insertRule(ctx, tx, o.ID, r)
			if err != nil {
				return err
			}
			o.Rules = append(o.Rules, *rule)
		}
		for _, a := range in.Attachments {
			att, err := s.insertAttachment(ctx, tx, o.ID, a)
			if err != nil {
				return err
			}
			o.Attachments = append(o.Attachments, *att)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create object template: %w", err)
	}
	return &o, nil
}

func (s *Store) insertRule(ctx context.Context, q transaction.Querier, templateID uuid.UUID, in models.ObjectTemplateRuleCreate) (*models.ObjectTemplateRule, error) {
	r := models.ObjectTemplateRule{
		ID: s.newID(), ObjectTemplateID: templateID, Name: in.Name, Value: in.Value,
		IsLink: in.IsLink, Link: in.Link, IsFile: in.IsFile,
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO object_template_rules ("+ruleColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		r.ID, r.ObjectTemplateID, r.Name, r.Value, r.IsLink, r.Link, r.IsFile)
	if err != nil {
		return nil, crud.ConvertDBError(err)
	}
	return &r, nil
}

func (s *Store) insertFileStorage(ctx context.Context, q transaction.Querier, in *models.FileStorageInput) (*models.FileStorage, error) {
	f := models.FileStorage{ID: s.newID(), Bucket: in.Bucket}
	if in.Provider != nil {
		f.Provider = *in.Provider
	}
	if in.Path != nil {
		f.Path = *in.Path
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO attachment_file_storages (id, provider, path, bucket) VALUES ($1, $2, $3, $4)",
		f.ID, f.Provider, f.Path, f.Bucket)
	if err != nil {
		return nil, crud.ConvertDBError(err)
	}
	return &f, nil
}

func (s *Store) insertAttachment(ctx context.Context, q transaction.Querier, templateID uuid.UUID, in models.AttachmentCreate) (*models.Attachment, error) {
	a := models.Attachment{
		ID:               s.newID(),
		ObjectTemplateID: templateID,
		FileName:         in.FileName,
		FileType:         in.FileType,
		SizeBytes:        in.SizeBytes,
		FileHash:         in.FileHash,
		UploadedAt:       s.now(),
		ReferenceCount:   in.ReferenceCount,
		MetaData:         in.MetaData,
	}
	if a.MetaData == nil {
		a.MetaData = models.JSONObject{}
	}

	var storageID *uuid.UUID
	if in.FileStorage != nil {
		f, err := s.insertFileStorage(ctx, q, in.FileStorage)
		if err != nil {
			return nil, err
		}
		a.FileStorage = f
		storageID = &f.ID
	}

	_, err := q.ExecContext(ctx, `
INSERT INTO attachments (id, object_template_id, file_storage_id, file_name, file_type, size_bytes, file_hash,
	uploaded_at, reference_count, meta_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.ObjectTemplateID, storageID, a.FileName, a.FileType, a.SizeBytes, a.FileHash,
		a.UploadedAt, a.ReferenceCount, a.MetaData)
	if err != nil {
		return nil, crud.ConvertDBError(err)
	}
	return &a, nil
}

// ListObjectTemplates returns active templates with their rules and
// non-deleted attachments.
func (s *Store) ListObjectTemplates(ctx context.Context) ([]models.ObjectTemplate, error) {
	templates, err := queryList(ctx, s.db, scanObjectTemplate,
		"SELECT "+objectTemplateColumns+" FROM object_templates WHERE is_deleted = false ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list object templates: %w", err)
	}
	if err := s.loadObjectTemplateChildren(ctx, templates); err != nil {
		return nil, fmt.Errorf("list object templates: %w", err)
	}
	return templates, nil
}

func (s *Store) GetObjectTemplate(ctx context.Context, id uuid.UUID) (*models.ObjectTemplate, error) {
	o, err := scanObjectTemplate(s.db.QueryRowContext(ctx,
		"SELECT "+objectTemplateColumns+" FROM object_templates WHERE id = $1 AND is_deleted = false", id))
	if err != nil {
		return nil, fmt.Errorf("get object template %s: %w", id, crud.ConvertDBError(err))
	}
	templates := []models.ObjectTemplate{o}
	if err := s.loadObjectTemplateChildren(ctx, templates); err != nil {
		return nil, fmt.Errorf("get object template %s: %w", id, err)
	}
	return &templates[0], nil
}

func (s *Store) loadObjectTemplateChildren(ctx context.Context, templates []models.ObjectTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(templates))
	index := make(map[uuid.UUID]int, len(templates))
	for i, o := range templates {
		ids[i] = o.ID
		index[o.ID] = i
	}
	arg := pq.Array(idStrings(ids))

	rules, err := queryList(ctx, s.db, scanRule,
		"SELECT "+ruleColumns+" FROM object_template_rules WHERE object_template_id = ANY($1) ORDER BY name", arg)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	for _, r := range rules {
		i := index[r.ObjectTemplateID]
		templates[i].Rules = append(templates[i].Rules, r)
	}

	attachments, err := queryList(ctx, s.db, scanAttachment,
		"SELECT "+attachmentColumns+" FROM "+attachmentFrom+
			" WHERE a.object_template_id = ANY($1) AND a.is_deleted = false ORDER BY a.uploaded_at", arg)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	for _, a := range attachments {
		i := index[a.ObjectTemplateID]
		templates[i].Attachments = append(templates[i].Attachments, a)
	}
	return nil
}

// UpdateObjectTemplate writes the fields present in in and refreshes
// updatedAt.
func (s *Store) UpdateObjectTemplate(ctx context.Context, id uuid.UUID, in models.ObjectTemplateUpdate) (*models.ObjectTemplate, error) {
	var set crud.SetClause
	crud.SetIf(&set, "name", in.Name)
	crud.SetIf(&set, "description", in.Description)
	crud.SetIf(&set, "type", in.Type)
	if in.Tags != nil {
		set.Set("tags", pq.Array(nonNilStrings(*in.Tags)))
	}
	if in.AllowedComposition != nil {
		set.Set("allowed_composition", pq.Array(nonNilStrings(*in.AllowedComposition)))
	}
	crud.SetIf(&set, "fabricant", in.Fabricant)
	crud.SetIf(&set, "fournisseur", in.Fournisseur)
	crud.SetIf(&set, "version", in.Version)
	crud.SetIf(&set, "is_last_version", in.IsLastVersion)
	set.Set("updated_at", s.now())

	query, args := set.Build("object_templates", "id", id)
	res, err := s.db.ExecContext(ctx, query+" AND is_deleted = false", args...)
	if err == nil {
		err = expectAffected(res)
	}
	if err != nil {
		return nil, fmt.Errorf("update object template %s: %w", id, crud.ConvertDBError(err))
	}
	return s.GetObjectTemplate(ctx, id)
}

// DeleteObjectTemplate soft-deletes a template. Object templates carry no
// deleted_by column.
func (s *Store) DeleteObjectTemplate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE object_templates SET is_deleted = true, deleted_at = $1 WHERE id = $2 AND is_deleted = false",
		s.now(), id)
	if err == nil {
		err = expectAffected(res)
	}
	if err != nil {
		return fmt.Errorf("delete object template %s: %w", id, crud.ConvertDBError(err))
	}
	return nil
}

func (s *Store) ListRules(ctx context.Context, templateID uuid.UUID) ([]models.ObjectTemplateRule, error) {
	if err := ensureActive(ctx, s.db, "object_templates", templateID); err != nil {
		return nil, fmt.Errorf("list rules of %s: %w", templateID, err)
	}
	rules, err := queryList(ctx, s.db, scanRule,
		"SELECT "+ruleColumns+" FROM object_template_rules WHERE object_template_id = $1 ORDER BY name", templateID)
	if err != nil {
		return nil, fmt.Errorf("list rules of %s: %w", templateID, err)
	}
	return rules, nil
}

func (s *Store) CreateRule(ctx context.Context, templateID uuid.UUID, in models.ObjectTemplateRuleCreate) (*models.ObjectTemplateRule, error) {
	if err := ensureActive(ctx, s.db, "object_templates", templateID); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	r, err := s.insertRule(ctx, s.db, templateID, in)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	return r, nil
}

func (s *Store) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := hardDelete(ctx, s.db, "object_template_rules", objectTemplateParent, id); err != nil {
		return fmt.Errorf("delete rule %s: %w", id, err)
	}
	return nil
}

// ListAttachments returns the attachments of a template that are not
// soft-deleted.
func (s *Store) ListAttachments(ctx context.Context, templateID uuid.UUID) ([]models.Attachment, error) {
	if err := ensureActive(ctx, s.db, "object_templates", templateID); err != nil {
		return nil, fmt.Errorf("list attachments of %s: %w", templateID, err)
	}
	attachments, err := queryList(ctx, s.db, scanAttachment,
		"SELECT "+attachmentColumns+" FROM "+attachmentFrom+
			" WHERE a.object_template_id = $1 AND a.is_deleted = false ORDER BY a.uploaded_at", templateID)
	if err != nil {
		return nil, fmt.Errorf("list attachments of %s: %w", templateID, err)
	}
	return attachments, nil
}

func (s *Store) CreateAttachment(ctx context.Context, templateID uuid.UUID, in models.AttachmentCreate) (*models.Attachment, error) {
	var a *models.Attachment
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureActive(ctx, tx, "object_templates", templateID); err != nil {
			return err
		}
		var err error
		a, err = s.insertAttachment(ctx, tx, templateID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return a, nil
}

// UpdateAttachment writes the fields present in in. A file_storage object
// updates the attachment's storage row, or creates one when it has none.
func (s *Store) UpdateAttachment(ctx context.Context, templateID, id uuid.UUID, in models.AttachmentUpdate) (*models.Attachment, error) {
	var a models.Attachment
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureActive(ctx, tx, "object_templates", templateID); err != nil {
			return err
		}

		var storageID *uuid.UUID
		err := tx.QueryRowContext(ctx, `
SELECT file_storage_id FROM attachments
WHERE id = $1 AND object_template_id = $2 AND is_deleted = false
FOR UPDATE`, id, templateID).Scan(&storageID)
		if err != nil {
			return crud.ConvertDBError(err)
		}

		var set crud.SetClause
		crud.SetIf(&set, "file_name", in.FileName)
		crud.SetIf(&set, "file_type", in.FileType)
		crud.SetIf(&set, "size_bytes", in.SizeBytes)
		crud.SetIf(&set, "file_hash", in.FileHash)
		crud.SetIf(&set, "reference_count", in.ReferenceCount)
		crud.SetIf(&set, "meta_data", in.MetaData)

		if in.FileStorage != nil {
			if storageID == nil {
				if err := models.ValidateNewFileStorage(in.FileStorage); err != nil {
					return err
				}
				f, err := s.insertFileStorage(ctx, tx, in.FileStorage)
				if err != nil {
					return err
				}
				set.Set("file_storage_id", f.ID)
			} else if err := updateFileStorage(ctx, tx, *storageID, in.FileStorage); err != nil {
				return err
			}
		}

		if set.Len() > 0 {
			query, args := set.Build("attachments", "id", id)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return crud.ConvertDBError(err)
			}
		}

		a, err = scanAttachment(tx.QueryRowContext(ctx,
			"SELECT "+attachmentColumns+" FROM "+attachmentFrom+" WHERE a.id = $1", id))
		return crud.ConvertDBError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("update attachment %s: %w", id, err)
	}
	return &a, nil
}

func updateFileStorage(ctx context.Context, q transaction.Querier, id uuid.UUID, in *models.FileStorageInput) error {
	var set crud.SetClause
	crud.SetIf(&set, "provider", in.Provider)
	crud.SetIf(&set, "path", in.Path)
	crud.SetIf(&set, "bucket", in.Bucket)
	if set.Len() == 0 {
		return nil
	}
	query, args := set.Build("attachment_file_storages", "id", id)
	_, err := q.ExecContext(ctx, query, args...)
	return crud.ConvertDBError(err)
}

// DeleteAttachment soft-deletes an attachment of templateID.
func (s *Store) DeleteAttachment(ctx context.Context, templateID, id uuid.UUID) error {
	if err := ensureActive(ctx, s.db, "object_templates", templateID); err != nil {
		return fmt.Errorf("delete attachment %s: %w", id, err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE attachments SET is_deleted = true WHERE id = $1 AND object_template_id = $2 AND is_deleted = false",
		id, templateID)
	if err == nil {
		err = expectAffected(res)
	}
	if err != nil {
		return fmt.Errorf("delete attachment %s: %w", id, crud.ConvertDBError(err))
	}
	return nil
}
