package models

import (
	"time"

	"github.com/google/uuid"
)

// ObjectTemplate describes a kind of object under test (a product, a part).
type ObjectTemplate struct {
	ID                 uuid.UUID            `json:"id"`
	Name               string               `json:"name"`
	Description        *string              `json:"description"`
	Type               string               `json:"type"`
	Tags               []string             `json:"tags"`
	AllowedComposition []string             `json:"allowedComposition"`
	Fabricant          *string              `json:"fabricant"`
	Fournisseur        *string              `json:"fournisseur"`
	Version            int                  `json:"version"`
	IsLastVersion      bool                 `json:"isLastVersion"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
	IsDeleted          bool                 `json:"is_deleted"`
	DeletedAt          *time.Time           `json:"deleted_at"`
	Rules              []ObjectTemplateRule `json:"rules"`
	Attachments        []Attachment         `json:"attachments"`
}

type ObjectTemplateCreate struct {
	Name               string                     `json:"name"`
	Description        *string                    `json:"description,omitempty"`
	Type               string                     `json:"type"`
	Tags               []string                   `json:"tags,omitempty"`
	AllowedComposition []string                   `json:"allowedComposition,omitempty"`
	Fabricant          *string                    `json:"fabricant,omitempty"`
	Fournisseur        *string                    `json:"fournisseur,omitempty"`
	Version            int                        `json:"version"`
	IsLastVersion      bool                       `json:"isLastVersion"`
	Rules              []ObjectTemplateRuleCreate `json:"rules,omitempty"`
	Attachments        []AttachmentCreate         `json:"attachments,omitempty"`
}

type ObjectTemplateUpdate struct {
	Name               *string   `json:"name,omitempty"`
	Description        *string   `json:"description,omitempty"`
	Type               *string   `json:"type,omitempty"`
	Tags               *[]string `json:"tags,omitempty"`
	AllowedComposition *[]string `json:"allowedComposition,omitempty"`
	Fabricant          *string   `json:"fabricant,omitempty"`
	Fournisseur        *string   `json:"fournisseur,omitempty"`
	Version            *int      `json:"version,omitempty"`
	IsLastVersion      *bool     `json:"isLastVersion,omitempty"`
}

type ObjectTemplateRule struct {
	ID               uuid.UUID `json:"id"`
	ObjectTemplateID uuid.UUID `json:"object_template_id"`
	Name             string    `json:"name"`
	Value            *string   `json:"value"`
	IsLink           bool      `json:"isLink"`
	Link             *string   `json:"link"`
	IsFile           bool      `json:"isFile"`
}

type ObjectTemplateRuleCreate struct {
	Name   string  `json:"name"`
	Value  *string `json:"value,omitempty"`
	IsLink bool    `json:"isLink"`
	Link   *string `json:"link,omitempty"`
	IsFile bool    `json:"isFile"`
}

// FileStorage locates the bytes of an attachment in an object store.
type FileStorage struct {
	ID       uuid.UUID `json:"id"`
	Provider string    `json:"provider"`
	Path     string    `json:"path"`
	Bucket   *string   `json:"bucket"`
}

type FileStorageInput struct {
	Provider *string `json:"provider,omitempty"`
	Path     *string `json:"path,omitempty"`
	Bucket   *string `json:"bucket,omitempty"`
}

// Attachment is a file attached to an object template.
type Attachment struct {
	ID               uuid.UUID    `json:"id"`
	ObjectTemplateID uuid.UUID    `json:"object_template_id"`
	FileName         string       `json:"file_name"`
	FileType         string       `json:"file_type"`
	FileStorage      *FileStorage `json:"file_storage"`
	SizeBytes        int64        `json:"size_bytes"`
	FileHash         *string      `json:"file_hash"`
	UploadedAt       time.Time    `json:"uploaded_at"`
	ReferenceCount   int          `json:"reference_count"`
	MetaData         JSONObject   `json:"meta_data"`
	IsDeleted        bool         `json:"is_deleted"`
}

type AttachmentCreate struct {
	FileName       string            `json:"file_name"`
	FileType       string            `json:"file_type"`
	FileStorage    *FileStorageInput `json:"file_storage,omitempty"`
	SizeBytes      int64             `json:"size_bytes"`
	FileHash       *string           `json:"file_hash,omitempty"`
	ReferenceCount int               `json:"reference_count"`
	MetaData       JSONObject        `json:"meta_data,omitempty"`
}

type AttachmentUpdate struct {
	FileName       *string           `json:"file_name,omitempty"`
	FileType       *string           `json:"file_type,omitempty"`
	FileStorage    *FileStorageInput `json:"file_storage,omitempty"`
	SizeBytes      *int64            `json:"size_bytes,omitempty"`
	FileHash       *string           `json:"file_hash,omitempty"`
	ReferenceCount *int              `json:"reference_count,omitempty"`
	MetaData       *JSONObject       `json:"meta_data,omitempty"`
}
