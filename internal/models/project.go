package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a client engagement that tests are run for.
type Project struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Client               string    `json:"client"`
	Status               string    `json:"status"`
	Type                 string    `json:"type"`
	Tags                 []string  `json:"tags"`
	StartDate            time.Time `json:"startDate"`
	ExpectedDeliveryDate time.Time `json:"expectedDeliveryDate"`
	Version              int       `json:"version"`
	IsLastVersion        bool      `json:"isLastVersion"`
	CreatedAt            time.Time `json:"createdAt"`
	CreatedBy            uuid.UUID `json:"createdBy"`
	UpdatedAt            time.Time `json:"updatedAt"`
	UpdatedBy            uuid.UUID `json:"updatedBy"`
	SoftDelete
}

type ProjectCreate struct {
	Name                 string     `json:"name"`
	Client               string     `json:"client"`
	Status               string     `json:"status"`
	Type                 string     `json:"type"`
	Tags                 []string   `json:"tags,omitempty"`
	StartDate            time.Time  `json:"startDate"`
	ExpectedDeliveryDate time.Time  `json:"expectedDeliveryDate"`
	Version              int        `json:"version"`
	IsLastVersion        bool       `json:"isLastVersion"`
	CreatedBy            *uuid.UUID `json:"createdBy,omitempty"`
	UpdatedBy            *uuid.UUID `json:"updatedBy,omitempty"`
}

type ProjectUpdate struct {
	Name                 *string    `json:"name,omitempty"`
	Tags                 *[]string  `json:"tags,omitempty"`
	Client               *string    `json:"client,omitempty"`
	Status               *string    `json:"status,omitempty"`
	Type                 *string    `json:"type,omitempty"`
	StartDate            *time.Time `json:"startDate,omitempty"`
	ExpectedDeliveryDate *time.Time `json:"expectedDeliveryDate,omitempty"`
	Version              *int       `json:"version,omitempty"`
	IsLastVersion        *bool      `json:"isLastVersion,omitempty"`
	UpdatedBy            *uuid.UUID `json:"updatedBy,omitempty"`
}

type ProjectMetaData struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
}

type ProjectMetaDataCreate struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProjectRule struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	IsLink    bool      `json:"isLink"`
	IsFile    bool      `json:"isFile"`
	Link      *string   `json:"link"`
}

type ProjectRuleCreate struct {
	Name   string  `json:"name"`
	IsLink *bool   `json:"isLink"`
	IsFile *bool   `json:"isFile"`
	Link   *string `json:"link,omitempty"`
}

type ProjectObjective struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	Name             string    `json:"name"`
	ValueMin         *float64  `json:"valueMin"`
	ValueMax         *float64  `json:"valueMax"`
	PhysicalQuantity *string   `json:"physicalQuantity"`
	Text             *string   `json:"text"`
	IsOptional       bool      `json:"isOptional"`
}

type ProjectObjectiveCreate struct {
	Name             string   `json:"name"`
	ValueMin         *float64 `json:"valueMin,omitempty"`
	ValueMax         *float64 `json:"valueMax,omitempty"`
	PhysicalQuantity *string  `json:"physicalQuantity,omitempty"`
	Text             *string  `json:"text,omitempty"`
	IsOptional       *bool    `json:"isOptional"`
}

type ProjectDeliverable struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	IsOptional bool      `json:"isOptional"`
}

type ProjectDeliverableCreate struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsOptional *bool  `json:"isOptional"`
}

type ProjectConstraint struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
}

type ProjectConstraintCreate struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProjectAttachment references a stored file by id.
type ProjectAttachment struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	Name         string     `json:"name"`
	AttachmentID *uuid.UUID `json:"attachmentId"`
}

type ProjectAttachmentCreate struct {
	Name         string     `json:"name"`
	AttachmentID *uuid.UUID `json:"attachmentId,omitempty"`
}
