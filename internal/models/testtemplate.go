package models

import (
	"time"

	"github.com/google/uuid"
)

// TestTemplate describes how a kind of test is run.
type TestTemplate struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Tags           []string   `json:"tags"`
	IsVLCompatible bool       `json:"isVLCompatible"`
	Version        int        `json:"version"`
	IsLastVersion  bool       `json:"isLastVersion"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	UpdatedBy      *uuid.UUID `json:"updatedBy"`
	SoftDelete
}

type TestTemplateCreate struct {
	Name           string   `json:"name"`
	Tags           []string `json:"tags,omitempty"`
	IsVLCompatible bool     `json:"isVLCompatible"`
	Version        int      `json:"version"`
	IsLastVersion  bool     `json:"isLastVersion"`
}

type TestTemplateUpdate struct {
	Name           *string    `json:"name,omitempty"`
	Tags           *[]string  `json:"tags,omitempty"`
	IsVLCompatible *bool      `json:"isVLCompatible,omitempty"`
	Version        *int       `json:"version,omitempty"`
	IsLastVersion  *bool      `json:"isLastVersion,omitempty"`
	UpdatedBy      *uuid.UUID `json:"updatedBy,omitempty"`
}

// TestTemplateGeneralInfo holds the descriptive text of a template. A
// template has at most one.
type TestTemplateGeneralInfo struct {
	ID             uuid.UUID `json:"id"`
	TestTemplateID uuid.UUID `json:"test_template_id"`
	Description    *string   `json:"description"`
	Objective      *string   `json:"objective"`
	Standard       *string   `json:"standard"`
	Procedure      *string   `json:"procedure"`
}

// GeneralInfoInput is used for both create and partial update.
type GeneralInfoInput struct {
	Description *string `json:"description,omitempty"`
	Objective   *string `json:"objective,omitempty"`
	Standard    *string `json:"standard,omitempty"`
	Procedure   *string `json:"procedure,omitempty"`
}

type TestTemplateCondition struct {
	ID               uuid.UUID `json:"id"`
	TestTemplateID   uuid.UUID `json:"test_template_id"`
	Name             string    `json:"name"`
	Value            string    `json:"value"`
	PhysicalQuantity string    `json:"physicalQuantity"`
	Required         bool      `json:"required"`
}

type TestTemplateConditionCreate struct {
	Name             string `json:"name"`
	Value            string `json:"value"`
	PhysicalQuantity string `json:"physicalQuantity"`
	Required         *bool  `json:"required"`
}

type TestTemplateConditionUpdate struct {
	Name             *string `json:"name,omitempty"`
	Value            *string `json:"value,omitempty"`
	PhysicalQuantity *string `json:"physicalQuantity,omitempty"`
	Required         *bool   `json:"required,omitempty"`
}

type TestTemplateReading struct {
	ID               uuid.UUID `json:"id"`
	TestTemplateID   uuid.UUID `json:"test_template_id"`
	Name             string    `json:"name"`
	Value            *string   `json:"value"`
	PhysicalQuantity string    `json:"physicalQuantity"`
	IsRequired       bool      `json:"isRequired"`
}

type TestTemplateReadingCreate struct {
	Name             string  `json:"name"`
	Value            *string `json:"value,omitempty"`
	PhysicalQuantity string  `json:"physicalQuantity"`
	IsRequired       *bool   `json:"isRequired"`
}

type TestTemplateReadingUpdate struct {
	Name             *string `json:"name,omitempty"`
	Value            *string `json:"value,omitempty"`
	PhysicalQuantity *string `json:"physicalQuantity,omitempty"`
	IsRequired       *bool   `json:"isRequired,omitempty"`
}
