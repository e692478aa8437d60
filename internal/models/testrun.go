package models

import (
	"time"

	"github.com/google/uuid"
)

// Test is one executed (or planned) test run.
type Test struct {
	ID             uuid.UUID `json:"id"`
	IsVLCompatible bool      `json:"isVLCompatible"`
	Version        int       `json:"version"`
	IsLastVersion  bool      `json:"isLastVersion"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      uuid.UUID `json:"createdBy"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UpdatedBy      uuid.UUID `json:"updatedBy"`
	SoftDelete
}

type TestCreate struct {
	IsVLCompatible *bool      `json:"isVLCompatible"`
	Version        int        `json:"version"`
	IsLastVersion  bool       `json:"isLastVersion"`
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
	UpdatedBy      *uuid.UUID `json:"updatedBy,omitempty"`
}

type TestUpdate struct {
	IsVLCompatible *bool `json:"isVLCompatible,omitempty"`
	Version        *int  `json:"version,omitempty"`
	IsLastVersion  *bool `json:"isLastVersion,omitempty"`
}

// RealCondition is an environmental condition observed during a test.
type RealCondition struct {
	ID               uuid.UUID `json:"id"`
	TestID           uuid.UUID `json:"test_id"`
	Name             string    `json:"name"`
	Value            string    `json:"value"`
	PhysicalQuantity string    `json:"physicalQuantity"`
	Required         bool      `json:"required"`
}

type RealConditionCreate struct {
	Name             string `json:"name"`
	Value            string `json:"value"`
	PhysicalQuantity string `json:"physicalQuantity"`
	Required         *bool  `json:"required"`
}

// Reading is a measured value of a test. Value may hold a formula.
// VL readings share the same shape and are stored in their own table.
type Reading struct {
	ID               uuid.UUID `json:"id"`
	TestID           uuid.UUID `json:"test_id"`
	Name             string    `json:"name"`
	Value            *string   `json:"value"`
	PhysicalQuantity string    `json:"physicalQuantity"`
	IsRequired       bool      `json:"isRequired"`
}

type ReadingCreate struct {
	Name             string  `json:"name"`
	Value            *string `json:"value,omitempty"`
	PhysicalQuantity string  `json:"physicalQuantity"`
	IsRequired       *bool   `json:"isRequired"`
}
