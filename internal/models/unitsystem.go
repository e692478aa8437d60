package models

import (
	"time"

	"github.com/google/uuid"
)

// UnitKind tells which unit definition a physical quantity is expressed in.
type UnitKind string

const (
	UnitKindLinear     UnitKind = "linear"
	UnitKindFunctional UnitKind = "functional"
)

// UnitSystem groups the physical quantities used by a lab.
type UnitSystem struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	CreatedAt          time.Time          `json:"createdAt"`
	CreatedBy          *uuid.UUID         `json:"createdBy"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	UpdatedBy          *uuid.UUID         `json:"updatedBy"`
	PhysicalQuantities []PhysicalQuantity `json:"physical_quantities"`
	SoftDelete
}

// PhysicalQuantity is a measured dimension (length, temperature, ...) of a
// unit system. Value is stored verbatim and never evaluated.
type PhysicalQuantity struct {
	ID              uuid.UUID        `json:"id"`
	UnitSystemID    uuid.UUID        `json:"unit_system_id"`
	Quantity        string           `json:"quantity"`
	Value           string           `json:"value"`
	Type            *UnitKind        `json:"type"`
	LinearUnits     []LinearUnit     `json:"linear_units"`
	FunctionalUnits []FunctionalUnit `json:"functional_units"`
}

// LinearUnit converts to its base unit by a constant factor.
type LinearUnit struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Base         string     `json:"base"`
	FactorToBase float64    `json:"factorToBase"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    *uuid.UUID `json:"createdBy"`
	SoftDelete
}

// FunctionalUnit converts to and from its base unit through formulas that
// are kept as opaque strings.
type FunctionalUnit struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Base      string     `json:"base"`
	ToBase    string     `json:"toBase"`
	FromBase  string     `json:"fromBase"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy *uuid.UUID `json:"createdBy"`
	SoftDelete
}

type UnitSystemCreate struct {
	Name               string                   `json:"name"`
	CreatedBy          *uuid.UUID               `json:"createdBy,omitempty"`
	PhysicalQuantities []PhysicalQuantityCreate `json:"physical_quantities"`
}

type UnitSystemUpdate struct {
	Name      *string    `json:"name,omitempty"`
	UpdatedBy *uuid.UUID `json:"updatedBy,omitempty"`
}

type PhysicalQuantityCreate struct {
	Quantity string `json:"quantity"`
	Value    string `json:"value"`
}

type LinearUnitCreate struct {
	Name         string     `json:"name"`
	Base         string     `json:"base"`
	FactorToBase float64    `json:"factorToBase"`
	CreatedBy    *uuid.UUID `json:"createdBy,omitempty"`
}

type FunctionalUnitCreate struct {
	Name      string     `json:"name"`
	Base      string     `json:"base"`
	ToBase    string     `json:"toBase"`
	FromBase  string     `json:"fromBase"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
}
