package models

import (
	"strconv"

	"github.com/labbench/testbench/internal/orm/crud"
)

func nonNegative(ve *crud.ValidationError, field string, v int64) {
	if v < 0 {
		ve.Add(field, "must not be negative")
	}
}

func requiredFlag(ve *crud.ValidationError, field string, v *bool) {
	if v == nil {
		ve.Add(field, "is required")
	}
}

func notBlankIfSet(ve *crud.ValidationError, field string, v *string) {
	if v != nil {
		ve.Required(field, *v)
	}
}

func (in *UnitSystemCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	for i := range in.PhysicalQuantities {
		ve.Required(indexed("physical_quantities", i, "quantity"), in.PhysicalQuantities[i].Quantity)
	}
	return ve.Err()
}

func (in *UnitSystemUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "name", in.Name)
	return ve.Err()
}

func (in *PhysicalQuantityCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("quantity", in.Quantity)
	return ve.Err()
}

func (in *LinearUnitCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("base", in.Base)
	if in.FactorToBase == 0 {
		ve.Add("factorToBase", "must not be zero")
	}
	return ve.Err()
}

func (in *FunctionalUnitCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("base", in.Base)
	ve.Required("toBase", in.ToBase)
	ve.Required("fromBase", in.FromBase)
	return ve.Err()
}

func (in *ProjectCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("client", in.Client)
	ve.Required("status", in.Status)
	ve.Required("type", in.Type)
	nonNegative(ve, "version", int64(in.Version))
	if !in.StartDate.IsZero() && !in.ExpectedDeliveryDate.IsZero() &&
		in.ExpectedDeliveryDate.Before(in.StartDate) {
		ve.Add("expectedDeliveryDate", "must not be before startDate")
	}
	return ve.Err()
}

func (in *ProjectUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "name", in.Name)
	notBlankIfSet(ve, "client", in.Client)
	notBlankIfSet(ve, "status", in.Status)
	notBlankIfSet(ve, "type", in.Type)
	if in.Version != nil {
		nonNegative(ve, "version", int64(*in.Version))
	}
	return ve.Err()
}

func (in *ProjectMetaDataCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("value", in.Value)
	return ve.Err()
}

func (in *ProjectRuleCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	requiredFlag(ve, "isLink", in.IsLink)
	requiredFlag(ve, "isFile", in.IsFile)
	return ve.Err()
}

func (in *ProjectObjectiveCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	requiredFlag(ve, "isOptional", in.IsOptional)
	if in.ValueMin != nil && in.ValueMax != nil && *in.ValueMin > *in.ValueMax {
		ve.Add("valueMin", "must not exceed valueMax")
	}
	return ve.Err()
}

func (in *ProjectDeliverableCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("content", in.Content)
	requiredFlag(ve, "isOptional", in.IsOptional)
	return ve.Err()
}

func (in *ProjectConstraintCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("value", in.Value)
	return ve.Err()
}

func (in *ProjectAttachmentCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	return ve.Err()
}

func (in *TestCreate) Validate() error {
	ve := &crud.ValidationError{}
	requiredFlag(ve, "isVLCompatible", in.IsVLCompatible)
	nonNegative(ve, "version", int64(in.Version))
	return ve.Err()
}

func (in *TestUpdate) Validate() error {
	ve := &crud.ValidationError{}
	if in.Version != nil {
		nonNegative(ve, "version", int64(*in.Version))
	}
	return ve.Err()
}

func (in *RealConditionCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("value", in.Value)
	ve.Required("physicalQuantity", in.PhysicalQuantity)
	requiredFlag(ve, "required", in.Required)
	return ve.Err()
}

func (in *ReadingCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("physicalQuantity", in.PhysicalQuantity)
	requiredFlag(ve, "isRequired", in.IsRequired)
	return ve.Err()
}

func (in *TestTemplateCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	nonNegative(ve, "version", int64(in.Version))
	return ve.Err()
}

func (in *TestTemplateUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "name", in.Name)
	if in.Version != nil {
		nonNegative(ve, "version", int64(*in.Version))
	}
	return ve.Err()
}

func (in *TestTemplateConditionCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("value", in.Value)
	ve.Required("physicalQuantity", in.PhysicalQuantity)
	requiredFlag(ve, "required", in.Required)
	return ve.Err()
}

func (in *TestTemplateConditionUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "name", in.Name)
	return ve.Err()
}

func (in *TestTemplateReadingCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("physicalQuantity", in.PhysicalQuantity)
	requiredFlag(ve, "isRequired", in.IsRequired)
	return ve.Err()
}

func (in *TestTemplateReadingUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "name", in.Name)
	return ve.Err()
}

func (in *ObjectTemplateCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	ve.Required("type", in.Type)
	nonNegative(ve, "version", int64(in.Version))
	for i := range in.Rules {
		ve.Required(indexed("rules", i, "name"), in.Rules[i].Name)
	}
	for i := range in.Attachments {
		validateAttachment(ve, indexed("attachments", i, ""), &in.Attachments[i])
	}
	return ve.Err()
}

func (in *ObjectTemplateUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "name", in.Name)
	notBlankIfSet(ve, "type", in.Type)
	if in.Version != nil {
		nonNegative(ve, "version", int64(*in.Version))
	}
	return ve.Err()
}

func (in *ObjectTemplateRuleCreate) Validate() error {
	ve := &crud.ValidationError{}
	ve.Required("name", in.Name)
	return ve.Err()
}

func (in *AttachmentCreate) Validate() error {
	ve := &crud.ValidationError{}
	validateAttachment(ve, "", in)
	return ve.Err()
}

func (in *AttachmentUpdate) Validate() error {
	ve := &crud.ValidationError{}
	notBlankIfSet(ve, "file_name", in.FileName)
	notBlankIfSet(ve, "file_type", in.FileType)
	if in.SizeBytes != nil {
		nonNegative(ve, "size_bytes", *in.SizeBytes)
	}
	if in.ReferenceCount != nil {
		nonNegative(ve, "reference_count", int64(*in.ReferenceCount))
	}
	if fs := in.FileStorage; fs != nil {
		notBlankIfSet(ve, "file_storage.provider", fs.Provider)
		notBlankIfSet(ve, "file_storage.path", fs.Path)
	}
	return ve.Err()
}

func validateAttachment(ve *crud.ValidationError, prefix string, in *AttachmentCreate) {
	ve.Required(prefix+"file_name", in.FileName)
	ve.Required(prefix+"file_type", in.FileType)
	nonNegative(ve, prefix+"size_bytes", in.SizeBytes)
	nonNegative(ve, prefix+"reference_count", int64(in.ReferenceCount))
	validateFileStorage(ve, prefix, in.FileStorage)
}

// ValidateNewFileStorage requires provider and path for a storage
// location that is about to be created.
func ValidateNewFileStorage(fs *FileStorageInput) error {
	ve := &crud.ValidationError{}
	validateFileStorage(ve, "", fs)
	return ve.Err()
}

func validateFileStorage(ve *crud.ValidationError, prefix string, fs *FileStorageInput) {
	if fs == nil {
		return
	}
	if fs.Provider == nil {
		ve.Add(prefix+"file_storage.provider", "is required")
	} else {
		ve.Required(prefix+"file_storage.provider", *fs.Provider)
	}
	if fs.Path == nil {
		ve.Add(prefix+"file_storage.path", "is required")
	} else {
		ve.Required(prefix+"file_storage.path", *fs.Path)
	}
}

// indexed names a field of a nested list item, e.g. rules[2].name. An
// empty field yields the "rules[2]." prefix.
func indexed(list string, i int, field string) string {
	return list + "[" + strconv.Itoa(i) + "]." + field
}
