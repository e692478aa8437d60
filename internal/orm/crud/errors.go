package crud

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common CRUD error types
var (
	// ErrNotFound is returned when a record is not found or is soft-deleted
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would break a domain rule,
	// e.g. a second general info for a template
	ErrConflict = errors.New("conflicting record state")

	// ErrUniqueViolation is returned when a unique constraint is violated
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrValidationFailed is returned when validation fails
	ErrValidationFailed = errors.New("validation failed")

	// ErrCheckViolation is returned when a check constraint is violated
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrNotNullViolation is returned when a NOT NULL constraint is violated
	ErrNotNullViolation = errors.New("not null constraint violation")
)

// ValidationError contains multiple validation errors for a record
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", ve.Errors[0].Field, ve.Errors[0].Message)
	}
	msgs := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is match ErrValidationFailed
func (ve *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Add records a field error
func (ve *ValidationError) Add(field, message string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message})
}

// Required records an error when value is blank
func (ve *ValidationError) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// Err returns nil when no field error was recorded
func (ve *ValidationError) Err() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

// Fields groups messages per field for rendering
func (ve *ValidationError) Fields() map[string][]string {
	fields := make(map[string][]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	return fields
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string
	Message string
}

// ConvertDBError converts database-specific errors to CRUD errors
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.Detail)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.Detail)
		case "23514": // check_violation
			return fmt.Errorf("%w: %s", ErrCheckViolation, pgErr.Detail)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: column %s", ErrNotNullViolation, pgErr.ColumnName)
		}
	}

	return err
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true for domain conflicts and unique or foreign key violations
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUniqueViolation) ||
		errors.Is(err, ErrForeignKeyViolation)
}

// IsValidationFailed returns true if the error is a validation error
func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrCheckViolation) ||
		errors.Is(err, ErrNotNullViolation)
}
