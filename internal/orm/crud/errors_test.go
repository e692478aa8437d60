package crud

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBErrorWithPgErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Detail: "Key (name)=(metric) already exists."}
	err := ConvertDBError(pgErr)
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.Contains(t, err.Error(), "Key (name)")
	assert.True(t, IsConflict(err))

	pgErr = &pgconn.PgError{Code: "23503", Detail: "Key (project_id)=(123) is not present in table projects."}
	err = ConvertDBError(pgErr)
	assert.ErrorIs(t, err, ErrForeignKeyViolation)
	assert.True(t, IsConflict(err))

	pgErr = &pgconn.PgError{Code: "23514", Detail: "Check constraint failed"}
	err = ConvertDBError(pgErr)
	assert.ErrorIs(t, err, ErrCheckViolation)
	assert.True(t, IsValidationFailed(err))

	pgErr = &pgconn.PgError{Code: "23502", ColumnName: "name"}
	err = ConvertDBError(pgErr)
	assert.ErrorIs(t, err, ErrNotNullViolation)
	assert.Contains(t, err.Error(), "name")

	pgErr = &pgconn.PgError{Code: "99999", Message: "Unknown error"}
	err = ConvertDBError(pgErr)
	assert.Equal(t, pgErr, err)

	genericErr := errors.New("generic error")
	assert.Equal(t, genericErr, ConvertDBError(genericErr))
	assert.Nil(t, ConvertDBError(nil))
}

func TestConvertDBErrorNoRows(t *testing.T) {
	err := ConvertDBError(fmt.Errorf("scan: %w", sql.ErrNoRows))
	assert.True(t, IsNotFound(err))
}

func TestValidationError(t *testing.T) {
	ve := &ValidationError{}
	assert.NoError(t, ve.Err())

	ve.Required("name", "  ")
	ve.Required("client", "acme")
	ve.Add("version", "must be positive")

	err := ve.Err()
	assert.Error(t, err)
	assert.True(t, IsValidationFailed(err))
	assert.Equal(t, map[string][]string{
		"name":    {"is required"},
		"version": {"must be positive"},
	}, ve.Fields())
	assert.Equal(t, "validation failed: name: is required; version: must be positive", err.Error())
}

func TestSetClause(t *testing.T) {
	name := "renamed"
	var version *int

	var set SetClause
	SetIf(&set, "name", &name)
	SetIf(&set, "version", version)
	set.Set("updated_at", "now")

	query, args := set.Build("projects", "id", "abc")
	assert.Equal(t, "UPDATE projects SET name = $1, updated_at = $2 WHERE id = $3", query)
	assert.Equal(t, []interface{}{"renamed", "now", "abc"}, args)
	assert.Equal(t, 2, set.Len())
}
