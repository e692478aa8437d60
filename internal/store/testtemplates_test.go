package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/orm/crud"
)

var conditionRowColumns = []string{"id", "test_template_id", "name", "value", "physical_quantity", "required"}

func TestCreateTestTemplate(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO test_templates`).
		WithArgs(idN(1), "Tensile", `{"iso"}`, false, 1, true, testNow, testNow, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tt, err := s.CreateTestTemplate(context.Background(), models.TestTemplateCreate{
		Name: "Tensile", Tags: []string{"iso"}, Version: 1, IsLastVersion: true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tensile", tt.Name)
	assert.Nil(t, tt.UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGeneralInfoTwiceConflicts(t *testing.T) {
	s, mock := newTestStore(t)
	templateID := idN(8)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WithArgs(templateID).
		WillReturnRows(activeRow())
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := s.CreateGeneralInfo(context.Background(), templateID, models.GeneralInfoInput{})
	assert.ErrorIs(t, err, crud.ErrConflict)
	assert.True(t, crud.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGeneralInfo(t *testing.T) {
	s, mock := newTestStore(t)
	templateID := idN(8)
	desc := "pull until break"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WillReturnRows(activeRow())
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO test_template_general_info`).
		WithArgs(idN(1), templateID, desc, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	g, err := s.CreateGeneralInfo(context.Background(), templateID, models.GeneralInfoInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, *g.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateGeneralInfoMissing(t *testing.T) {
	s, mock := newTestStore(t)
	templateID := idN(8)
	std := "ISO 6892"

	mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WillReturnRows(activeRow())
	mock.ExpectQuery(`UPDATE test_template_general_info SET standard = \$1 WHERE test_template_id = \$2 RETURNING`).
		WithArgs(std, templateID).
		WillReturnError(sql.ErrNoRows)

	_, err := s.UpdateGeneralInfo(context.Background(), templateID, models.GeneralInfoInput{Standard: &std})
	assert.ErrorIs(t, err, crud.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTemplateConditionScopedToTemplate(t *testing.T) {
	s, mock := newTestStore(t)
	templateID, conditionID := idN(8), idN(9)
	value := "25"

	mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WillReturnRows(activeRow())
	mock.ExpectQuery(`UPDATE test_template_conditions SET value = \$1 WHERE id = \$2 AND test_template_id = \$3 RETURNING`).
		WithArgs(value, conditionID, templateID).
		WillReturnRows(sqlmock.NewRows(conditionRowColumns).
			AddRow(conditionID.String(), templateID.String(), "temperature", value, "temperature", true))

	c, err := s.UpdateTemplateCondition(context.Background(), templateID, conditionID,
		models.TestTemplateConditionUpdate{Value: &value})
	require.NoError(t, err)
	assert.Equal(t, "25", c.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTemplateConditionOfOtherTemplate(t *testing.T) {
	s, mock := newTestStore(t)
	value := "25"

	mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WillReturnRows(activeRow())
	mock.ExpectQuery(`UPDATE test_template_conditions`).
		WillReturnRows(sqlmock.NewRows(conditionRowColumns))

	_, err := s.UpdateTemplateCondition(context.Background(), idN(8), idN(9),
		models.TestTemplateConditionUpdate{Value: &value})
	assert.ErrorIs(t, err, crud.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTestTemplate(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE test_templates SET is_deleted = true`).
		WithArgs(testNow, nil, idN(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteTestTemplate(context.Background(), idN(8), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
