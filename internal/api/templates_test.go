package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labbench/testbench/internal/events"
)

var conditionRowColumns = []string{"id", "test_template_id", "name", "value", "physical_quantity", "required"}

func TestCreateGeneralInfoTwiceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	templateID := idN(8)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	env.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	env.mock.ExpectRollback()

	w := env.do(t, http.MethodPost, "/api/v1/template_tests/"+templateID.String()+"/general_info",
		`{"description":"Tensile test"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestUpdateTemplateCondition(t *testing.T) {
	env := newTestEnv(t)
	templateID, conditionID := idN(8), idN(9)

	env.mock.ExpectQuery(`SELECT 1 FROM test_templates`).
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	env.mock.ExpectQuery(`UPDATE test_template_conditions SET value = \$1 WHERE id = \$2 AND test_template_id = \$3 RETURNING`).
		WithArgs("25", conditionID, templateID).
		WillReturnRows(sqlmock.NewRows(conditionRowColumns).
			AddRow(conditionID.String(), templateID.String(), "temperature", "25", "temperature", true))

	w := env.do(t, http.MethodPut,
		"/api/v1/template_tests/"+templateID.String()+"/conditions/"+conditionID.String(), `{"value":"25"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "25", decodeBody(t, w)["value"])
	assert.Equal(t, events.Updated, env.events.all()[0].Action)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteTemplateConditionIsNoContent(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectExec(`DELETE FROM test_template_conditions c USING test_templates p WHERE c.id = \$1 AND p.id = c.test_template_id AND p.is_deleted = false`).
		WithArgs(idN(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodDelete, "/api/v1/template_tests/conditions/"+idN(9).String(), "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteObjectTemplateIsNoContent(t *testing.T) {
	env := newTestEnv(t)
	id := idN(12)

	env.mock.ExpectExec(`UPDATE object_templates SET is_deleted = true`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodDelete, "/api/v1/template_objects/"+id.String(), "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []events.RecordEvent{
		{Kind: "object_template", Action: events.Deleted, ID: id, At: testNow},
	}, env.events.all())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateObjectTemplateValidatesNestedAttachments(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/template_objects",
		`{"name":"Beam","type":"steel","version":1,"isLastVersion":true,
		  "attachments":[{"file_name":"","file_type":"application/pdf","size_bytes":10,"reference_count":0}]}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "attachments[0].file_name")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateTemplateConditionRequiresEveryField(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/template_tests/"+idN(8).String()+"/conditions",
		`{"name":"temperature"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "validation_failed", body["error"])
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "value")
	assert.Contains(t, fields, "physicalQuantity")
	assert.Contains(t, fields, "required")
	assert.Empty(t, env.events.all())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateChildWithoutFlagsIsUnprocessable(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		body  string
		field string
	}{
		{"reading", "/api/v1/test/%s/reading", `{"name":"strain","physicalQuantity":"ratio"}`, "isRequired"},
		{"real condition", "/api/v1/test/%s/realcondition", `{"name":"humidity","value":"40","physicalQuantity":"percent"}`, "required"},
		{"deliverable", "/api/v1/projects/%s/deliverables", `{"name":"report","content":"pdf"}`, "isOptional"},
		{"objective", "/api/v1/projects/%s/objectives", `{"name":"stiffness"}`, "isOptional"},
		{"rule", "/api/v1/projects/%s/rules", `{"name":"ISO 9001","isFile":false}`, "isLink"},
		{"template reading", "/api/v1/template_tests/%s/readings", `{"name":"strain","physicalQuantity":"ratio"}`, "isRequired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(t, http.MethodPost, fmt.Sprintf(tt.path, idN(8)), tt.body, nil)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.Contains(t, decodeBody(t, w)["fields"], tt.field)
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestCreateTestWithoutVLFlagIsUnprocessable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/test", `{"version":1,"isLastVersion":true}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody(t, w)["fields"], "isVLCompatible")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestPatchAttachmentStorageWithoutLocationIsUnprocessable(t *testing.T) {
	env := newTestEnv(t)
	templateID, attachmentID := idN(20), idN(21)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT 1 FROM object_templates`).
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	env.mock.ExpectQuery(`SELECT file_storage_id FROM attachments`).
		WithArgs(attachmentID, templateID).
		WillReturnRows(sqlmock.NewRows([]string{"file_storage_id"}).AddRow(nil))
	env.mock.ExpectRollback()

	w := env.do(t, http.MethodPatch,
		"/api/v1/template_objects/"+templateID.String()+"/attachments/"+attachmentID.String(),
		`{"file_storage":{"bucket":"b"}}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "file_storage.provider")
	assert.Contains(t, fields, "file_storage.path")
	assert.Empty(t, env.events.all())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestPatchAttachmentBlankStoragePathIsUnprocessable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPatch,
		"/api/v1/template_objects/"+idN(20).String()+"/attachments/"+idN(21).String(),
		`{"file_storage":{"path":" "}}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody(t, w)["fields"], "file_storage.path")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
