package api

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// A child whose parent is soft-deleted matches no row in the guarded
// DELETE, so every child family answers 404 and publishes nothing.
func TestDeleteChildOfDeletedParentIsNotFound(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		delete string
	}{
		{
			name:   "project metadata",
			path:   "/api/v1/projects/metadata/",
			delete: "DELETE FROM project_metadata c USING projects p WHERE c.id = $1 AND p.id = c.project_id AND p.is_deleted = false",
		},
		{
			name:   "project attachment",
			path:   "/api/v1/projects/attachments/",
			delete: "DELETE FROM project_attachments c USING projects p WHERE c.id = $1 AND p.id = c.project_id AND p.is_deleted = false",
		},
		{
			name:   "real condition",
			path:   "/api/v1/test/realcondition/",
			delete: "DELETE FROM real_conditions c USING tests p WHERE c.id = $1 AND p.id = c.test_id AND p.is_deleted = false",
		},
		{
			name:   "reading",
			path:   "/api/v1/test/reading/",
			delete: "DELETE FROM readings c USING tests p WHERE c.id = $1 AND p.id = c.test_id AND p.is_deleted = false",
		},
		{
			name:   "template condition",
			path:   "/api/v1/template_tests/conditions/",
			delete: "DELETE FROM test_template_conditions c USING test_templates p WHERE c.id = $1 AND p.id = c.test_template_id AND p.is_deleted = false",
		},
		{
			name:   "template reading",
			path:   "/api/v1/template_tests/readings/",
			delete: "DELETE FROM test_template_readings c USING test_templates p WHERE c.id = $1 AND p.id = c.test_template_id AND p.is_deleted = false",
		},
		{
			name:   "object template rule",
			path:   "/api/v1/template_objects/rules/",
			delete: "DELETE FROM object_template_rules c USING object_templates p WHERE c.id = $1 AND p.id = c.object_template_id AND p.is_deleted = false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mock.ExpectExec(regexp.QuoteMeta(tt.delete)).
				WithArgs(idN(40)).
				WillReturnResult(sqlmock.NewResult(0, 0))

			w := env.do(t, http.MethodDelete, tt.path+idN(40).String(), "", nil)
			assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
			assert.Equal(t, "not_found", decodeBody(t, w)["error"])
			assert.Empty(t, env.events.all())
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}
