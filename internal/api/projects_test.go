package api

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labbench/testbench/internal/events"
)

const projectBody = `{
	"name": "Bridge",
	"client": "ACME",
	"status": "open",
	"type": "civil",
	"tags": ["load"],
	"startDate": "2024-06-01T00:00:00Z",
	"expectedDeliveryDate": "2024-09-01T00:00:00Z",
	"version": 1,
	"isLastVersion": true
}`

func TestCreateProjectTakesAuthorFromActorHeader(t *testing.T) {
	env := newTestEnv(t)
	actor := idN(99)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	env.mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(idN(1), "Bridge", "ACME", "open", "civil", `{"load"}`, start, start.AddDate(0, 3, 0),
			1, true, testNow, actor, testNow, actor).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodPost, "/api/v1/projects", projectBody, &actor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, actor.String(), body["createdBy"])
	assert.Equal(t, actor.String(), body["updatedBy"])
	assert.Equal(t, false, body["is_deleted"])

	require.Len(t, env.events.all(), 1)
	assert.Equal(t, events.RecordEvent{Kind: "project", Action: events.Created, ID: idN(1), At: testNow},
		env.events.all()[0])
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateProjectWithoutAuthorIsUnprocessable(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/projects", projectBody, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetProjectNotFound(t *testing.T) {
	env := newTestEnv(t)
	id := idN(5)

	env.mock.ExpectQuery(`FROM projects WHERE id = \$1 AND is_deleted = false`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	w := env.do(t, http.MethodGet, "/api/v1/projects/"+id.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "not_found", body["error"])
	assert.EqualValues(t, 404, body["code"])
	assert.NotEmpty(t, body["message"])
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t)
	id := idN(5)

	env.mock.ExpectExec(`UPDATE projects SET is_deleted = true`).
		WithArgs(testNow, nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodDelete, "/api/v1/projects/"+id.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
	assert.Equal(t, events.Deleted, env.events.all()[0].Action)
}

func TestCreateProjectChildOnDeletedProject(t *testing.T) {
	env := newTestEnv(t)
	id := idN(5)

	env.mock.ExpectQuery(`SELECT 1 FROM projects WHERE id = \$1 AND is_deleted = false`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	w := env.do(t, http.MethodPost, "/api/v1/projects/"+id.String()+"/rules",
		`{"name":"ISO 9001","isLink":false,"isFile":false}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, env.events.all())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestListProjectConstraints(t *testing.T) {
	env := newTestEnv(t)
	id := idN(5)

	env.mock.ExpectQuery(`SELECT 1 FROM projects`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	env.mock.ExpectQuery(`FROM project_constraints WHERE project_id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "value"}))

	w := env.do(t, http.MethodGet, "/api/v1/projects/"+id.String()+"/constraints", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteProjectChild(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectExec(`DELETE FROM project_deliverables c USING projects p WHERE c.id = \$1 AND p.id = c.project_id AND p.is_deleted = false`).
		WithArgs(idN(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodDelete, "/api/v1/projects/deliverables/"+idN(30).String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
	assert.Equal(t, []events.RecordEvent{
		{Kind: "project_deliverable", Action: events.Deleted, ID: idN(30), At: testNow},
	}, env.events.all())
}

func TestDeleteMissingReadingIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectExec(`DELETE FROM vl_readings c USING tests p WHERE c.id = \$1 AND p.id = c.test_id AND p.is_deleted = false`).
		WithArgs(idN(31)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := env.do(t, http.MethodDelete, "/api/v1/test/vlreading/"+idN(31).String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
