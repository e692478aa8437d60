package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"name": "SI"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"SI"}`, w.Body.String())
}

func TestDeletedAndMessage(t *testing.T) {
	w := httptest.NewRecorder()
	Deleted(w)
	assert.JSONEq(t, `{"deleted":true}`, w.Body.String())

	w = httptest.NewRecorder()
	Message(w, "UnitSystem soft deleted")
	assert.JSONEq(t, `{"message":"UnitSystem soft deleted"}`, w.Body.String())
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
