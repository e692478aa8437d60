package request

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type validated struct {
	Name string `json:"name"`
}

var errNameRequired = errors.New("name is required")

func (v *validated) Validate() error {
	if v.Name == "" {
		return errNameRequired
	}
	return nil
}

func newJSONRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestParseJSON(t *testing.T) {
	var p payload
	err := NewParser().ParseJSON(httptest.NewRecorder(), newJSONRequest(`{"name":"Bridge","tags":["steel"]}`), &p)

	require.NoError(t, err)
	assert.Equal(t, payload{Name: "Bridge", Tags: []string{"steel"}}, p)
}

func TestParseJSONWithoutContentType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Bridge"}`))

	var p payload
	require.NoError(t, NewParser().ParseJSON(httptest.NewRecorder(), r, &p))
	assert.Equal(t, "Bridge", p.Name)
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"empty", ``, http.StatusBadRequest, "request body is empty"},
		{"unknown field", `{"name":"x","colour":"red"}`, http.StatusBadRequest, `unknown field "colour"`},
		{"syntax", `{"name":}`, http.StatusBadRequest, "malformed JSON"},
		{"truncated", `{"name":"x"`, http.StatusBadRequest, "malformed JSON"},
		{"wrong type", `{"name":12}`, http.StatusBadRequest, `field "name" must be of type string`},
		{"not an object", `[1,2]`, http.StatusBadRequest, "request body must be a JSON"},
		{"two values", `{"name":"a"}{"name":"b"}`, http.StatusBadRequest, "multiple JSON values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := NewParser().ParseJSON(httptest.NewRecorder(), newJSONRequest(tt.body), &p)

			var reqErr *Error
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Contains(t, reqErr.Message, tt.message)
		})
	}
}

func TestParseJSONTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", 64) + `"}`

	var p payload
	err := NewParserWithMaxSize(16).ParseJSON(httptest.NewRecorder(), newJSONRequest(body), &p)

	var reqErr *Error
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, reqErr.Status)
}

func TestParseJSONUnsupportedMediaType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=x"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var p payload
	err := NewParser().ParseJSON(httptest.NewRecorder(), r, &p)

	var reqErr *Error
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnsupportedMediaType, reqErr.Status)
}

func TestParseJSONRunsValidator(t *testing.T) {
	var v validated
	err := NewParser().ParseJSON(httptest.NewRecorder(), newJSONRequest(`{}`), &v)
	assert.ErrorIs(t, err, errNameRequired)

	err = NewParser().ParseJSON(httptest.NewRecorder(), newJSONRequest(`{"name":"ok"}`), &v)
	assert.NoError(t, err)
}
