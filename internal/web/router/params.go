package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ParamError reports a path parameter that is missing or not a UUID.
type ParamError struct {
	Name  string
	Value string
}

func (e *ParamError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("missing path parameter: %s", e.Name)
	}
	return fmt.Sprintf("invalid UUID for parameter %s: %q", e.Name, e.Value)
}

// UUIDParam parses the named chi path parameter.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	value := chi.URLParam(r, name)
	if value == "" {
		return uuid.Nil, &ParamError{Name: name}
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &ParamError{Name: name, Value: value}
	}
	return id, nil
}
