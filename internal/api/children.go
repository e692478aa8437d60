package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/web/response"
)

// listChildren serves GET /{id}/<kind> for a parent identified by "id".
func listChildren[T any](a *API, list func(context.Context, uuid.UUID) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := a.id(w, r, "id")
		if !ok {
			return
		}
		items, err := list(r.Context(), parentID)
		if err != nil {
			a.fail(w, err)
			return
		}
		response.OK(w, items)
	}
}

// createChild serves POST /{id}/<kind>. id picks the created record's id
// for the published event.
func createChild[In, Out any](a *API, kind string, create func(context.Context, uuid.UUID, In) (*Out, error), id func(*Out) uuid.UUID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, ok := a.id(w, r, "id")
		if !ok {
			return
		}
		var in In
		if !a.decode(w, r, &in) {
			return
		}
		out, err := create(r.Context(), parentID, in)
		if err != nil {
			a.fail(w, err)
			return
		}
		a.publish(r.Context(), kind, events.Created, id(out))
		response.Created(w, out)
	}
}

// deleteChild serves DELETE routes of hard-deleted children. render writes
// the success body.
func deleteChild(a *API, kind, param string, del func(context.Context, uuid.UUID) error, render func(http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.id(w, r, param)
		if !ok {
			return
		}
		if err := del(r.Context(), id); err != nil {
			a.fail(w, err)
			return
		}
		a.publish(r.Context(), kind, events.Deleted, id)
		render(w)
	}
}
