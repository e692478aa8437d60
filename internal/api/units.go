package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/response"
)

const (
	kindLinearUnit     = "linear_unit"
	kindFunctionalUnit = "functional_unit"
)

func (a *API) unitRoutes(r chi.Router) {
	r.Post("/linear", a.createLinearUnit)
	r.Get("/linear", a.listLinearUnits)
	r.Get("/linear/{id}", a.getLinearUnit)
	r.Delete("/linear/{id}", a.deleteLinearUnit)

	r.Post("/functional", a.createFunctionalUnit)
	r.Get("/functional", a.listFunctionalUnits)
	r.Get("/functional/{id}", a.getFunctionalUnit)
	r.Delete("/functional/{id}", a.deleteFunctionalUnit)
}

func (a *API) createLinearUnit(w http.ResponseWriter, r *http.Request) {
	var in models.LinearUnitCreate
	if !a.decode(w, r, &in) {
		return
	}
	in.CreatedBy = actorOr(r, in.CreatedBy)

	u, err := a.store.CreateLinearUnit(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindLinearUnit, events.Created, u.ID)
	response.Created(w, u)
}

func (a *API) listLinearUnits(w http.ResponseWriter, r *http.Request) {
	units, err := a.store.ListLinearUnits(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, units)
}

func (a *API) getLinearUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	u, err := a.store.GetLinearUnit(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, u)
}

func (a *API) deleteLinearUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	if err := a.store.DeleteLinearUnit(r.Context(), id, middleware.ActorFrom(r.Context())); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindLinearUnit, events.Deleted, id)
	response.Message(w, "LinearUnit soft deleted")
}

func (a *API) createFunctionalUnit(w http.ResponseWriter, r *http.Request) {
	var in models.FunctionalUnitCreate
	if !a.decode(w, r, &in) {
		return
	}
	in.CreatedBy = actorOr(r, in.CreatedBy)

	u, err := a.store.CreateFunctionalUnit(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindFunctionalUnit, events.Created, u.ID)
	response.Created(w, u)
}

func (a *API) listFunctionalUnits(w http.ResponseWriter, r *http.Request) {
	units, err := a.store.ListFunctionalUnits(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, units)
}

func (a *API) getFunctionalUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	u, err := a.store.GetFunctionalUnit(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, u)
}

func (a *API) deleteFunctionalUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	if err := a.store.DeleteFunctionalUnit(r.Context(), id, middleware.ActorFrom(r.Context())); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindFunctionalUnit, events.Deleted, id)
	response.Message(w, "FunctionalUnit soft deleted")
}
