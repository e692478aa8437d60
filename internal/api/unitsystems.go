package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/response"
)

const kindUnitSystem = "unitsystem"

func (a *API) unitSystemRoutes(r chi.Router) {
	r.Post("/", a.createUnitSystem)
	r.Get("/", a.listUnitSystems)
	r.Get("/{id}", a.getUnitSystem)
	r.Patch("/{id}", a.updateUnitSystem)
	r.Delete("/{id}", a.deleteUnitSystem)

	r.Post("/{id}/physical_quantities", a.addPhysicalQuantity)
	r.Delete("/{id}/physical_quantities/{pqId}", a.deletePhysicalQuantity)

	r.Post("/{id}/physical_quantities/{pqId}/linear_units/{unitId}", a.linkUnit(a.store.AttachLinearUnit))
	r.Delete("/{id}/physical_quantities/{pqId}/linear_units/{unitId}", a.linkUnit(a.store.DetachLinearUnit))
	r.Post("/{id}/physical_quantities/{pqId}/functional_units/{unitId}", a.linkUnit(a.store.AttachFunctionalUnit))
	r.Delete("/{id}/physical_quantities/{pqId}/functional_units/{unitId}", a.linkUnit(a.store.DetachFunctionalUnit))
}

func (a *API) createUnitSystem(w http.ResponseWriter, r *http.Request) {
	var in models.UnitSystemCreate
	if !a.decode(w, r, &in) {
		return
	}
	in.CreatedBy = actorOr(r, in.CreatedBy)

	us, err := a.store.CreateUnitSystem(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindUnitSystem, events.Created, us.ID)
	response.Created(w, us)
}

func (a *API) listUnitSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := a.store.ListUnitSystems(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, systems)
}

func (a *API) getUnitSystem(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}

	us, err := a.unitSystems.Get(r.Context(), id.String(), func(ctx context.Context) (*models.UnitSystem, error) {
		return a.store.GetUnitSystem(ctx, id)
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, us)
}

func (a *API) updateUnitSystem(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.UnitSystemUpdate
	if !a.decode(w, r, &in) {
		return
	}
	in.UpdatedBy = actorOr(r, in.UpdatedBy)

	us, err := a.store.UpdateUnitSystem(r.Context(), id, in)
	a.unitSystemChanged(w, r, id, us, err)
}

func (a *API) deleteUnitSystem(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}

	if err := a.store.DeleteUnitSystem(r.Context(), id, middleware.ActorFrom(r.Context())); err != nil {
		a.fail(w, err)
		return
	}
	a.unitSystems.Invalidate(r.Context(), id.String())
	a.publish(r.Context(), kindUnitSystem, events.Deleted, id)
	response.Message(w, "UnitSystem soft deleted")
}

func (a *API) addPhysicalQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.PhysicalQuantityCreate
	if !a.decode(w, r, &in) {
		return
	}

	us, err := a.store.AddPhysicalQuantity(r.Context(), id, in)
	a.unitSystemChanged(w, r, id, us, err)
}

func (a *API) deletePhysicalQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	pqID, ok := a.id(w, r, "pqId")
	if !ok {
		return
	}

	us, err := a.store.DeletePhysicalQuantity(r.Context(), id, pqID)
	a.unitSystemChanged(w, r, id, us, err)
}

type unitLinkFunc func(ctx context.Context, systemID, pqID, unitID uuid.UUID) (*models.UnitSystem, error)

// linkUnit serves the attach and detach routes of both unit kinds.
func (a *API) linkUnit(op unitLinkFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.id(w, r, "id")
		if !ok {
			return
		}
		pqID, ok := a.id(w, r, "pqId")
		if !ok {
			return
		}
		unitID, ok := a.id(w, r, "unitId")
		if !ok {
			return
		}

		us, err := op(r.Context(), id, pqID, unitID)
		a.unitSystemChanged(w, r, id, us, err)
	}
}

// unitSystemChanged renders the outcome of a write that returns the whole
// system. The cached copy is dropped even on error: the write may have
// committed before the read-back failed. Only successful writes are
// announced.
func (a *API) unitSystemChanged(w http.ResponseWriter, r *http.Request, id uuid.UUID, us *models.UnitSystem, err error) {
	a.unitSystems.Invalidate(r.Context(), id.String())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindUnitSystem, events.Updated, id)
	response.OK(w, us)
}
