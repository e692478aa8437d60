package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/store"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/response"
)

const (
	kindTest          = "test"
	kindRealCondition = "real_condition"
)

// readingKinds maps a reading table to its event kind.
var readingKinds = map[store.ReadingTable]string{
	store.Readings:   "reading",
	store.VLReadings: "vl_reading",
}

func (a *API) testRoutes(r chi.Router) {
	r.Post("/", a.createTest)
	r.Get("/", a.listTests)
	r.Get("/{id}", a.getTest)
	r.Put("/{id}", a.updateTest)
	r.Delete("/{id}", a.deleteTest)

	s := a.store
	r.Get("/{id}/realconditions", listChildren(a, s.ListRealConditions))
	r.Post("/{id}/realcondition", createChild(a, kindRealCondition, s.CreateRealCondition,
		func(c *models.RealCondition) uuid.UUID { return c.ID }))
	r.Delete("/realcondition/{childId}", deleteChild(a, kindRealCondition, "childId", s.DeleteRealCondition, response.Deleted))

	a.readingRoutes(r, store.Readings, "readings", "reading")
	a.readingRoutes(r, store.VLReadings, "vlreadings", "vlreading")
}

func (a *API) readingRoutes(r chi.Router, table store.ReadingTable, plural, singular string) {
	kind := readingKinds[table]
	list := func(ctx context.Context, testID uuid.UUID) ([]models.Reading, error) {
		return a.store.ListReadings(ctx, table, testID)
	}
	create := func(ctx context.Context, testID uuid.UUID, in models.ReadingCreate) (*models.Reading, error) {
		return a.store.CreateReading(ctx, table, testID, in)
	}
	del := func(ctx context.Context, id uuid.UUID) error {
		return a.store.DeleteReading(ctx, table, id)
	}

	r.Get("/{id}/"+plural, listChildren(a, list))
	r.Post("/{id}/"+singular, createChild(a, kind, create, func(rd *models.Reading) uuid.UUID { return rd.ID }))
	r.Delete("/"+singular+"/{childId}", deleteChild(a, kind, "childId", del, response.Deleted))
}

func (a *API) createTest(w http.ResponseWriter, r *http.Request) {
	var in models.TestCreate
	if !a.decode(w, r, &in) {
		return
	}
	in.CreatedBy = actorOr(r, in.CreatedBy)

	t, err := a.store.CreateTest(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTest, events.Created, t.ID)
	response.Created(w, t)
}

func (a *API) listTests(w http.ResponseWriter, r *http.Request) {
	tests, err := a.store.ListTests(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, tests)
}

func (a *API) getTest(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	t, err := a.store.GetTest(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, t)
}

func (a *API) updateTest(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.TestUpdate
	if !a.decode(w, r, &in) {
		return
	}

	t, err := a.store.UpdateTest(r.Context(), id, in, middleware.ActorFrom(r.Context()))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTest, events.Updated, id)
	response.OK(w, t)
}

func (a *API) deleteTest(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	if err := a.store.DeleteTest(r.Context(), id, middleware.ActorFrom(r.Context())); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTest, events.Deleted, id)
	response.Deleted(w)
}
