package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/response"
)

const (
	kindTestTemplate      = "test_template"
	kindGeneralInfo       = "general_info"
	kindTemplateCondition = "template_condition"
	kindTemplateReading   = "template_reading"
)

func (a *API) testTemplateRoutes(r chi.Router) {
	r.Get("/", a.listTestTemplates)
	r.Post("/", a.createTestTemplate)
	r.Get("/{id}", a.getTestTemplate)
	r.Put("/{id}", a.updateTestTemplate)
	r.Delete("/{id}", a.deleteTestTemplate)

	r.Post("/{id}/general_info", createChild(a, kindGeneralInfo, a.store.CreateGeneralInfo,
		func(g *models.TestTemplateGeneralInfo) uuid.UUID { return g.ID }))
	r.Get("/{id}/general_info", a.getGeneralInfo)
	r.Put("/{id}/general_info", a.updateGeneralInfo)

	s := a.store
	r.Get("/{id}/conditions", listChildren(a, s.ListTemplateConditions))
	r.Post("/{id}/conditions", createChild(a, kindTemplateCondition, s.CreateTemplateCondition,
		func(c *models.TestTemplateCondition) uuid.UUID { return c.ID }))
	r.Put("/{id}/conditions/{cid}", a.updateTemplateCondition)
	r.Delete("/conditions/{cid}", deleteChild(a, kindTemplateCondition, "cid", s.DeleteTemplateCondition, response.NoContent))

	r.Get("/{id}/readings", listChildren(a, s.ListTemplateReadings))
	r.Post("/{id}/readings", createChild(a, kindTemplateReading, s.CreateTemplateReading,
		func(rd *models.TestTemplateReading) uuid.UUID { return rd.ID }))
	r.Put("/{id}/readings/{rid}", a.updateTemplateReading)
	r.Delete("/readings/{rid}", deleteChild(a, kindTemplateReading, "rid", s.DeleteTemplateReading, response.NoContent))
}

func (a *API) listTestTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := a.store.ListTestTemplates(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, templates)
}

func (a *API) createTestTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.TestTemplateCreate
	if !a.decode(w, r, &in) {
		return
	}

	t, err := a.store.CreateTestTemplate(r.Context(), in, middleware.ActorFrom(r.Context()))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTestTemplate, events.Created, t.ID)
	response.Created(w, t)
}

func (a *API) getTestTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	t, err := a.store.GetTestTemplate(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, t)
}

func (a *API) updateTestTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.TestTemplateUpdate
	if !a.decode(w, r, &in) {
		return
	}

	t, err := a.store.UpdateTestTemplate(r.Context(), id, in, middleware.ActorFrom(r.Context()))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTestTemplate, events.Updated, id)
	response.OK(w, t)
}

func (a *API) deleteTestTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	if err := a.store.DeleteTestTemplate(r.Context(), id, middleware.ActorFrom(r.Context())); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTestTemplate, events.Deleted, id)
	response.NoContent(w)
}

func (a *API) getGeneralInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	g, err := a.store.GetGeneralInfo(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, g)
}

func (a *API) updateGeneralInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.GeneralInfoInput
	if !a.decode(w, r, &in) {
		return
	}

	g, err := a.store.UpdateGeneralInfo(r.Context(), id, in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindGeneralInfo, events.Updated, g.ID)
	response.OK(w, g)
}

func (a *API) updateTemplateCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	cid, ok := a.id(w, r, "cid")
	if !ok {
		return
	}
	var in models.TestTemplateConditionUpdate
	if !a.decode(w, r, &in) {
		return
	}

	c, err := a.store.UpdateTemplateCondition(r.Context(), id, cid, in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTemplateCondition, events.Updated, cid)
	response.OK(w, c)
}

func (a *API) updateTemplateReading(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	rid, ok := a.id(w, r, "rid")
	if !ok {
		return
	}
	var in models.TestTemplateReadingUpdate
	if !a.decode(w, r, &in) {
		return
	}

	rd, err := a.store.UpdateTemplateReading(r.Context(), id, rid, in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindTemplateReading, events.Updated, rid)
	response.OK(w, rd)
}
