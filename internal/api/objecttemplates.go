package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/web/response"
)

const (
	kindObjectTemplate = "object_template"
	kindObjectRule     = "object_template_rule"
	kindAttachment     = "attachment"
)

func (a *API) objectTemplateRoutes(r chi.Router) {
	r.Post("/", a.createObjectTemplate)
	r.Get("/", a.listObjectTemplates)
	r.Get("/{id}", a.getObjectTemplate)
	r.Patch("/{id}", a.updateObjectTemplate)
	r.Delete("/{id}", a.deleteObjectTemplate)

	s := a.store
	r.Get("/{id}/rules", listChildren(a, s.ListRules))
	r.Post("/{id}/rules", createChild(a, kindObjectRule, s.CreateRule,
		func(rule *models.ObjectTemplateRule) uuid.UUID { return rule.ID }))
	r.Delete("/rules/{rid}", deleteChild(a, kindObjectRule, "rid", s.DeleteRule, response.NoContent))

	r.Get("/{id}/attachments", listChildren(a, s.ListAttachments))
	r.Post("/{id}/attachments", createChild(a, kindAttachment, s.CreateAttachment,
		func(att *models.Attachment) uuid.UUID { return att.ID }))
	r.Patch("/{id}/attachments/{aid}", a.updateAttachment)
	r.Delete("/{id}/attachments/{aid}", a.deleteAttachment)
}

func (a *API) createObjectTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.ObjectTemplateCreate
	if !a.decode(w, r, &in) {
		return
	}

	t, err := a.store.CreateObjectTemplate(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindObjectTemplate, events.Created, t.ID)
	response.Created(w, t)
}

func (a *API) listObjectTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := a.store.ListObjectTemplates(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, templates)
}

func (a *API) getObjectTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	t, err := a.store.GetObjectTemplate(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, t)
}

func (a *API) updateObjectTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.ObjectTemplateUpdate
	if !a.decode(w, r, &in) {
		return
	}

	t, err := a.store.UpdateObjectTemplate(r.Context(), id, in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindObjectTemplate, events.Updated, id)
	response.OK(w, t)
}

func (a *API) deleteObjectTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	if err := a.store.DeleteObjectTemplate(r.Context(), id); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindObjectTemplate, events.Deleted, id)
	response.NoContent(w)
}

func (a *API) updateAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	aid, ok := a.id(w, r, "aid")
	if !ok {
		return
	}
	var in models.AttachmentUpdate
	if !a.decode(w, r, &in) {
		return
	}

	att, err := a.store.UpdateAttachment(r.Context(), id, aid, in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindAttachment, events.Updated, aid)
	response.OK(w, att)
}

func (a *API) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	aid, ok := a.id(w, r, "aid")
	if !ok {
		return
	}
	if err := a.store.DeleteAttachment(r.Context(), id, aid); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindAttachment, events.Deleted, aid)
	response.NoContent(w)
}
