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

const kindProject = "project"

func (a *API) projectRoutes(r chi.Router) {
	r.Post("/", a.createProject)
	r.Get("/", a.listProjects)
	r.Get("/{id}", a.getProject)
	r.Put("/{id}", a.updateProject)
	r.Delete("/{id}", a.deleteProject)

	s := a.store
	r.Get("/{id}/metadata", listChildren(a, s.ListProjectMetaData))
	r.Post("/{id}/metadata", createChild(a, "project_metadata", s.CreateProjectMetaData,
		func(m *models.ProjectMetaData) uuid.UUID { return m.ID }))
	r.Get("/{id}/rules", listChildren(a, s.ListProjectRules))
	r.Post("/{id}/rules", createChild(a, "project_rule", s.CreateProjectRule,
		func(m *models.ProjectRule) uuid.UUID { return m.ID }))
	r.Get("/{id}/objectives", listChildren(a, s.ListProjectObjectives))
	r.Post("/{id}/objectives", createChild(a, "project_objective", s.CreateProjectObjective,
		func(m *models.ProjectObjective) uuid.UUID { return m.ID }))
	r.Get("/{id}/deliverables", listChildren(a, s.ListProjectDeliverables))
	r.Post("/{id}/deliverables", createChild(a, "project_deliverable", s.CreateProjectDeliverable,
		func(m *models.ProjectDeliverable) uuid.UUID { return m.ID }))
	r.Get("/{id}/constraints", listChildren(a, s.ListProjectConstraints))
	r.Post("/{id}/constraints", createChild(a, "project_constraint", s.CreateProjectConstraint,
		func(m *models.ProjectConstraint) uuid.UUID { return m.ID }))
	r.Get("/{id}/attachments", listChildren(a, s.ListProjectAttachments))
	r.Post("/{id}/attachments", createChild(a, "project_attachment", s.CreateProjectAttachment,
		func(m *models.ProjectAttachment) uuid.UUID { return m.ID }))

	for kind := range projectChildKinds {
		del := func(ctx context.Context, id uuid.UUID) error { return s.DeleteProjectChild(ctx, kind, id) }
		r.Delete("/"+kind+"/{childId}", deleteChild(a, projectChildKinds[kind], "childId", del, response.Deleted))
	}
}

// projectChildKinds maps the route segment of a project child to its event
// kind.
var projectChildKinds = map[string]string{
	"metadata":     "project_metadata",
	"rules":        "project_rule",
	"objectives":   "project_objective",
	"deliverables": "project_deliverable",
	"constraints":  "project_constraint",
	"attachments":  "project_attachment",
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectCreate
	if !a.decode(w, r, &in) {
		return
	}
	in.CreatedBy = actorOr(r, in.CreatedBy)

	p, err := a.store.CreateProject(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindProject, events.Created, p.ID)
	response.Created(w, p)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.store.ListProjects(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, projects)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	p, err := a.store.GetProject(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	response.OK(w, p)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	var in models.ProjectUpdate
	if !a.decode(w, r, &in) {
		return
	}
	in.UpdatedBy = actorOr(r, in.UpdatedBy)

	p, err := a.store.UpdateProject(r.Context(), id, in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindProject, events.Updated, id)
	response.OK(w, p)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := a.id(w, r, "id")
	if !ok {
		return
	}
	if err := a.store.DeleteProject(r.Context(), id, middleware.ActorFrom(r.Context())); err != nil {
		a.fail(w, err)
		return
	}
	a.publish(r.Context(), kindProject, events.Deleted, id)
	response.Deleted(w)
}
