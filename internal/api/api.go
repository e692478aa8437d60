// Package api exposes the testbench records over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/labbench/testbench/internal/events"
	"github.com/labbench/testbench/internal/models"
	"github.com/labbench/testbench/internal/store"
	"github.com/labbench/testbench/internal/web/cache"
	"github.com/labbench/testbench/internal/web/middleware"
	"github.com/labbench/testbench/internal/web/request"
	"github.com/labbench/testbench/internal/web/response"
	"github.com/labbench/testbench/internal/web/router"
)

// DefaultPrefix is where the record routes are mounted.
const DefaultPrefix = "/api/v1"

// Config wires the dependencies of the HTTP layer. Cache, Publisher and
// Metrics are optional. Without a Cache, unit systems are read from the
// store on every request. The caller owns Cache and closes it.
type Config struct {
	Prefix    string
	Store     *store.Store
	Logger    *zap.Logger
	Cache     cache.Cache
	CacheTTL  time.Duration
	Publisher events.Publisher
	Metrics   *middleware.Metrics
	Now       func() time.Time
}

// API holds the handlers.
type API struct {
	store       *store.Store
	logger      *zap.Logger
	parser      *request.Parser
	unitSystems *cache.Records[models.UnitSystem]
	events      events.Publisher
	now         func() time.Time
}

func New(cfg Config) *API {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.Nop{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.Nop{}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &API{
		store:       cfg.Store,
		logger:      cfg.Logger,
		parser:      request.NewParser(),
		unitSystems: cache.NewRecords[models.UnitSystem](cfg.Cache, "unitsystem", cfg.CacheTTL, cfg.Logger),
		events:      cfg.Publisher,
		now:         cfg.Now,
	}
}

// NewRouter builds the full route tree: service endpoints at the root and
// record routes under cfg.Prefix.
func NewRouter(cfg Config) *router.Router {
	a := New(cfg)
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.Recovery(a.logger),
		middleware.Logging(a.logger, "/healthz", "/metrics"),
	)
	if cfg.Metrics != nil {
		chain = chain.Append(cfg.Metrics.Middleware())
	}
	chain = chain.Append(middleware.Actor())

	r := router.New(chain.Middlewares()...)
	r.Get("/healthz", a.health)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Handler().ServeHTTP)
	}

	r.Route(cfg.Prefix, func(api chi.Router) {
		api.Route("/unitsystems", a.unitSystemRoutes)
		api.Route("/units", a.unitRoutes)
		api.Route("/projects", a.projectRoutes)
		api.Route("/test", a.testRoutes)
		api.Route("/template_tests", a.testTemplateRoutes)
		api.Route("/template_objects", a.objectTemplateRoutes)
	})
	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		a.logger.Warn("health check failed", zap.Error(err))
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	response.OK(w, map[string]string{"status": "ok"})
}

// decode parses the body into v and renders the error if it fails.
func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := a.parser.ParseJSON(w, r, v); err != nil {
		a.fail(w, err)
		return false
	}
	return true
}

// id parses a UUID path parameter and renders 400 if it is malformed.
func (a *API) id(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := router.UUIDParam(r, name)
	if err != nil {
		a.fail(w, err)
		return uuid.Nil, false
	}
	return id, true
}

func (a *API) fail(w http.ResponseWriter, err error) {
	var (
		reqErr   *request.Error
		paramErr *router.ParamError
	)
	switch {
	case errors.As(err, &reqErr):
		response.Error(w, reqErr.Status, "", reqErr.Message)
	case errors.As(err, &paramErr):
		response.Error(w, http.StatusBadRequest, "invalid_id", paramErr.Error())
	default:
		response.FromError(w, a.logger, err)
	}
}

func (a *API) publish(ctx context.Context, kind string, action events.Action, id uuid.UUID) {
	a.events.Publish(ctx, events.RecordEvent{Kind: kind, Action: action, ID: id, At: a.now()})
}

// actorOr returns explicit when set, otherwise the X-Actor-ID of r.
func actorOr(r *http.Request, explicit *uuid.UUID) *uuid.UUID {
	if explicit != nil {
		return explicit
	}
	return middleware.ActorFrom(r.Context())
}
