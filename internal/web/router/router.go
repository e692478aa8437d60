// Package router builds the chi mux the API is mounted on.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labbench/testbench/internal/web/response"
)

// Router is a chi mux with JSON 404 and 405 handlers.
type Router struct {
	mux *chi.Mux
}

// New returns a router running middlewares, in order, around every route.
func New(middlewares ...func(http.Handler) http.Handler) *Router {
	mux := chi.NewRouter()
	for _, m := range middlewares {
		mux.Use(m)
	}
	mux.NotFound(notFound)
	mux.MethodNotAllowed(methodNotAllowed)
	return &Router{mux: mux}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Mux exposes the underlying chi router for route registration.
func (r *Router) Mux() chi.Router {
	return r.mux
}

// Route mounts a sub-router at prefix.
func (r *Router) Route(prefix string, fn func(chi.Router)) {
	r.mux.Route(prefix, fn)
}

func (r *Router) Get(pattern string, h http.HandlerFunc) {
	r.mux.Get(pattern, h)
}

// Routes lists every registered method and pattern.
func (r *Router) Routes() ([]RouteInfo, error) {
	return Walk(r.mux)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, "No route matches "+r.Method+" "+r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.MethodNotAllowed(w)
}
