package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}

// Walk collects the routes of a chi tree, sorted by pattern then method.
func Walk(routes chi.Routes) ([]RouteInfo, error) {
	var out []RouteInfo
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.Replace(route, "/*/", "/", -1)
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		out = append(out, RouteInfo{Method: method, Pattern: route})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk routes: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}

// RouteList renders routes as aligned "METHOD pattern" lines.
func RouteList(routes []RouteInfo) string {
	var b strings.Builder
	for _, r := range routes {
		fmt.Fprintf(&b, "%-7s %s\n", r.Method, r.Pattern)
	}
	return b.String()
}
