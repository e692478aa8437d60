package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/labbench/testbench/internal/web/response"
)

// ActorHeader carries the id of the user acting on a record. It is used for
// createdBy, updatedBy and deleted_by attribution only.
const ActorHeader = "X-Actor-ID"

const actorKey contextKey = "actor"

// Actor parses X-Actor-ID into the request context. A malformed value is
// rejected with 400.
func Actor() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(ActorHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "invalid_actor", ActorHeader+" must be a UUID")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), id)))
		})
	}
}

// WithActor returns a context carrying id as the acting user.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey, id)
}

// ActorFrom returns the acting user, or nil when the request named none.
func ActorFrom(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(actorKey).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
