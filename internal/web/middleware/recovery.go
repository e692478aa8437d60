package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/labbench/testbench/internal/web/response"
)

// Recovery turns a panicking handler into a 500 JSON error and logs the
// panic with its stack.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				logger.Error("panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(p)),
					zap.Stack("stack"),
				)
				response.Error(w, http.StatusInternalServerError, "internal_server_error",
					"An unexpected error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
