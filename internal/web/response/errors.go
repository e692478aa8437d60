package response

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/labbench/testbench/internal/orm/crud"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Code    int                 `json:"code"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// Error renders an error body. kind is a short machine-readable label such
// as "not_found"; an empty kind is derived from status.
func Error(w http.ResponseWriter, status int, kind, message string) {
	if kind == "" {
		kind = errorCodeFromStatus(status)
	}
	JSON(w, status, &ErrorResponse{Error: kind, Message: message, Code: status})
}

// BadRequest renders a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "", message)
}

// NotFound renders a 404.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, "", message)
}

// MethodNotAllowed renders a 405.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, "", "Method not allowed")
}

// Status maps an error returned by the store layer onto an HTTP status.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case crud.IsNotFound(err):
		return http.StatusNotFound
	case crud.IsConflict(err):
		return http.StatusConflict
	case crud.IsValidationFailed(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// FromError renders err with the status chosen by Status. Validation errors
// carry their per-field messages. Internal errors are logged and hidden
// from the client.
func FromError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := Status(err)

	var ve *crud.ValidationError
	if errors.As(err, &ve) {
		JSON(w, status, &ErrorResponse{
			Error:   "validation_failed",
			Message: ve.Error(),
			Code:    status,
			Fields:  ve.Fields(),
		})
		return
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		Error(w, status, "", "Internal server error")
		return
	}
	Error(w, status, "", err.Error())
}

func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "error"
	}
}
