// Package request decodes strict JSON request bodies.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxBodySize bounds request bodies.
const DefaultMaxBodySize int64 = 1 << 20

// Error is a client mistake in the request body. It renders as 400, or 413
// when the body is too large.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func badRequest(format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Status: http.StatusBadRequest, Message: err.Error(), Err: errors.Unwrap(err)}
}

// Validator is implemented by payloads that check themselves after
// decoding.
type Validator interface {
	Validate() error
}

// Parser decodes JSON bodies.
type Parser struct {
	maxBodySize int64
}

func NewParser() *Parser {
	return &Parser{maxBodySize: DefaultMaxBodySize}
}

func NewParserWithMaxSize(maxBytes int64) *Parser {
	return &Parser{maxBodySize: maxBytes}
}

// ParseJSON decodes exactly one JSON value into target, rejecting unknown
// fields. When target implements Validator its error is returned as is.
func (p *Parser) ParseJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return &Error{
				Status:  http.StatusUnsupportedMediaType,
				Message: fmt.Sprintf("unsupported content type: %s", ct),
			}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, p.maxBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return badRequest("request body contains multiple JSON values")
	}
	if _, err := dec.Token(); err != io.EOF {
		return badRequest("request body contains trailing data")
	}

	if v, ok := target.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func decodeError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.Is(err, io.EOF):
		return badRequest("request body is empty")
	case errors.Is(err, io.ErrUnexpectedEOF):
		return badRequest("request body contains malformed JSON")
	case errors.As(err, &syntaxErr):
		return badRequest("request body contains malformed JSON at offset %d: %w", syntaxErr.Offset, err)
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return badRequest("field %q must be of type %s: %w", typeErr.Field, typeErr.Type, err)
		}
		return badRequest("request body must be a JSON %s: %w", typeErr.Type, err)
	case errors.As(err, &maxBytesErr):
		return &Error{
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("request body must not exceed %d bytes", maxBytesErr.Limit),
			Err:     err,
		}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return badRequest("request body contains unknown field %s", field)
	default:
		return badRequest("invalid JSON: %w", err)
	}
}
