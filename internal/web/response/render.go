// Package response renders JSON bodies and maps store errors onto HTTP
// statuses.
package response

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Message writes {"message": msg} with 200.
func Message(w http.ResponseWriter, msg string) {
	OK(w, map[string]string{"message": msg})
}

// Deleted writes {"deleted": true} with 200.
func Deleted(w http.ResponseWriter) {
	OK(w, map[string]bool{"deleted": true})
}
