package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgNotFound = "Not found."
)

// ValidationError maps request fields to the problems found on them.
type ValidationError map[string][]string

func (v ValidationError) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationError) Error() string {
	parts := []string{}
	for _, field := range slices.Sorted(maps.Keys(v)) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(v[field], " ")))
	}
	return strings.Join(parts, "; ")
}

func detail(message string) map[string]string {
	return map[string]string{"detail": message}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondNotFound(w http.ResponseWriter) {
	respondJSON(w, http.StatusNotFound, detail(msgNotFound))
}

func (router *router) respondError(w http.ResponseWriter, r *http.Request, err error) {
	router.logger.ErrorContext(r.Context(), "Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	respondJSON(w, http.StatusInternalServerError, detail("A server error occurred."))
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("JSON parse error - %w", err)
}
