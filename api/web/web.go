// Package web holds the JSON plumbing and the error taxonomy shared by the
// API packages.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Domain error taxonomy. Handlers map these to status codes; everything else
// is a 500.
var (
	// ErrNotFound: a referenced location/session/item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState: operation attempted against a session in the wrong
	// lifecycle state.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation: malformed input, rejected before any core logic runs.
	ErrValidation = errors.New("validation failed")
)

// NotFoundf wraps ErrNotFound with a caller message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidStatef wraps ErrInvalidState with a caller message.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// Validationf wraps ErrValidation with a caller message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", slog.Any("err", err))
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// DomainError maps a domain error to its status code and writes it.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidState):
		Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", slog.Any("err", err))
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

// Decode parses the request body into v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return Validationf("invalid request body")
	}
	return nil
}

// IDParam parses the given chi URL parameter as an int64.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, Validationf("invalid %s", name)
	}
	return id, nil
}

// QueryInt64 parses an optional int64 query parameter; nil when absent.
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, Validationf("invalid %s", name)
	}
	return &v, nil
}
