package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fittrack/fittrack/internal/repository"
	"github.com/fittrack/fittrack/internal/service"
	"github.com/fittrack/fittrack/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError translates service/repository errors into the wire
// taxonomy: field violations are 400s naming the field, missing or foreign
// records are an indistinguishable 404, anything else is an opaque 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := validation.AsFieldError(err); ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: fe.Message, Field: fe.Field})
		return
	}

	switch {
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrProgressNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		respondError(w, http.StatusConflict, "email already exists")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
