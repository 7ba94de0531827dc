package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"blocapp/internal/core"
	"blocapp/internal/middleware/trace"
	"blocapp/internal/services"
	"blocapp/internal/storage"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: trace.GetRequestID(r.Context()),
	})
}

// writeDomainError maps service errors onto HTTP statuses: invalid input is
// 422, duplicates and lifecycle conflicts are 409, missing records are 404.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, core.ErrDuplicateExpense),
		errors.Is(err, core.ErrMonthPublished),
		errors.Is(err, services.ErrInitialBalancesMissing):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, core.ErrMonthNotPublished):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a JSON body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return false
	}
	return true
}
