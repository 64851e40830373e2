package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
	// Reason is set for conflicts: duplicate_name, cycle_detected or concurrent_modification.
	Reason string `json:"reason,omitempty"`
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	status := domain.StatusCode(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err, "status", status)
	} else {
		logger.WarnContext(ctx, "request rejected", "error", err, "status", status)
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: conflictErr.Error(), Reason: conflictErr.Reason})
		return
	}

	switch status {
	case http.StatusNotFound:
		writeError(w, status, err.Error())
	case http.StatusServiceUnavailable:
		writeError(w, status, err.Error())
	case http.StatusBadGateway:
		writeError(w, status, "External service error")
	case http.StatusBadRequest:
		writeError(w, status, "Invalid input")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}
