package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/repositories"
)

// apiResponse is the uniform success envelope returned by every endpoint.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Success    bool   `json:"success"`
}

// apiErrorResponse is the uniform failure envelope. Data is always null and
// Errors carries field-level detail when available.
type apiErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Data       any      `json:"data"`
	Success    bool     `json:"success"`
}

func respond(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	writeJSON(ctx, w, status, apiResponse{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    status < http.StatusBadRequest,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, details ...string) {
	if details == nil {
		details = []string{}
	}
	writeJSON(ctx, w, status, apiErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     details,
		Success:    false,
	})
}

// respondStoreError maps repository sentinels onto HTTP statuses; anything
// unrecognized becomes a 500 with the provided fallback message.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error, notFoundMsg, fallback string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repositories.ErrConflict):
		respondError(ctx, w, http.StatusConflict, "the resource was modified concurrently, retry the request")
	default:
		logging.FromContext(ctx).Error("store operation failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}
