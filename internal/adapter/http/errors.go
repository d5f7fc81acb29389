package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// handleError maps the typed errors onto statuses and logs them with the
// request logger.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := observability.FromContext(r.Context())

	var (
		notFound *errs.NotFoundError
		invalid  *errs.ValidationError
		loadErr  *errs.LoadError
	)
	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		writeError(w, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &invalid):
		log.Warn("validation failed", "error", invalid.Message)
		writeError(w, http.StatusBadRequest, "invalid_input", invalid.Message)

	case errors.As(err, &loadErr):
		log.Error("dataset load failed", "dataset", loadErr.Dataset, "error", loadErr.Message)
		writeError(w, http.StatusBadGateway, "dataset_unavailable",
			fmt.Sprintf("The %s dataset is temporarily unavailable", loadErr.Dataset))

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Log(r.Context(), slog.LevelWarn, "request cancelled", "error", err)
		writeError(w, http.StatusServiceUnavailable, "cancelled", "The request was cancelled")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
