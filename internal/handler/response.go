package handler

// Every error response has the same shape:
//
//	{"error": "not_found", "message": "snip not found with id 12"}
//
// Domain errors are mapped to status codes here and nowhere else.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippet-activity/internal/apperror"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID int64 `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to a status code. Errors that are not
// *apperror.AppError are storage or programming failures and are reported as
// 500 without detail; the caller logs them.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, errorType = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		status, errorType = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, errorType = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, errorType = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		status, errorType = http.StatusConflict, "conflict"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields and bodies
// over 1 MiB.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body: "+err.Error())
	}
	return nil
}
