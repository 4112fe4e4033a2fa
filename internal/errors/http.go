// Package errors provides the HTTP error envelope shared by all API
// endpoints, plus helpers mapping provider and tree errors onto it.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bucketree/bucketree/pkg/hierarchy"
	"github.com/bucketree/bucketree/pkg/provider"
)

// HTTPErrorResponse is the JSON error envelope returned by every API
// endpoint. Clients can rely on this shape for all non-2xx responses.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// HTTPErrorDetail carries the machine-readable error fields.
type HTTPErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Error codes used across the API surface.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeDuplicateKey       = "DUPLICATE_KEY"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// WriteError writes the standard error envelope with the given status.
// The request ID is taken from the chi middleware context when present.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	resp := HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetReqID(r.Context()),
			Details:   details,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// RespondWithError maps a domain error to an HTTP status and envelope.
//
// Provider sentinels and tree build errors get specific codes; anything
// unrecognized becomes a 500 INTERNAL_ERROR without leaking internals.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var details map[string]any

	var buildErr *hierarchy.BuildError
	if errors.As(err, &buildErr) {
		details = map[string]any{"path": buildErr.Path}
	}

	switch {
	case hierarchy.IsDuplicateKey(err):
		WriteError(w, r, http.StatusConflict, CodeDuplicateKey, "listing contains a duplicate key", details)
	case hierarchy.IsInvalidKey(err):
		WriteError(w, r, http.StatusBadGateway, CodeInvalidArgument, "listing contains an invalid key", details)
	case provider.IsNotFound(err), provider.IsContainerNotFound(err):
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "resource not found", nil)
	case provider.IsAccessDenied(err):
		WriteError(w, r, http.StatusForbidden, CodeAccessDenied, "access denied by storage provider", nil)
	case provider.IsThrottled(err), errors.Is(err, provider.ErrUnavailable):
		WriteError(w, r, http.StatusBadGateway, CodeServiceUnavailable, "storage provider unavailable", nil)
	case errors.Is(err, provider.ErrSnapshotTooLarge):
		WriteError(w, r, http.StatusRequestEntityTooLarge, CodeInvalidArgument, "container exceeds the snapshot limit", nil)
	default:
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}
