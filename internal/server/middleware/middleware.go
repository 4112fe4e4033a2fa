// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/bucketree/bucketree/internal/errors"
	"github.com/bucketree/bucketree/internal/observability"
)

// ErrorResponse is the JSON envelope written for middleware-level
// failures. It is the same shape every handler uses.
type ErrorResponse = apperrors.HTTPErrorResponse

// RequestID assigns a request ID to every request. An incoming
// X-Request-Id header is honored; otherwise one is generated. The ID is
// available via chi's request ID context key.
func RequestID(next http.Handler) http.Handler {
	return chimiddleware.RequestID(next)
}

// Recovery converts panics into a 500 response with the standard error
// envelope instead of tearing down the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.CLILogger.Error("Handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				)
				writeErrorResponse(w, apperrors.HTTPErrorDetail{
					Code:      apperrors.CodeInternal,
					Message:   fmt.Sprintf("panic: %v", rec),
					RequestID: chimiddleware.GetReqID(r.Context()),
				}, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ErrorHandler is an alias for Recovery kept for route setup symmetry.
func ErrorHandler(next http.Handler) http.Handler {
	return Recovery(next)
}

// Logger logs one line per request at debug level.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.CLILogger.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// writeErrorResponse writes the standard envelope with the given status.
func writeErrorResponse(w http.ResponseWriter, detail apperrors.HTTPErrorDetail, status int) {
	resp := ErrorResponse{Error: detail}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// A marshal failure inside the error path must not recurse into
	// another error response; log and move on.
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		observability.CLILogger.Debug("Failed to write error response", zap.Error(err))
	}
}
