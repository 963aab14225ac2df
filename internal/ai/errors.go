package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error returned by an AI collaborator API.
type APIError struct {
	// Service is the name of the collaborator (e.g., "generation", "extractor").
	Service string
	// StatusCode is the HTTP status code returned by the API.
	StatusCode int
	// Message is the error message from the API.
	Message string
	// Type is the error type classification from the API, if provided.
	Type string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: API error (status %d, type %s): %s", e.Service, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

// IsTransient returns true if the error may succeed on retry. This includes
// rate limiting (429), server errors (5xx), and network errors (StatusCode 0
// indicates no HTTP response was received).
func (e *APIError) IsTransient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// isTransientError reports whether err is worth retrying. Context
// cancellation is never retried.
func isTransientError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}
	return false
}

// errorType classifies an error for metrics labels.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusTooManyRequests {
				return "rate_limited"
			}
			if apiErr.StatusCode >= 500 {
				return "server_error"
			}
			if apiErr.StatusCode >= 400 {
				return "client_error"
			}
			return "network"
		}
		return "other"
	}
}
