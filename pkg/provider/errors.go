package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrContainerNotFound indicates the container does not exist.
	ErrContainerNotFound = errors.New("container not found")

	// ErrAccessDenied indicates insufficient permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnavailable indicates the backend service is unavailable.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrThrottled indicates the request was rate limited by the backend.
	ErrThrottled = errors.New("request throttled")
)

// Error wraps provider-specific failures with operation context.
type Error struct {
	// Op is the operation that failed (e.g., "List", "Upload").
	Op string

	// Provider is the backend type (e.g., "s3").
	Provider Type

	// Container is the container name, if applicable.
	Container string

	// Key is the object key, if applicable.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s/%s: %v", e.Provider, e.Op, e.Container, e.Key, e.Err)
	}
	if e.Container != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Op, e.Container, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates an object was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsContainerNotFound returns true if the error indicates the container
// does not exist.
func IsContainerNotFound(err error) bool {
	return errors.Is(err, ErrContainerNotFound)
}

// IsAccessDenied returns true if the error indicates insufficient permissions.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsThrottled returns true if the error indicates the request was rate limited.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
