package manifest

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SupportedVersion is the manifest schema version this build accepts.
const SupportedVersion = "1.0"

// ValidationError describes a single invalid manifest field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "manifest: " + e.Field + ": " + e.Message
}

// Validate checks the manifest for structural problems. It returns the
// first error found so messages stay actionable.
func (m *Manifest) Validate() error {
	if m.Version == "" {
		return &ValidationError{Field: "version", Message: "is required"}
	}
	if m.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %q (supported: %s)", m.Version, SupportedVersion),
		}
	}

	switch m.Connection.Provider {
	case "s3", "file":
	case "":
		return &ValidationError{Field: "connection.provider", Message: "is required"}
	default:
		return &ValidationError{
			Field:   "connection.provider",
			Message: fmt.Sprintf("unknown provider %q (supported: s3, file)", m.Connection.Provider),
		}
	}

	if strings.TrimSpace(m.Connection.Container) == "" {
		return &ValidationError{Field: "connection.container", Message: "is required"}
	}

	for i, p := range m.Filter.Includes {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{
				Field:   fmt.Sprintf("filter.includes[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q", p),
			}
		}
	}
	for i, p := range m.Filter.Excludes {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{
				Field:   fmt.Sprintf("filter.excludes[%d]", i),
				Message: fmt.Sprintf("invalid glob pattern %q", p),
			}
		}
	}

	if m.Limits.MaxObjects < 0 {
		return &ValidationError{Field: "limits.max_objects", Message: "must not be negative"}
	}
	if m.Limits.RateLimit < 0 {
		return &ValidationError{Field: "limits.rate_limit", Message: "must not be negative"}
	}

	return nil
}
