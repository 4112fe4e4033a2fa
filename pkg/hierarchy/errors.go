package hierarchy

import (
	"errors"
	"fmt"

	"github.com/bucketree/bucketree/pkg/keypath"
)

// Sentinel errors for tree construction.
var (
	// ErrInvalidKey indicates a malformed input key (empty key).
	// Aliased from keypath so callers match either package.
	ErrInvalidKey = keypath.ErrInvalidKey

	// ErrDuplicateKey indicates two entries in one snapshot share an
	// identical full key. The builder rejects the snapshot outright
	// rather than silently picking one entry.
	ErrDuplicateKey = errors.New("duplicate key")
)

// BuildError wraps a tree-construction failure with the path at which it
// was detected.
type BuildError struct {
	// Path is the full flat path of the offending node or entry.
	Path string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("build tree: %v", e.Err)
	}
	return fmt.Sprintf("build tree: %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsDuplicateKey returns true if the error indicates a duplicate key in
// the input snapshot.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsInvalidKey returns true if the error indicates a malformed key.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}
