package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bucketree/bucketree/pkg/match"
	"github.com/bucketree/bucketree/pkg/provider"
)

// URI parsing errors
var (
	// ErrInvalidURI indicates the URI could not be parsed.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrUnsupportedProvider indicates the URI scheme is not supported.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingContainer indicates the URI is missing a container name.
	ErrMissingContainer = errors.New("missing container name")
)

// ObjectURI represents a parsed storage URI.
//
// Example URIs:
//   - s3://bucket/key/path.txt
//   - s3://bucket/prefix/
//   - file://container/prefix/
type ObjectURI struct {
	// Provider is the storage provider ("s3" or "file").
	Provider provider.Type

	// Container is the bucket or directory name.
	Container string

	// Key is the object key or prefix. May be empty for container root.
	Key string

	// Pattern is set if Key contained glob characters. When set, Key is
	// the static prefix before the first glob character.
	Pattern string
}

// String returns the URI in canonical form.
func (u *ObjectURI) String() string {
	path := u.Key
	if u.Pattern != "" {
		path = u.Pattern
	}
	return fmt.Sprintf("%s://%s/%s", u.Provider, u.Container, path)
}

// IsPattern returns true if the URI contains glob pattern characters.
func (u *ObjectURI) IsPattern() bool {
	return u.Pattern != ""
}

// IsPrefix returns true if the URI represents a prefix (ends with /).
func (u *ObjectURI) IsPrefix() bool {
	return strings.HasSuffix(u.Key, "/") || u.Key == ""
}

// ParseURI parses a storage URI into its components.
//
// Supported formats:
//   - s3://bucket
//   - s3://bucket/key
//   - s3://bucket/prefix/
//   - s3://bucket/prefix/**/*.parquet
//   - file://container/prefix/
func ParseURI(uri string) (*ObjectURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrInvalidURI)
	}

	// Parse manually: url.Parse treats glob characters like ? as a
	// query delimiter.
	schemeEnd := strings.Index(uri, "://")
	if schemeEnd == -1 {
		return nil, fmt.Errorf("%w: missing scheme (expected s3://... or file://...)", ErrInvalidURI)
	}

	var provType provider.Type
	switch strings.ToLower(uri[:schemeEnd]) {
	case "s3":
		provType = provider.TypeS3
	case "file":
		provType = provider.TypeFile
	default:
		return nil, fmt.Errorf("%w: %s (supported: s3, file)", ErrUnsupportedProvider, uri[:schemeEnd])
	}

	remainder := uri[schemeEnd+3:]
	if remainder == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingContainer, uri)
	}

	var container, key string
	slashIdx := strings.Index(remainder, "/")
	if slashIdx == -1 {
		container = remainder
	} else {
		container = remainder[:slashIdx]
		key = remainder[slashIdx+1:]
	}

	if container == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingContainer, uri)
	}

	result := &ObjectURI{
		Provider:  provType,
		Container: container,
	}

	if match.IsGlobPattern(key) {
		// Glob pattern: Key is the prefix for listing, Pattern the full glob.
		result.Pattern = key
		result.Key = match.DerivePrefix(key)
	} else {
		result.Key = key
	}

	return result, nil
}
