// Package match filters object keys with glob patterns.
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates include and exclude glob patterns against object keys.
//
// A key passes when it matches at least one include pattern and none of
// the exclude patterns. The Matcher is safe for concurrent use after
// creation.
type Matcher struct {
	includes      []string
	excludes      []string
	prefixes      []string
	includeHidden bool
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns that keys must match (at least one).
	// Empty means match everything.
	Includes []string

	// Excludes are glob patterns that keys must not match (any).
	Excludes []string

	// IncludeHidden controls whether keys with a path segment starting
	// with '.' are matched. Default false.
	IncludeHidden bool
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps pattern-related errors with the offending pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a Matcher from the given configuration. Every pattern is
// validated up front so Match never fails later.
func New(cfg Config) (*Matcher, error) {
	for _, raw := range append(append([]string{}, cfg.Includes...), cfg.Excludes...) {
		if !doublestar.ValidatePattern(raw) {
			return nil, &PatternError{Pattern: raw, Err: ErrInvalidPattern}
		}
	}

	return &Matcher{
		includes:      append([]string{}, cfg.Includes...),
		excludes:      append([]string{}, cfg.Excludes...),
		prefixes:      DerivePrefixes(cfg.Includes),
		includeHidden: cfg.IncludeHidden,
	}, nil
}

// Match reports whether the key passes the include/exclude patterns.
// Keys are matched as-is; object storage keys are opaque strings.
func (m *Matcher) Match(key string) bool {
	if !m.includeHidden && IsHidden(key) {
		return false
	}

	if len(m.includes) > 0 {
		matched := false
		for _, inc := range m.includes {
			if matchPattern(inc, key) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, exc := range m.excludes {
		if matchPattern(exc, key) {
			return false
		}
	}

	return true
}

// Prefixes returns the deduplicated static prefixes derived from the
// include patterns. An empty string in the result means at least one
// pattern needs a full listing.
func (m *Matcher) Prefixes() []string {
	return m.prefixes
}

// matchPattern matches a key against a doublestar pattern. Patterns were
// validated at construction time.
func matchPattern(pattern, key string) bool {
	matched, err := doublestar.Match(pattern, key)
	if err != nil {
		return false
	}
	return matched
}
