// Package keypath splits flat object-store keys into path segments and
// joins them back.
//
// Object stores treat "/" as a conventional, non-enforced delimiter. This
// package reproduces the store's raw semantics literally: empty segments
// produced by consecutive or trailing delimiters are preserved, never
// collapsed, so that a key round-trips byte-for-byte through
// Segments/Join.
package keypath

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter is the hierarchy delimiter used in object keys.
const Delimiter = "/"

// ErrInvalidKey indicates a malformed key: empty, or an out-of-range
// prefix strip.
var ErrInvalidKey = errors.New("invalid key")

// Segments splits a key into its ordered path segments.
//
// Empty segments are preserved: Segments("a//b") returns ["a", "", "b"],
// mirroring the store's own key semantics. Returns ErrInvalidKey for an
// empty key.
func Segments(key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	return strings.Split(key, Delimiter), nil
}

// FirstSegment returns the segment before the first delimiter.
//
// A key with no delimiter is its own first segment. The empty key yields
// the empty segment; callers that must reject empty keys use Segments.
func FirstSegment(key string) string {
	first, _, _ := strings.Cut(key, Delimiter)
	return first
}

// Remainder strips a leading prefix of prefixLen bytes plus its trailing
// delimiter from key, descending one hierarchy level.
//
// The result may be empty (key "a/" with prefixLen 1), which is how a
// trailing delimiter surfaces as a zero-length segment one level down.
// Returns ErrInvalidKey if prefixLen is negative or not shorter than the
// key.
func Remainder(key string, prefixLen int) (string, error) {
	if prefixLen < 0 || prefixLen >= len(key) {
		return "", fmt.Errorf("%w: prefix length %d out of range for key %q", ErrInvalidKey, prefixLen, key)
	}
	return key[prefixLen+1:], nil
}

// Join is the inverse of Segments: Join(Segments(k)) == k for every valid k.
func Join(segments []string) string {
	return strings.Join(segments, Delimiter)
}
