package match

import (
	"sort"
	"strings"
)

// glob metacharacters recognized by doublestar.
const metaChars = "*?[{"

// DerivePrefix extracts the longest static prefix from a glob pattern.
//
// The prefix is the portion before the first glob metacharacter,
// truncated to the last complete path segment. It can be pushed down
// into a listing call to narrow the scan.
//
// Examples:
//
//	"data/2024/**/*.parquet" → "data/2024/"
//	"*.json"                 → ""
//	"logs/app-{a,b}/*.log"   → "logs/"
//	"exact/path/file.txt"    → "exact/path/file.txt"
func DerivePrefix(pattern string) string {
	if pattern == "" {
		return ""
	}

	metaIdx := strings.IndexAny(pattern, metaChars)
	if metaIdx == -1 {
		// Exact key, usable as-is.
		return pattern
	}
	if metaIdx == 0 {
		return ""
	}

	prefix := pattern[:metaIdx]

	// Truncate to last complete segment: "data/2024-" becomes "data/".
	lastSlash := strings.LastIndex(prefix, "/")
	if lastSlash >= 0 {
		return prefix[:lastSlash+1]
	}
	return ""
}

// DerivePrefixes derives a prefix per pattern, drops prefixes subsumed by
// shorter ones, and sorts the result. An empty pattern list yields nil.
func DerivePrefixes(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}

	prefixes := make([]string, 0, len(patterns))
	for _, p := range patterns {
		prefixes = append(prefixes, DerivePrefix(p))
	}
	return deduplicatePrefixes(prefixes)
}

// deduplicatePrefixes removes prefixes covered by shorter ones. An empty
// prefix means a full listing and subsumes everything.
func deduplicatePrefixes(prefixes []string) []string {
	for _, p := range prefixes {
		if p == "" {
			return []string{""}
		}
	}

	sorted := make([]string, len(prefixes))
	copy(sorted, prefixes)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i]) < len(sorted[j])
	})

	result := make([]string, 0, len(sorted))
	for _, candidate := range sorted {
		subsumed := false
		for _, existing := range result {
			if strings.HasPrefix(candidate, existing) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			result = append(result, candidate)
		}
	}

	sort.Strings(result)
	return result
}

// IsGlobPattern reports whether the pattern contains glob metacharacters.
func IsGlobPattern(pattern string) bool {
	return strings.IndexAny(pattern, metaChars) != -1
}

// IsHidden reports whether any path segment of the key starts with '.'.
func IsHidden(key string) bool {
	for _, seg := range strings.Split(key, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
