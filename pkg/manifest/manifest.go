// Package manifest provides loading and validation of view manifests.
//
// A view manifest is a YAML or JSON file that configures a tree view of
// a container: provider connection, key filtering, and snapshot limits.
// Loading a manifest validates it and fills defaults, so a command can
// run a whole view from a single file.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	connection:
//	  provider: s3
//	  container: my-data-bucket
//	  region: us-east-1
//	filter:
//	  includes:
//	    - "data/2024/**/*.parquet"
//	  excludes:
//	    - "**/_temporary/**"
//	limits:
//	  max_objects: 500000
//	  rate_limit: 100
package manifest

// Manifest represents a validated view manifest.
//
// Required fields are Version and Connection. Filter and Limits are
// optional with sensible defaults.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Connection configures the storage provider.
	Connection ConnectionConfig `json:"connection" yaml:"connection"`

	// Filter configures key filtering by glob patterns (optional).
	Filter FilterConfig `json:"filter,omitempty" yaml:"filter,omitempty"`

	// Limits bounds the snapshot (optional).
	Limits LimitsConfig `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// ConnectionConfig configures the storage provider connection.
type ConnectionConfig struct {
	// Provider is the storage provider type: "s3" or "file".
	Provider string `json:"provider" yaml:"provider"`

	// Container is the bucket or directory name to view.
	Container string `json:"container" yaml:"container"`

	// Region is the AWS region (e.g., "us-east-1"). Optional, S3 only.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint is a custom endpoint URL for S3-compatible storage. Optional.
	// Example: "https://s3.wasabisys.com"
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Profile is the AWS credential profile name. Optional, S3 only.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// BaseDir is the directory holding containers. File provider only.
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
}

// FilterConfig configures key filtering by glob patterns.
type FilterConfig struct {
	// Includes is a list of glob patterns for keys to include.
	// Empty means include everything.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Excludes is a list of glob patterns for keys to exclude. Optional.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`

	// IncludeHidden includes hidden keys (segments starting with .).
	// Default: false.
	IncludeHidden bool `json:"include_hidden,omitempty" yaml:"include_hidden,omitempty"`
}

// LimitsConfig bounds the snapshot a view may take.
type LimitsConfig struct {
	// MaxObjects caps the number of keys in the snapshot.
	// Zero uses the default cap.
	MaxObjects int `json:"max_objects,omitempty" yaml:"max_objects,omitempty"`

	// RateLimit is the maximum list requests per second (0 = unlimited).
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"

	// DefaultMaxObjects is the default snapshot cap.
	DefaultMaxObjects = 2_000_000
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest so
// callers never see zero values for defaulted fields.
func (m *Manifest) ApplyDefaults() {
	if m.Limits.MaxObjects == 0 {
		m.Limits.MaxObjects = DefaultMaxObjects
	}
	// RateLimit: 0 is a valid value (unlimited), so no default needed
}
