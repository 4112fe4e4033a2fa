// Package output provides JSONL output for tree results.
//
// Output is structured as typed record envelopes containing tree nodes,
// errors, and summaries. Each line is a self-contained JSON object that
// can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: bucketree.<type>.v<version>
const (
	// TypeNode identifies tree node records.
	TypeNode = "bucketree.node.v1"

	// TypeError identifies error records.
	TypeError = "bucketree.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "bucketree.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field. The type field determines how to
// interpret the Data payload.
type Record struct {
	// Type identifies the record type (e.g., "bucketree.node.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this run.
	JobID string `json:"job_id"`

	// Provider identifies the storage provider (e.g., "s3", "file").
	Provider string `json:"provider"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// NodeRecord is the data payload for a single tree node.
//
// Nodes are emitted in depth-first order, parents before children, so a
// consumer can rebuild the hierarchy from the stream.
type NodeRecord struct {
	// Path is the full slash-joined path of the node.
	Path string `json:"path"`

	// Name is the node's own path segment.
	Name string `json:"name"`

	// Depth is the number of ancestors above the node. Roots have depth 0.
	Depth int `json:"depth"`

	// Dir reports whether the node has children.
	Dir bool `json:"dir"`

	// ObjectKey is the storage key when the node carries an object.
	// A node can be both a directory and an object.
	ObjectKey string `json:"object_key,omitempty"`

	// Size is the object size in bytes, when known.
	Size int64 `json:"size,omitempty"`

	// ETag is the entity tag of the object, when known.
	ETag string `json:"etag,omitempty"`

	// LastModified is when the object was last modified, when known.
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// ErrorRecord is the data payload for errors.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Key is the object key related to this error, if applicable.
	Key string `json:"key,omitempty"`

	// Details contains additional error context.
	Details any `json:"details,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeAccessDenied indicates permission failure.
	ErrCodeAccessDenied = "ACCESS_DENIED"

	// ErrCodeNotFound indicates the object or container was not found.
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeDuplicateKey indicates the listing contained the same key twice.
	ErrCodeDuplicateKey = "DUPLICATE_KEY"

	// ErrCodeInvalidKey indicates a key that cannot be placed in the tree.
	ErrCodeInvalidKey = "INVALID_KEY"

	// ErrCodeThrottled indicates rate limiting.
	ErrCodeThrottled = "THROTTLED"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// SummaryRecord is the data payload for final summaries.
//
// A summary record is emitted once after all node records.
type SummaryRecord struct {
	// Container is the container the tree was built from.
	Container string `json:"container"`

	// Objects is the number of objects in the snapshot.
	Objects int64 `json:"objects"`

	// Nodes is the total number of nodes in the tree.
	Nodes int64 `json:"nodes"`

	// Roots is the number of top-level nodes.
	Roots int64 `json:"roots"`

	// MaxDepth is the deepest node level observed.
	MaxDepth int `json:"max_depth"`

	// BytesTotal is the cumulative size of all objects in bytes.
	BytesTotal int64 `json:"bytes_total"`

	// Duration is the total run duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
