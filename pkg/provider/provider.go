// Package provider defines abstractions for object storage backends.
//
// Providers implement a small surface: container discovery, paged key
// listing, and per-object download/upload/delete. Authentication uses SDK
// default credential chains - providers should not implement custom auth
// logic.
package provider

import (
	"context"
	"time"
)

// Provider abstracts an object storage backend.
//
// Implementations should:
//   - Use SDK default credential chains where applicable
//   - Support pagination via continuation tokens
//   - Be safe for concurrent use
type Provider interface {
	// ListContainers returns every container visible to the caller.
	ListContainers(ctx context.Context) ([]Container, error)

	// List returns a page of objects in the container with the given
	// prefix. Use ContinuationToken from ListResult for subsequent pages.
	// Snapshot drains all pages when a full listing is needed.
	List(ctx context.Context, container string, opts ListOptions) (*ListResult, error)

	// Download copies the object's content to a local file.
	Download(ctx context.Context, obj *Object, destPath string) error

	// Upload stores a local file under the given key and returns the
	// handle of the stored object.
	Upload(ctx context.Context, container, key, srcPath string) (*Object, error)

	// Delete removes the object. Deleting an absent object is not an
	// error (object stores are idempotent here).
	Delete(ctx context.Context, obj *Object) error

	// Close releases any resources held by the provider.
	Close() error
}

// Container is a name-bearing handle to a top-level namespace (a bucket
// analogue).
type Container struct {
	// Name is the container name.
	Name string

	// CreatedAt is when the container was created, when the backend
	// reports it.
	CreatedAt time.Time
}

// Object is a handle to one stored object. It carries the full flat key
// plus whatever the provider needs to address the object later; the tree
// layer borrows it without inspecting anything beyond the key.
type Object struct {
	// Container is the name of the container holding the object.
	Container string

	// Key is the full flat object key.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// ObjectKey returns the object's full flat key, satisfying
// hierarchy.ObjectRef.
func (o *Object) ObjectKey() string {
	return o.Key
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	// Empty string lists all objects.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses provider default (typically 1000).
	MaxKeys int
}

// ListResult contains a page of objects from a List operation.
type ListResult struct {
	// Objects contains the object handles for this page, in the
	// backend's listing order.
	Objects []Object

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// Type identifies a storage backend.
type Type string

const (
	// TypeS3 represents AWS S3 or S3-compatible storage.
	TypeS3 Type = "s3"

	// TypeFile represents a local filesystem backend.
	TypeFile Type = "file"
)

// String returns the string representation of the provider type.
func (t Type) String() string {
	return string(t)
}
