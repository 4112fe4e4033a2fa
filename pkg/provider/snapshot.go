package provider

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/bucketree/bucketree/pkg/hierarchy"
)

// ErrSnapshotTooLarge indicates the container listing exceeded the
// configured object cap. The snapshot must fit in memory whole; callers
// narrow the prefix or raise the cap rather than consume a partial tree.
var ErrSnapshotTooLarge = errors.New("snapshot exceeds max objects")

// SnapshotOptions configures a full-container listing.
type SnapshotOptions struct {
	// Prefix restricts the snapshot to keys under this prefix.
	Prefix string

	// MaxObjects caps the total number of objects drained.
	// Zero uses DefaultMaxSnapshotObjects.
	MaxObjects int

	// RateLimit is the maximum List requests per second.
	// Zero means unlimited (the backend handles its own throttling).
	RateLimit float64
}

// DefaultMaxSnapshotObjects is the default cap on snapshot size.
const DefaultMaxSnapshotObjects = 2_000_000

// Snapshot drains every listing page for a container into the flat entry
// slice the tree builder consumes, preserving the backend's listing order
// across pages.
//
// The result is a consistent-by-convention snapshot: the backend is not
// locked, so callers treat it as a point-in-time view and rebuild from a
// fresh snapshot after any mutation.
func Snapshot(ctx context.Context, p Provider, container string, opts SnapshotOptions) ([]hierarchy.FlatEntry, error) {
	maxObjects := opts.MaxObjects
	if maxObjects <= 0 {
		maxObjects = DefaultMaxSnapshotObjects
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	var entries []hierarchy.FlatEntry
	var token string

	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		res, err := p.List(ctx, container, ListOptions{
			Prefix:            opts.Prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}

		for i := range res.Objects {
			if len(entries) >= maxObjects {
				return nil, fmt.Errorf("%w: container %q has more than %d objects", ErrSnapshotTooLarge, container, maxObjects)
			}
			obj := &res.Objects[i]
			entries = append(entries, hierarchy.FlatEntry{Key: obj.Key, Ref: obj})
		}

		if !res.IsTruncated || res.ContinuationToken == "" {
			break
		}
		token = res.ContinuationToken
	}

	return entries, nil
}
