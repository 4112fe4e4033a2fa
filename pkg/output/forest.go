package output

import (
	"time"

	"github.com/bucketree/bucketree/pkg/hierarchy"
)

// ObjectMeta carries optional object metadata for node records.
type ObjectMeta struct {
	Size         int64
	ETag         string
	LastModified *time.Time
}

// MetaFunc resolves metadata for an object reference. A nil MetaFunc
// leaves the metadata fields empty.
type MetaFunc func(ref hierarchy.ObjectRef) ObjectMeta

// ForestRecords flattens a forest into node records in depth-first
// order, parents before children, siblings in forest order.
func ForestRecords(forest hierarchy.Forest, meta MetaFunc) []NodeRecord {
	var records []NodeRecord
	_ = forest.Walk(func(ancestors []string, node *hierarchy.Node) error {
		rec := NodeRecord{
			Path:  hierarchy.PathOf(ancestors, node),
			Name:  node.Name,
			Depth: len(ancestors),
			Dir:   node.IsDir(),
		}
		if node.HasObject() {
			rec.ObjectKey = node.Ref.ObjectKey()
			if meta != nil {
				m := meta(node.Ref)
				rec.Size = m.Size
				rec.ETag = m.ETag
				rec.LastModified = m.LastModified
			}
		}
		records = append(records, rec)
		return nil
	})
	return records
}

// ForestSummary computes the aggregate fields of a summary record from
// a forest. Byte totals need object metadata and stay with the caller.
func ForestSummary(forest hierarchy.Forest) (nodes, objects int64, maxDepth int) {
	_ = forest.Walk(func(ancestors []string, node *hierarchy.Node) error {
		nodes++
		if node.HasObject() {
			objects++
		}
		if d := len(ancestors); d > maxDepth {
			maxDepth = d
		}
		return nil
	})
	return nodes, objects, maxDepth
}
