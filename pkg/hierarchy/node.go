// Package hierarchy reconstructs a directory tree from the flat,
// delimiter-separated key space of an object store.
//
// Object stores hold an unordered flat list of keys ("my/share/file1.jpg").
// Build folds one such listing into a forest of nodes suitable for display
// and directory-scoped operations. A node can be a directory (it has
// children), a file (it carries an object reference), or both at once: a
// blob stored at a path that is also a prefix of other keys is a
// first-class case, not an error.
//
// The forest is a fresh immutable value on every Build call. Callers
// rebuild from a new snapshot after any mutation rather than patching the
// tree in place.
package hierarchy

import "github.com/bucketree/bucketree/pkg/keypath"

// ObjectRef is a borrowed handle to a stored object, owned by the storage
// layer. The tree never inspects it beyond the key; it exists so callers
// can hand a selected node back to storage for download or delete.
type ObjectRef interface {
	// ObjectKey returns the object's full flat key.
	ObjectKey() string
}

// FlatEntry pairs one flat key with its object handle, as returned by a
// container listing.
type FlatEntry struct {
	Key string
	Ref ObjectRef
}

// Node is one element of the reconstructed hierarchy.
type Node struct {
	// Name is the path segment this node represents, without delimiters.
	// It may be zero-length when the source key contains consecutive or
	// trailing delimiters; that oddity is reproduced, not repaired.
	Name string

	// Ref is set iff some entry's full key equals this node's full path.
	Ref ObjectRef

	// Children are ordered by first appearance in the input listing.
	// Names are unique within one parent.
	Children []*Node
}

// HasObject reports whether the node is selectable as a stored object.
func (n *Node) HasObject() bool {
	return n.Ref != nil
}

// IsDir reports whether the node is a directory in the display sense.
// A node can be both a directory and an object.
func (n *Node) IsDir() bool {
	return len(n.Children) > 0
}

// Forest is the ordered sequence of top-level nodes built from one
// container listing, one node per distinct first path segment.
type Forest []*Node

// PathOf resolves a node back to its flat key by joining the ancestor
// names recorded during traversal with the node's own name.
//
// For any node carrying an object, PathOf equals the original entry's
// key; for a directory node it is the prefix (without trailing delimiter)
// under which new objects would be uploaded.
func PathOf(ancestors []string, node *Node) string {
	segments := make([]string, 0, len(ancestors)+1)
	segments = append(segments, ancestors...)
	segments = append(segments, node.Name)
	return keypath.Join(segments)
}

// Walk visits every node depth-first in forest order, handing fn the
// ancestor name chain for the node being visited. Traversal stops at the
// first error, which is returned.
func (f Forest) Walk(fn func(ancestors []string, node *Node) error) error {
	return walk(f, nil, fn)
}

func walk(nodes []*Node, ancestors []string, fn func([]string, *Node) error) error {
	for _, n := range nodes {
		if err := fn(ancestors, n); err != nil {
			return err
		}
		if len(n.Children) > 0 {
			// Fresh slice per level so callbacks may retain the chain.
			next := make([]string, len(ancestors)+1)
			copy(next, ancestors)
			next[len(ancestors)] = n.Name
			if err := walk(n.Children, next, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
