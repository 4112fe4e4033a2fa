package hierarchy

import "github.com/bucketree/bucketree/pkg/keypath"

// Build folds a flat container listing into a forest of nodes.
//
// Entries are grouped by their first path segment; each group becomes one
// node, with the member whose key equals the group name (if any) becoming
// the node's object and all longer members recursing, stripped of the
// group prefix, into its children. Group order is the order of first
// appearance while scanning entries: the builder never re-sorts, so the
// listing's own order (typically lexicographic by full key) is preserved
// through every level.
//
// Build is a pure function of its input: no I/O, no shared state, safe to
// call concurrently. It returns no partial result; on ErrDuplicateKey or
// ErrInvalidKey the whole snapshot is rejected.
func Build(entries []FlatEntry) (Forest, error) {
	for _, e := range entries {
		if e.Key == "" {
			return nil, &BuildError{Err: ErrInvalidKey}
		}
	}
	return build(entries, "")
}

// build is the recursive grouping step. parent is the already-consumed
// path prefix, used only for error context. Keys at this level may be
// empty: a trailing delimiter in the source key leaves an empty remainder
// one level down, which groups under the zero-length segment exactly as
// the raw segment rules dictate.
func build(entries []FlatEntry, parent string) (Forest, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	order := make([]string, 0, len(entries))
	groups := make(map[string][]FlatEntry, len(entries))
	for _, e := range entries {
		g := keypath.FirstSegment(e.Key)
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], e)
	}

	forest := make(Forest, 0, len(order))
	for _, g := range order {
		node := &Node{Name: g}
		nodePath := childPath(parent, g)

		var rest []FlatEntry
		for _, e := range groups[g] {
			if e.Key == g {
				if node.Ref != nil {
					return nil, &BuildError{Path: nodePath, Err: ErrDuplicateKey}
				}
				node.Ref = e.Ref
				continue
			}

			rem, err := keypath.Remainder(e.Key, len(g))
			if err != nil {
				return nil, &BuildError{Path: childPath(parent, e.Key), Err: err}
			}
			rest = append(rest, FlatEntry{Key: rem, Ref: e.Ref})
		}

		children, err := build(rest, nodePath)
		if err != nil {
			return nil, err
		}
		node.Children = children

		forest = append(forest, node)
	}

	return forest, nil
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + keypath.Delimiter + name
}
