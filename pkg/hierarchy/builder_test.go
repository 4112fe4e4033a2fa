package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRef is a minimal object handle for builder tests.
type testRef struct {
	key string
}

func (r *testRef) ObjectKey() string { return r.key }

func ref(key string) *testRef { return &testRef{key: key} }

func entries(keys ...string) []FlatEntry {
	out := make([]FlatEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, FlatEntry{Key: k, Ref: ref(k)})
	}
	return out
}

func TestBuild_EmptyInput(t *testing.T) {
	forest, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, forest)

	forest, err = Build([]FlatEntry{})
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestBuild_SingleTopLevelLeaf(t *testing.T) {
	o := ref("readme.txt")
	forest, err := Build([]FlatEntry{{Key: "readme.txt", Ref: o}})
	require.NoError(t, err)

	require.Len(t, forest, 1)
	assert.Equal(t, "readme.txt", forest[0].Name)
	assert.Same(t, o, forest[0].Ref)
	assert.Empty(t, forest[0].Children)
	assert.True(t, forest[0].HasObject())
	assert.False(t, forest[0].IsDir())
}

func TestBuild_NestedScenario(t *testing.T) {
	o1 := ref("my/share/file1.jpg")
	o2 := ref("my/share/file2.jpg")
	o3 := ref("my/share/private/file.jpg")

	forest, err := Build([]FlatEntry{
		{Key: "my/share/file1.jpg", Ref: o1},
		{Key: "my/share/file2.jpg", Ref: o2},
		{Key: "my/share/private/file.jpg", Ref: o3},
	})
	require.NoError(t, err)

	require.Len(t, forest, 1)
	my := forest[0]
	assert.Equal(t, "my", my.Name)
	assert.Nil(t, my.Ref)

	require.Len(t, my.Children, 1)
	share := my.Children[0]
	assert.Equal(t, "share", share.Name)
	assert.Nil(t, share.Ref)

	require.Len(t, share.Children, 3)
	assert.Equal(t, "file1.jpg", share.Children[0].Name)
	assert.Same(t, o1, share.Children[0].Ref)
	assert.Empty(t, share.Children[0].Children)

	assert.Equal(t, "file2.jpg", share.Children[1].Name)
	assert.Same(t, o2, share.Children[1].Ref)

	private := share.Children[2]
	assert.Equal(t, "private", private.Name)
	assert.Nil(t, private.Ref)
	require.Len(t, private.Children, 1)
	assert.Equal(t, "file.jpg", private.Children[0].Name)
	assert.Same(t, o3, private.Children[0].Ref)
}

func TestBuild_ObjectAndDirectoryCoexist(t *testing.T) {
	o1 := ref("share")
	o2 := ref("share/file.jpg")

	forest, err := Build([]FlatEntry{
		{Key: "share", Ref: o1},
		{Key: "share/file.jpg", Ref: o2},
	})
	require.NoError(t, err)

	require.Len(t, forest, 1)
	share := forest[0]
	assert.Equal(t, "share", share.Name)
	assert.Same(t, o1, share.Ref)
	assert.True(t, share.HasObject())
	assert.True(t, share.IsDir())

	require.Len(t, share.Children, 1)
	assert.Equal(t, "file.jpg", share.Children[0].Name)
	assert.Same(t, o2, share.Children[0].Ref)
}

func TestBuild_DuplicateKeyRejected(t *testing.T) {
	_, err := Build([]FlatEntry{
		{Key: "a/b", Ref: ref("a/b")},
		{Key: "a/b", Ref: ref("a/b")},
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "a/b", berr.Path)
}

func TestBuild_DuplicateTopLevelLeaf(t *testing.T) {
	_, err := Build(entries("x", "x"))
	assert.True(t, IsDuplicateKey(err))
}

func TestBuild_EmptyKeyRejected(t *testing.T) {
	_, err := Build([]FlatEntry{
		{Key: "ok", Ref: ref("ok")},
		{Key: "", Ref: nil},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidKey(err))
}

func TestBuild_PreservesInputOrder(t *testing.T) {
	// Deliberately non-lexicographic: grouping must not re-sort.
	forest, err := Build(entries("zebra/z", "apple/a", "zebra/a", "mango"))
	require.NoError(t, err)

	require.Len(t, forest, 3)
	assert.Equal(t, "zebra", forest[0].Name)
	assert.Equal(t, "apple", forest[1].Name)
	assert.Equal(t, "mango", forest[2].Name)

	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "z", forest[0].Children[0].Name)
	assert.Equal(t, "a", forest[0].Children[1].Name)
}

func TestBuild_Deterministic(t *testing.T) {
	input := entries("b/x", "a/y", "b/y", "c", "a/z/w")

	first, err := Build(input)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Build(input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_TrailingDelimiter(t *testing.T) {
	// "share/" is a blob whose key ends in the delimiter, a real (if odd)
	// object-store case. It surfaces as a zero-length-name child holding
	// the object.
	o := ref("share/")
	forest, err := Build([]FlatEntry{{Key: "share/", Ref: o}})
	require.NoError(t, err)

	require.Len(t, forest, 1)
	share := forest[0]
	assert.Equal(t, "share", share.Name)
	assert.Nil(t, share.Ref)

	require.Len(t, share.Children, 1)
	empty := share.Children[0]
	assert.Equal(t, "", empty.Name)
	assert.Same(t, o, empty.Ref)
	assert.Equal(t, "share/", PathOf([]string{"share"}, empty))
}

func TestBuild_ConsecutiveDelimiters(t *testing.T) {
	o := ref("a//b")
	forest, err := Build([]FlatEntry{{Key: "a//b", Ref: o}})
	require.NoError(t, err)

	require.Len(t, forest, 1)
	a := forest[0]
	assert.Equal(t, "a", a.Name)

	require.Len(t, a.Children, 1)
	empty := a.Children[0]
	assert.Equal(t, "", empty.Name)
	assert.Nil(t, empty.Ref)

	require.Len(t, empty.Children, 1)
	b := empty.Children[0]
	assert.Equal(t, "b", b.Name)
	assert.Same(t, o, b.Ref)
	assert.Equal(t, "a//b", PathOf([]string{"a", ""}, b))
}

func TestBuild_UniqueChildNames(t *testing.T) {
	forest, err := Build(entries("d/a", "d/b", "d/a/x", "e"))
	require.NoError(t, err)

	err = forest.Walk(func(ancestors []string, n *Node) error {
		seen := map[string]bool{}
		for _, c := range n.Children {
			assert.False(t, seen[c.Name], "duplicate child name %q under %q", c.Name, PathOf(ancestors, n))
			seen[c.Name] = true
		}
		return nil
	})
	require.NoError(t, err)
}

// Completeness and no-fabrication: every input entry is reachable at
// exactly one node whose resolved path equals its key, and no node claims
// an object that was never listed.
func TestBuild_CompletenessAndNoFabrication(t *testing.T) {
	keys := []string{
		"my/share/file1.jpg",
		"my/share/file2.jpg",
		"my/share/private/file.jpg",
		"my/share", // object that is also a directory
		"readme.txt",
		"logs/2024//raw.bin", // consecutive delimiter oddity
	}
	input := entries(keys...)

	forest, err := Build(input)
	require.NoError(t, err)

	found := map[string]int{}
	err = forest.Walk(func(ancestors []string, n *Node) error {
		if !n.HasObject() {
			return nil
		}
		path := PathOf(ancestors, n)
		assert.Equal(t, path, n.Ref.ObjectKey(), "node path must match its object's key")
		found[path]++
		return nil
	})
	require.NoError(t, err)

	require.Len(t, found, len(keys))
	for _, k := range keys {
		assert.Equal(t, 1, found[k], "key %q must appear exactly once", k)
	}
}
