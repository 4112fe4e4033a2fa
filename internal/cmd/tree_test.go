package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketree/bucketree/pkg/hierarchy"
	"github.com/bucketree/bucketree/pkg/match"
	"github.com/bucketree/bucketree/pkg/provider"
)

func buildTestForest(t *testing.T, keys ...string) hierarchy.Forest {
	t.Helper()

	entries := make([]hierarchy.FlatEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, hierarchy.FlatEntry{
			Key: k,
			Ref: &provider.Object{Key: k, Size: int64(len(k))},
		})
	}

	forest, err := hierarchy.Build(entries)
	require.NoError(t, err)
	return forest
}

func TestRenderTreeText(t *testing.T) {
	forest := buildTestForest(t,
		"my/share/file1.jpg",
		"my/share/file2.jpg",
		"my/share",
		"top.txt",
	)

	var buf strings.Builder
	require.NoError(t, renderTreeText(&buf, forest))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "├── my", lines[0])
	// share is both an object and a directory, so it carries the marker.
	assert.Equal(t, "│   └── share *", lines[1])
	assert.Equal(t, "│       ├── file1.jpg", lines[2])
	assert.Equal(t, "│       └── file2.jpg", lines[3])
	assert.Equal(t, "└── top.txt", lines[4])
}

func TestRenderTreeTable(t *testing.T) {
	forest := buildTestForest(t,
		"my/share/file1.jpg",
		"my/share",
	)

	var buf strings.Builder
	require.NoError(t, renderTreeTable(&buf, forest))

	out := buf.String()
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "my/share/file1.jpg")
	assert.Contains(t, out, "both")
	assert.Contains(t, out, "dir")
	assert.Contains(t, out, "object")
}

func TestNodeKind(t *testing.T) {
	forest := buildTestForest(t,
		"my/share/file1.jpg",
		"my/share",
	)

	require.Len(t, forest, 1)
	root := forest[0]
	assert.Equal(t, "dir", nodeKind(root))

	share := root.Children[0]
	assert.Equal(t, "both", nodeKind(share))
	assert.Equal(t, "object", nodeKind(share.Children[0]))
}

func TestFilterEntries(t *testing.T) {
	entries := []hierarchy.FlatEntry{
		{Key: "data/2024/a.parquet"},
		{Key: "data/2024/notes.txt"},
		{Key: "logs/app.log"},
	}

	m, err := match.New(match.Config{Includes: []string{"data/**/*.parquet"}})
	require.NoError(t, err)

	kept := filterEntries(entries, m)
	require.Len(t, kept, 1)
	assert.Equal(t, "data/2024/a.parquet", kept[0].Key)
}
