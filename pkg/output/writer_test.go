package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketree/bucketree/pkg/hierarchy"
)

func TestJSONLWriterEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123", "s3")

	err := w.WriteNode(context.Background(), &NodeRecord{
		Path:      "my/share/file1.jpg",
		Name:      "file1.jpg",
		Depth:     2,
		ObjectKey: "my/share/file1.jpg",
		Size:      42,
	})
	require.NoError(t, err)

	line := strings.TrimRight(buf.String(), "\n")
	require.NotContains(t, line, "\n", "record must be a single line")

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, TypeNode, rec.Type)
	assert.Equal(t, "job-123", rec.JobID)
	assert.Equal(t, "s3", rec.Provider)
	assert.False(t, rec.TS.IsZero())

	var node NodeRecord
	require.NoError(t, json.Unmarshal(rec.Data, &node))
	assert.Equal(t, "my/share/file1.jpg", node.Path)
	assert.Equal(t, int64(42), node.Size)
}

func TestJSONLWriterOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job", "file")

	ctx := context.Background()
	require.NoError(t, w.WriteNode(ctx, &NodeRecord{Path: "a", Name: "a"}))
	require.NoError(t, w.WriteError(ctx, &ErrorRecord{Code: ErrCodeNotFound, Message: "missing"}))
	require.NoError(t, w.WriteSummary(ctx, &SummaryRecord{Container: "data", Nodes: 1}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	types := make([]string, 0, len(lines))
	for _, line := range lines {
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		types = append(types, rec.Type)
	}
	assert.Equal(t, []string{TypeNode, TypeError, TypeSummary}, types)
}

func TestJSONLWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job", "s3")
	require.NoError(t, w.Close())

	err := w.WriteNode(context.Background(), &NodeRecord{Path: "a"})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestJSONLWriterCancelledContext(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job", "s3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteNode(ctx, &NodeRecord{Path: "a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

// shortWriter writes one byte at a time to exercise the short-write loop.
type shortWriter struct {
	buf bytes.Buffer
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return s.buf.Write(p[:1])
}

func TestJSONLWriterShortWrites(t *testing.T) {
	sw := &shortWriter{}
	w := NewJSONLWriter(sw, "job", "s3")

	require.NoError(t, w.WriteNode(context.Background(), &NodeRecord{Path: "a", Name: "a"}))

	var rec Record
	require.NoError(t, json.Unmarshal(bytes.TrimRight(sw.buf.Bytes(), "\n"), &rec))
	assert.Equal(t, TypeNode, rec.Type)
}

type keyRef string

func (k keyRef) ObjectKey() string { return string(k) }

func TestForestRecords(t *testing.T) {
	forest, err := hierarchy.Build([]hierarchy.FlatEntry{
		{Key: "my/share/file1.jpg", Ref: keyRef("my/share/file1.jpg")},
		{Key: "my/share", Ref: keyRef("my/share")},
		{Key: "top.txt", Ref: keyRef("top.txt")},
	})
	require.NoError(t, err)

	records := ForestRecords(forest, func(ref hierarchy.ObjectRef) ObjectMeta {
		return ObjectMeta{Size: int64(len(ref.ObjectKey()))}
	})

	require.Len(t, records, 4)

	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"my", "my/share", "my/share/file1.jpg", "top.txt"}, paths)

	// "my" is a pure directory.
	assert.True(t, records[0].Dir)
	assert.Empty(t, records[0].ObjectKey)
	assert.Zero(t, records[0].Size)

	// "my/share" is both a directory and an object.
	assert.True(t, records[1].Dir)
	assert.Equal(t, "my/share", records[1].ObjectKey)
	assert.Equal(t, int64(len("my/share")), records[1].Size)

	// Leaves carry their depth.
	assert.Equal(t, 2, records[2].Depth)
	assert.Equal(t, 0, records[3].Depth)
}

func TestForestSummary(t *testing.T) {
	forest, err := hierarchy.Build([]hierarchy.FlatEntry{
		{Key: "a/b/c", Ref: keyRef("a/b/c")},
		{Key: "a/d", Ref: keyRef("a/d")},
	})
	require.NoError(t, err)

	nodes, objects, maxDepth := ForestSummary(forest)
	assert.Equal(t, int64(4), nodes)
	assert.Equal(t, int64(2), objects)
	assert.Equal(t, 2, maxDepth)
}
