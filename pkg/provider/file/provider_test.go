package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketree/bucketree/pkg/provider"
)

func newTestProvider(t *testing.T) (*Provider, string) {
	t.Helper()
	base := t.TempDir()
	p, err := New(Config{BaseDir: base})
	require.NoError(t, err)
	return p, base
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestListContainers(t *testing.T) {
	p, base := newTestProvider(t)

	require.NoError(t, os.MkdirAll(filepath.Join(base, "photos"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "docs"), 0o755))
	writeFile(t, filepath.Join(base, "stray.txt"), "not a container")

	containers, err := p.ListContainers(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(containers))
	for _, c := range containers {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"photos", "docs"}, names)
}

func TestListReturnsKeysInOrder(t *testing.T) {
	p, base := newTestProvider(t)

	writeFile(t, filepath.Join(base, "data", "my", "share", "file1.jpg"), "1")
	writeFile(t, filepath.Join(base, "data", "my", "share", "file2.jpg"), "2")
	writeFile(t, filepath.Join(base, "data", "top.txt"), "t")

	res, err := p.List(context.Background(), "data", provider.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Objects, 3)

	keys := make([]string, 0, len(res.Objects))
	for _, o := range res.Objects {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"my/share/file1.jpg", "my/share/file2.jpg", "top.txt"}, keys)
	assert.False(t, res.IsTruncated)
}

func TestListPagination(t *testing.T) {
	p, base := newTestProvider(t)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeFile(t, filepath.Join(base, "data", name), name)
	}

	var all []string
	token := ""
	for {
		res, err := p.List(context.Background(), "data", provider.ListOptions{
			MaxKeys:           2,
			ContinuationToken: token,
		})
		require.NoError(t, err)
		for _, o := range res.Objects {
			all = append(all, o.Key)
		}
		if !res.IsTruncated {
			break
		}
		token = res.ContinuationToken
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, all)
}

func TestListWithPrefix(t *testing.T) {
	p, base := newTestProvider(t)

	writeFile(t, filepath.Join(base, "data", "logs", "one.log"), "1")
	writeFile(t, filepath.Join(base, "data", "other", "two.txt"), "2")

	res, err := p.List(context.Background(), "data", provider.ListOptions{Prefix: "logs"})
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, "logs/one.log", res.Objects[0].Key)
}

func TestListMissingContainer(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := p.List(context.Background(), "nope", provider.ListOptions{})
	assert.True(t, provider.IsContainerNotFound(err))
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	p, base := newTestProvider(t)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "data"), 0o755))

	srcPath := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("hello"), 0o644))

	obj, err := p.Upload(context.Background(), "data", "my/share/file1.jpg", srcPath)
	require.NoError(t, err)
	assert.Equal(t, "my/share/file1.jpg", obj.Key)
	assert.Equal(t, int64(5), obj.Size)

	destPath := filepath.Join(t.TempDir(), "out", "file1.jpg")
	require.NoError(t, p.Download(context.Background(), obj, destPath))

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestDownloadMissingObject(t *testing.T) {
	p, base := newTestProvider(t)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "data"), 0o755))

	obj := &provider.Object{Container: "data", Key: "missing.txt"}
	err := p.Download(context.Background(), obj, filepath.Join(t.TempDir(), "out.txt"))
	assert.True(t, provider.IsNotFound(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	p, base := newTestProvider(t)
	writeFile(t, filepath.Join(base, "data", "gone.txt"), "x")

	obj := &provider.Object{Container: "data", Key: "gone.txt"}
	require.NoError(t, p.Delete(context.Background(), obj))
	require.NoError(t, p.Delete(context.Background(), obj))

	_, err := os.Stat(filepath.Join(base, "data", "gone.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestFullPathRejectsTraversal(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := p.fullPath("data", "../../etc/passwd")
	assert.Error(t, err)

	_, err = p.fullPath("../data", "ok.txt")
	assert.Error(t, err)
}
