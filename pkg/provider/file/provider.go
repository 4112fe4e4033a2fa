// Package file implements the provider interface on the local filesystem.
//
// Containers are directories directly under BaseDir; keys are slash
// paths beneath a container. This provider backs tests and local
// development where no object store is reachable.
package file

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bucketree/bucketree/pkg/provider"
)

// Provider implements provider.Provider for local filesystem paths.
type Provider struct {
	baseDir string
}

// Ensure Provider implements the interface.
var _ provider.Provider = (*Provider)(nil)

// Config configures a file provider.
type Config struct {
	// BaseDir is the directory whose immediate subdirectories act as
	// containers.
	BaseDir string

	// MaxKeys is the page size for List operations. Zero uses 1000.
	MaxKeys int
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	return nil
}

// New creates a file provider rooted at the configured base dir.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Provider{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

// Close releases resources; the file provider holds none.
func (p *Provider) Close() error { return nil }

// ListContainers returns the immediate subdirectories of the base dir.
func (p *Provider) ListContainers(ctx context.Context) ([]provider.Container, error) {
	_ = ctx
	dirents, err := os.ReadDir(p.baseDir)
	if err != nil {
		return nil, p.wrapError("ListContainers", "", "", err)
	}

	var containers []provider.Container
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		containers = append(containers, provider.Container{
			Name:      d.Name(),
			CreatedAt: info.ModTime(),
		})
	}
	return containers, nil
}

// List returns a lexicographically ordered page of keys in the container.
func (p *Provider) List(ctx context.Context, container string, opts provider.ListOptions) (*provider.ListResult, error) {
	_ = ctx
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	keys, err := p.collectKeys(container, strings.TrimPrefix(opts.Prefix, "/"))
	if err != nil {
		return nil, p.wrapError("List", container, opts.Prefix, err)
	}
	sort.Strings(keys)

	start := 0
	if opts.ContinuationToken != "" {
		// Start strictly after the last returned key.
		idx := sort.SearchStrings(keys, opts.ContinuationToken)
		for idx < len(keys) && keys[idx] <= opts.ContinuationToken {
			idx++
		}
		start = idx
	}

	end := start + maxKeys
	if end > len(keys) {
		end = len(keys)
	}

	objects := make([]provider.Object, 0, end-start)
	for _, k := range keys[start:end] {
		full, err := p.fullPath(container, k)
		if err != nil {
			continue
		}
		st, err := os.Stat(full)
		if err != nil || st.IsDir() {
			continue
		}
		objects = append(objects, provider.Object{
			Container:    container,
			Key:          k,
			Size:         st.Size(),
			LastModified: st.ModTime(),
		})
	}

	res := &provider.ListResult{Objects: objects}
	if end < len(keys) {
		res.IsTruncated = true
		res.ContinuationToken = keys[end-1]
	}
	return res, nil
}

// Download copies the object's content to a local file.
func (p *Provider) Download(ctx context.Context, obj *provider.Object, destPath string) error {
	_ = ctx
	full, err := p.fullPath(obj.Container, obj.Key)
	if err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}

	src, err := os.Open(full)
	if err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return p.wrapError("Download", obj.Container, obj.Key, err)
	}
	return dst.Close()
}

// Upload stores a local file under the given key. The write goes through
// a temp file and rename so a partial copy never becomes visible.
func (p *Provider) Upload(ctx context.Context, container, key, srcPath string) (*provider.Object, error) {
	_ = ctx
	full, err := p.fullPath(container, key)
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "bucketree-put-*")
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}

	if err := os.Rename(tmpName, full); err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}

	st, err := os.Stat(full)
	if err != nil {
		return nil, p.wrapError("Upload", container, key, err)
	}

	return &provider.Object{
		Container:    container,
		Key:          key,
		Size:         st.Size(),
		LastModified: st.ModTime(),
	}, nil
}

// Delete removes the object. Absent objects are not an error.
func (p *Provider) Delete(ctx context.Context, obj *provider.Object) error {
	_ = ctx
	full, err := p.fullPath(obj.Container, obj.Key)
	if err != nil {
		return p.wrapError("Delete", obj.Container, obj.Key, err)
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return p.wrapError("Delete", obj.Container, obj.Key, err)
	}
	return nil
}

// fullPath resolves a container/key pair under the base dir, rejecting
// traversal outside it.
func (p *Provider) fullPath(container, key string) (string, error) {
	if container == "" || strings.ContainsAny(container, "/\\") {
		return "", fmt.Errorf("invalid container name %q", container)
	}

	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	clean := strings.TrimPrefix(filepath.Clean("/"+key), "/")
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path")
	}
	return filepath.Join(p.baseDir, container, filepath.FromSlash(clean)), nil
}

// collectKeys walks one container and returns every file as a slash key.
func (p *Provider) collectKeys(container, prefix string) ([]string, error) {
	containerRoot := filepath.Join(p.baseDir, container)
	if _, err := os.Stat(containerRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, provider.ErrContainerNotFound
		}
		return nil, err
	}

	root, err := p.fullPath(container, prefix)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var keys []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(containerRoot, path)
		if err != nil {
			return nil
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	return keys, nil
}

// wrapError normalizes common filesystem errors to provider sentinels.
func (p *Provider) wrapError(op, container, key string, err error) error {
	wrapped := &provider.Error{Op: op, Provider: provider.TypeFile, Container: container, Key: key, Err: err}
	if err == nil {
		wrapped.Err = fmt.Errorf("unknown error")
		return wrapped
	}
	if os.IsNotExist(err) {
		wrapped.Err = provider.ErrNotFound
	}
	if os.IsPermission(err) {
		wrapped.Err = provider.ErrAccessDenied
	}
	return wrapped
}
