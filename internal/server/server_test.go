package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bucketree/bucketree/internal/errors"
	"github.com/bucketree/bucketree/internal/server/handlers"
	"github.com/bucketree/bucketree/pkg/provider"
)

// fakeProvider serves a fixed listing.
type fakeProvider struct {
	containers []provider.Container
	objects    map[string][]provider.Object
}

func (f *fakeProvider) ListContainers(ctx context.Context) ([]provider.Container, error) {
	return f.containers, nil
}

func (f *fakeProvider) List(ctx context.Context, container string, opts provider.ListOptions) (*provider.ListResult, error) {
	objs, ok := f.objects[container]
	if !ok {
		return nil, &provider.Error{
			Op: "List", Provider: provider.TypeFile, Container: container,
			Err: provider.ErrContainerNotFound,
		}
	}
	return &provider.ListResult{Objects: objs}, nil
}

func (f *fakeProvider) Download(ctx context.Context, obj *provider.Object, destPath string) error {
	return nil
}

func (f *fakeProvider) Upload(ctx context.Context, container, key, srcPath string) (*provider.Object, error) {
	return nil, nil
}

func (f *fakeProvider) Delete(ctx context.Context, obj *provider.Object) error { return nil }
func (f *fakeProvider) Close() error                                           { return nil }

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		containers: []provider.Container{
			{Name: "data", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		objects: map[string][]provider.Object{
			"data": {
				{Container: "data", Key: "my/share/file1.jpg", Size: 10},
				{Container: "data", Key: "my/share/file2.jpg", Size: 20},
				{Container: "data", Key: "my/share", Size: 1},
			},
			"dupes": {
				{Container: "dupes", Key: "a/b"},
				{Container: "dupes", Key: "a/b"},
			},
		},
	}
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New("127.0.0.1", 0)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
}

func TestServer_Port(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"default port", 8080},
		{"custom port", 9000},
		{"zero port", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New("127.0.0.1", tt.port)
			assert.Equal(t, tt.port, srv.Port())
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := New("127.0.0.1", 0)

	req := httptest.NewRequest(http.MethodPost, "/version", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeMethodNotAllowed, body.Error.Code)
}

func TestServer_RoutesRegistered(t *testing.T) {
	handlers.InitHealthManager("test")

	srv := New("127.0.0.1", 0)

	endpoints := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/health/live", http.StatusOK},
		{"GET", "/health/ready", http.StatusOK},
		{"GET", "/health/startup", http.StatusOK},
		{"GET", "/version", http.StatusOK},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, ep.want, rec.Code, "endpoint %s %s should return %d", ep.method, ep.path, ep.want)
		})
	}
}

func TestServer_ListContainers(t *testing.T) {
	srv := New("127.0.0.1", 0)
	srv.MountProvider(newFakeProvider())

	req := httptest.NewRequest(http.MethodGet, "/v1/containers", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []handlers.ContainerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "data", body[0].Name)
}

func TestServer_GetTree(t *testing.T) {
	srv := New("127.0.0.1", 0)
	srv.MountProvider(newFakeProvider())

	req := httptest.NewRequest(http.MethodGet, "/v1/containers/data/tree", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.TreeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, "data", body.Container)
	assert.Equal(t, int64(3), body.Objects)
	require.Len(t, body.Roots, 1)

	my := body.Roots[0]
	assert.Equal(t, "my", my.Name)
	assert.Empty(t, my.ObjectKey)
	require.Len(t, my.Children, 1)

	// "my/share" is both an object and a directory.
	share := my.Children[0]
	assert.Equal(t, "share", share.Name)
	assert.Equal(t, "my/share", share.ObjectKey)
	require.Len(t, share.Children, 2)
	assert.Equal(t, "file1.jpg", share.Children[0].Name)
	assert.Equal(t, "file2.jpg", share.Children[1].Name)
}

func TestServer_GetTreeDuplicateKey(t *testing.T) {
	srv := New("127.0.0.1", 0)
	srv.MountProvider(newFakeProvider())

	req := httptest.NewRequest(http.MethodGet, "/v1/containers/dupes/tree", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeDuplicateKey, body.Error.Code)
	assert.Equal(t, "a/b", body.Error.Details["path"])
}

func TestServer_GetTreeMissingContainer(t *testing.T) {
	srv := New("127.0.0.1", 0)
	srv.MountProvider(newFakeProvider())

	req := httptest.NewRequest(http.MethodGet, "/v1/containers/absent/tree", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
}

func TestServer_GetTreeInvalidMaxObjects(t *testing.T) {
	srv := New("127.0.0.1", 0)
	srv.MountProvider(newFakeProvider())

	req := httptest.NewRequest(http.MethodGet, "/v1/containers/data/tree?max_objects=nope", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
