package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
version: "1.0"
connection:
  provider: s3
  container: my-data-bucket
  region: us-east-1
filter:
  includes:
    - "data/2024/**/*.parquet"
  excludes:
    - "**/_temporary/**"
limits:
  max_objects: 500000
  rate_limit: 100
`

func TestLoadFromBytesYAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "view.yaml")
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Version)
	assert.Equal(t, "s3", m.Connection.Provider)
	assert.Equal(t, "my-data-bucket", m.Connection.Container)
	assert.Equal(t, []string{"data/2024/**/*.parquet"}, m.Filter.Includes)
	assert.Equal(t, 500000, m.Limits.MaxObjects)
	assert.Equal(t, 100.0, m.Limits.RateLimit)
}

func TestLoadFromBytesJSON(t *testing.T) {
	data := []byte(`{
		"version": "1.0",
		"connection": {"provider": "file", "container": "photos", "base_dir": "/srv/data"}
	}`)

	m, err := LoadFromBytes(data, "view.json")
	require.NoError(t, err)
	assert.Equal(t, "file", m.Connection.Provider)
	assert.Equal(t, "/srv/data", m.Connection.BaseDir)
}

func TestLoadAppliesDefaults(t *testing.T) {
	data := []byte(`
version: "1.0"
connection:
  provider: s3
  container: data
`)
	m, err := LoadFromBytes(data, "view.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxObjects, m.Limits.MaxObjects)
	assert.Equal(t, 0.0, m.Limits.RateLimit)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	data := []byte(`
version: "1.0"
connection:
  provider: s3
  container: data
crawl:
  concurrency: 4
`)
	_, err := LoadFromBytes(data, "view.yaml")
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-data-bucket", m.Connection.Container)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidate(t *testing.T) {
	base := func() Manifest {
		return Manifest{
			Version:    "1.0",
			Connection: ConnectionConfig{Provider: "s3", Container: "data"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Manifest)
		field   string
		wantErr bool
	}{
		{"valid", func(m *Manifest) {}, "", false},
		{"missing version", func(m *Manifest) { m.Version = "" }, "version", true},
		{"unsupported version", func(m *Manifest) { m.Version = "2.0" }, "version", true},
		{"missing provider", func(m *Manifest) { m.Connection.Provider = "" }, "connection.provider", true},
		{"unknown provider", func(m *Manifest) { m.Connection.Provider = "gcs" }, "connection.provider", true},
		{"missing container", func(m *Manifest) { m.Connection.Container = " " }, "connection.container", true},
		{"bad include pattern", func(m *Manifest) { m.Filter.Includes = []string{"data/[oops"} }, "filter.includes[0]", true},
		{"bad exclude pattern", func(m *Manifest) { m.Filter.Excludes = []string{"data/[oops"} }, "filter.excludes[0]", true},
		{"negative max objects", func(m *Manifest) { m.Limits.MaxObjects = -1 }, "limits.max_objects", true},
		{"negative rate limit", func(m *Manifest) { m.Limits.RateLimit = -1 }, "limits.rate_limit", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(&m)
			err := m.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
