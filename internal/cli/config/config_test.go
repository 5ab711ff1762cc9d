package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Library.Root)
	assert.Equal(t, "algorithms", cfg.Generator.Package)
	assert.True(t, cfg.Generator.Gofmt)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 100, cfg.Watch.DebounceMS)
	assert.Equal(t, "Algorithm Catalog", cfg.Docs.Title)
	assert.Equal(t, "docs", cfg.Docs.Output)
	assert.Equal(t, "127.0.0.1:8700", cfg.Serve.Addr)
	assert.Empty(t, cfg.Labels)
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
library:
  root: lib
  package: algorithms
generator:
  package: library
  gofmt: false
cache:
  size: 8
log:
  level: debug
  format: json
labels:
  plotting: Charts
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "algodoc.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "lib", cfg.Library.Root)
	assert.Equal(t, "algorithms", cfg.Library.Package)
	assert.Equal(t, "library", cfg.Generator.Package)
	assert.False(t, cfg.Generator.Gofmt)
	assert.Equal(t, 8, cfg.Cache.Size)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, map[string]string{"plotting": "Charts"}, cfg.Labels)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ALGODOC_LOG_LEVEL", "warn")
	t.Setenv("ALGODOC_LIBRARY_ROOT", "/srv/algorithms")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/srv/algorithms", cfg.Library.Root)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ALGODOC_CACHE_SIZE=3\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ALGODOC_CACHE_SIZE") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Cache.Size)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "algodoc.yml"), []byte("log:\n  format: xml\n"), 0o644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "log.format")

	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "algodoc.yaml"), []byte("{}\n"), 0o644))

	found, err := FindRoot(nested)
	require.NoError(t, err)

	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, found)
}
