package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserrors "github.com/rohankatakam/tslens/internal/errors"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	result := Default().Validate()
	assert.False(t, result.HasErrors(), result.Error())
}

func TestLoad_WithoutFileUsesDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "none", cfg.Storage.Type)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	home := isolateHome(t)
	path := writeConfig(t, `
workspace: ~/projects/web
output:
  format: json
  limit: 10
cache:
  ttl: 30s
watch:
  debounce: 2s
storage:
  type: bolt
  path: ~/history.db
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "projects", "web"), cfg.Workspace)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 10, cfg.Output.Limit)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "bolt", cfg.Storage.Type)
	assert.Equal(t, filepath.Join(home, "history.db"), cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolateHome(t)
	path := writeConfig(t, "output:\n  format: json\n")
	t.Setenv("TSLENS_OUTPUT_FORMAT", "yaml")
	t.Setenv("TSLENS_OUTPUT_LIMIT", "3")
	t.Setenv("TSLENS_WATCH_DEBOUNCE", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 3, cfg.Output.Limit)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoad_Errors(t *testing.T) {
	isolateHome(t)

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, tserrors.ErrConfig)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "output:\n  format: xml\nstorage:\n  type: redis\n")
		_, err := Load(path)
		require.ErrorIs(t, err, tserrors.ErrConfig)
		assert.Contains(t, err.Error(), "output.format")
		assert.Contains(t, err.Error(), "storage.type")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"negative limit", func(c *Config) { c.Output.Limit = -1 }, "output.limit"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, "watch.debounce"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"storage without path", func(c *Config) { c.Storage.Type = "sqlite"; c.Storage.Path = "" }, "storage.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			result := cfg.Validate()
			require.True(t, result.HasErrors())
			assert.Contains(t, result.Error(), tt.wantErr)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	isolateHome(t)
	cfg := Default()
	cfg.Output.Format = "yaml"
	cfg.Output.Limit = 25
	cfg.Watch.Debounce = 3 * time.Second
	cfg.Storage.Type = "sqlite"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Output, loaded.Output)
	assert.Equal(t, cfg.Watch, loaded.Watch)
	assert.Equal(t, cfg.Storage, loaded.Storage)
}
