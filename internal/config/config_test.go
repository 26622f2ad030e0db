package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orgfake.yaml"), []byte(`
max_retrieve_count: 50
metadata_dir: ./meta
log_level: debug
`), 0o644))
	t.Setenv("ORGFAKE_FORMAT", "json")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxRetrieveCount)
	assert.Equal(t, "./meta", cfg.MetadataDir)
	assert.Equal(t, ":memory:", cfg.StorePath)
	assert.Equal(t, "json", cfg.Format)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero page size", func(c *Config) { c.MaxRetrieveCount = 0 }},
		{"empty store", func(c *Config) { c.StorePath = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.Format = "xml" }},
	}

	assert.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
