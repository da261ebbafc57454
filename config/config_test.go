package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file gives defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "none.toml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides some settings", func(t *testing.T) {
		path := filepath.Join(dir, "partial.toml")
		require.NoError(t, os.WriteFile(path, []byte("[nodes]\nids = \"uuid\"\n\n[view]\nascii = true\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "uuid", cfg.Nodes.IDs)
		assert.True(t, cfg.View.ASCII)
		assert.Equal(t, 120, cfg.Nodes.Width)
		assert.Equal(t, 8, cfg.View.CellWidth)
	})

	t.Run("syntax error", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[nodes\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Log.File = "/tmp/branch.log"
	want.Watch.Enabled = false

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown id strategy", func(c *Config) { c.Nodes.IDs = "serial" }},
		{"zero node width", func(c *Config) { c.Nodes.Width = 0 }},
		{"zero cell height", func(c *Config) { c.View.CellHeight = 0 }},
		{"narrow notifications", func(c *Config) { c.View.NotificationWidth = 4 }},
		{"zero font size", func(c *Config) { c.Export.FontSize = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	assert.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvIDs, "")
	os.Unsetenv(EnvLogFile)

	t.Run("defaults without files", func(t *testing.T) {
		cfg, err := Resolve("", filepath.Join(dir, "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("environment file overrides", func(t *testing.T) {
		conf := filepath.Join(dir, "custom.toml")
		require.NoError(t, os.WriteFile(conf, []byte("[export]\nfont_size = 14.0\n"), 0o644))
		env := filepath.Join(dir, "test.env")
		require.NoError(t, os.WriteFile(env, []byte("BRANCH_CONFIG="+conf+"\nBRANCH_IDS=uuid\nBRANCH_LOG_FILE=/tmp/b.log\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv(EnvLogFile) })

		// godotenv keeps variables that are already set, even when empty.
		t.Setenv(EnvConfig, "")
		os.Unsetenv(EnvConfig)
		os.Unsetenv(EnvIDs)

		cfg, err := Resolve("", env)
		require.NoError(t, err)
		assert.Equal(t, 14.0, cfg.Export.FontSize)
		assert.Equal(t, "uuid", cfg.Nodes.IDs)
		assert.Equal(t, "/tmp/b.log", cfg.Log.File)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		conf := filepath.Join(dir, "explicit.toml")
		require.NoError(t, os.WriteFile(conf, []byte("[view]\ncell_width = 10\n"), 0o644))
		t.Setenv(EnvIDs, "random")

		cfg, err := Resolve(conf, "")
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.View.CellWidth)
		assert.Equal(t, "random", cfg.Nodes.IDs)
	})

	t.Run("invalid override", func(t *testing.T) {
		t.Setenv(EnvIDs, "serial")
		_, err := Resolve("", "")
		assert.Error(t, err)
	})
}
