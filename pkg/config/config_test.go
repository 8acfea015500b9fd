package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	// A nonexistent explicit path falls back to defaults.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.False(t, cfg.Metrics.Enabled)

	require.Len(t, cfg.Filesystems, 1)
	assert.Equal(t, "default", cfg.Filesystems[0].Name)
	assert.Equal(t, "ramfs", cfg.Filesystems[0].Type)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
shutdown_timeout: 5s
metrics:
  enabled: true
api:
  port: 9999
filesystems:
  - name: scratch
    type: rampool
    options: mode=0700
  - name: plain
    type: ramfs
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9999, cfg.API.Port)

	require.Len(t, cfg.Filesystems, 2)
	assert.Equal(t, "scratch", cfg.Filesystems[0].Name)
	assert.Equal(t, "rampool", cfg.Filesystems[0].Type)
	assert.Equal(t, "mode=0700", cfg.Filesystems[0].Options)
}

func TestEnvironmentOverride(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: info
`)
	t.Setenv("RAMFS_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestValidation(t *testing.T) {
	t.Run("rejects unknown filesystem type", func(t *testing.T) {
		path := writeConfigFile(t, `
filesystems:
  - name: bad
    type: tmpfs
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation")
	})

	t.Run("rejects duplicate mount names", func(t *testing.T) {
		path := writeConfigFile(t, `
filesystems:
  - name: twice
    type: ramfs
  - name: twice
    type: rampool
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate filesystem name")
	})

	t.Run("rejects missing mount name", func(t *testing.T) {
		path := writeConfigFile(t, `
filesystems:
  - type: ramfs
`)
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "DEBUG"
	cfg.Filesystems = append(cfg.Filesystems, MountConfig{
		Name:    "pool",
		Type:    "rampool",
		Options: "mode=01777",
	})

	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", loaded.Logging.Level)
	require.Len(t, loaded.Filesystems, 2)
	assert.Equal(t, "mode=01777", loaded.Filesystems[1].Options)
}

func TestMustLoadMissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ramfs init")
}
