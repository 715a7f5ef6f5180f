package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  driver: sqlite
  dsn: "file.db"
redis:
  cache_ttl: 30s
`), 0o600))

	t.Setenv("FEELNOTE_LOG_LEVEL", "debug")
	t.Setenv("FEELNOTE_RATE_LIMIT_BURST", "5")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, 3, cfg.Notify.MaxAttempts)
}

func TestLoadFrom_RejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: mysql\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadFrom_ReleaseNeedsSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "jwt_secret")
}
