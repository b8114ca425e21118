package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "local", cfg.Identity.Driver)
	require.Equal(t, "fs", cfg.Blob.Driver)
	require.Equal(t, "fs", cfg.Profile.Driver)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, 15*time.Second, cfg.Provision.CallTimeout)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: prod
server:
  addr: ":9090"
identity:
  driver: httpapi
  base_url: https://id.example.com
profile:
  driver: pg
  dsn: postgres://app@db/plantit
cache:
  kind: redis
  redis:
    addr: localhost:6379
`), 0o600))

	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("IDENTITY_API_KEY", "k-123")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, ":7070", cfg.Server.Addr, "env overrides the file")
	require.Equal(t, "httpapi", cfg.Identity.Driver)
	require.Equal(t, "https://id.example.com", cfg.Identity.BaseURL)
	require.Equal(t, "k-123", cfg.Identity.APIKey)
	require.Equal(t, "pg", cfg.Profile.Driver)
	require.Equal(t, "redis", cfg.Cache.Kind)
	require.Equal(t, "plantit", cfg.Cache.Redis.Prefix, "default fills the gap")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}
