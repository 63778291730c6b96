package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
auth:
  session_secret: test-secret
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.False(t, cfg.Auth.VerifySignatures)
	assert.Equal(t, 30*time.Second, cfg.Ledger.RequestTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  listen_addr: ":9090"
  environment: production
auth:
  session_secret: test-secret
  verify_signatures: true
ledger:
  base_url: https://ledger.example.test/api
  request_timeout: 5s
pools:
  snapshot_dir: /var/lib/cardex/pools
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Auth.VerifySignatures)
	assert.Equal(t, "https://ledger.example.test/api", cfg.Ledger.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Ledger.RequestTimeout)
	assert.Equal(t, "/var/lib/cardex/pools", cfg.Pools.SnapshotDir)
}

func TestLoadEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
auth:
  session_secret: from-file
`)
	t.Setenv("CARDEX_AUTH_SESSION_SECRET", "from-env")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.SessionSecret)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  listen_addr: ":8080"
`)

	_, err := LoadFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")
}

func TestLoadWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CARDEX_AUTH_SESSION_SECRET", "env-only")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-only", cfg.Auth.SessionSecret)
}
