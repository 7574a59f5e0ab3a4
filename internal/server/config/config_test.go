package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"tokenserver"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, c.AccessTokenTTL)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoadConfig_JSONThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"grpc_addr": ":6000",
		"secret_key": "from-json",
		"access_token_ttl": "2m",
		"refresh_token_ttl": 3600000000000
	}`), 0o600))

	withArgs(t, "-c", path, "-s", "from-flag", "-user", "alice", "-unrelated", "x")
	cfg := LoadConfig()

	assert.Equal(t, ":6000", cfg.GRPCAddr)
	assert.Equal(t, "from-flag", cfg.SecretKey)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "alice", cfg.SeedUser)
}

func TestLoadConfig_BadJSONPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	withArgs(t, "-config", path)

	assert.Panics(t, func() { LoadConfig() })
}
