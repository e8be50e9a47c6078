package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
state:
  backend: redis
session:
  signing_key: from-file
pokeapi:
  delay: 0s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SESSION_SIGNING_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, "from-env", cfg.Session.SigningKey)
	assert.Equal(t, time.Duration(0), cfg.PokeAPI.Delay)
	assert.Equal(t, "statehub", cfg.State.KeyPrefix)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SESSION_SIGNING_KEY", "k")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.State.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSigningKey)

	cfg.Session.SigningKey = "k"
	require.NoError(t, cfg.Validate())

	cfg.State.Backend = "etcd"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)

	cfg.State.Backend = "memory"
	cfg.Session.SweepInterval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSweep)
}

// A ?wait=true view may block for the full 30s wait window; the default
// write timeout must leave room to send the reply.
func TestDefault_WriteTimeoutCoversViewWait(t *testing.T) {
	assert.Greater(t, Default().Server.WriteTimeout, 30*time.Second)
}
