package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexutil/watchsweep/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "https://plex.tv", cfg.Plex.TVURL)
	assert.Equal(t, "https://metadata.provider.plex.tv", cfg.Plex.MetadataURL)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Storage.Backend)
	assert.Equal(t, 10*time.Second, cfg.Plex.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing tv url", func(c *config.Config) { c.Plex.TVURL = "" }},
		{"missing server url", func(c *config.Config) { c.Plex.ServerURL = "" }},
		{"zero timeout", func(c *config.Config) { c.Plex.Timeout = 0 }},
		{"bad backend", func(c *config.Config) { c.Storage.Backend = "redis" }},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"malformed extra user", func(c *config.Config) { c.Plex.ExtraUsers = []string{"nopass"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTokenTTL(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())

	cfg.Plex.TokenTTLHours = 6
	assert.Equal(t, 6*time.Hour, cfg.TokenTTL())

	cfg.Plex.TokenTTLHours = 0
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}

func TestCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Plex.AdminUsername = "admin"
	cfg.Plex.AdminPassword = "secret"
	cfg.Plex.ExtraUsers = []string{"bob: hunter2", "broken"}

	creds := cfg.Credentials()
	require.Len(t, creds, 2)
	assert.Equal(t, config.Credential{Username: "admin", Password: "secret"}, creds[0])
	assert.Equal(t, config.Credential{Username: "bob", Password: "hunter2"}, creds[1])
}

func TestLoad(t *testing.T) {
	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "watchsweep.yaml")
		content := `
plex:
  server_url: http://plex.home:32400
  admin_username: admin
sync:
  collections:
    - Leaving Soon
server:
  addr: ":8080"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://plex.home:32400", cfg.Plex.ServerURL)
		assert.Equal(t, "admin", cfg.Plex.AdminUsername)
		assert.Equal(t, []string{"Leaving Soon"}, cfg.Sync.Collections)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		// Untouched values keep their defaults.
		assert.Equal(t, "https://plex.tv", cfg.Plex.TVURL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("WATCHSWEEP_SERVER_ADDR", ":9090")

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "watchsweep.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: redis\n"), 0600))

		_, err := config.Load(path)
		assert.Error(t, err)
	})
}
