package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Plex    PlexConfig    `json:"plex" mapstructure:"plex"`
	Sync    SyncConfig    `json:"sync" mapstructure:"sync"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
}

// PlexConfig describes the upstream Plex endpoints and accounts.
type PlexConfig struct {
	// Cloud API for pins, identity and watchlists.
	TVURL string `json:"tv_url" mapstructure:"tv_url"`
	// Watchlist metadata provider.
	MetadataURL string `json:"metadata_url" mapstructure:"metadata_url"`
	// Local media server serving the watched collections.
	ServerURL string `json:"server_url" mapstructure:"server_url"`

	// Product name presented during the device-authorization handshake.
	AppName string `json:"app_name" mapstructure:"app_name"`

	// Admin identity. A token registered under this username doubles as the
	// connection credential for the local server.
	AdminUsername string `json:"admin_username" mapstructure:"admin_username"`
	AdminPassword string `json:"admin_password,omitempty" mapstructure:"admin_password"`

	// Secondary accounts as "user:pass" pairs, for password-based signin.
	ExtraUsers []string `json:"extra_users,omitempty" mapstructure:"extra_users"`

	// Primary-token cache lifetime.
	TokenTTLHours int `json:"token_ttl_hours" mapstructure:"token_ttl_hours"`

	// Bound applied to every outbound request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// SyncConfig describes the synchronization behavior.
type SyncConfig struct {
	// Collection titles to watch, searched in order across libraries.
	Collections []string `json:"collections" mapstructure:"collections"`

	// Cron expression for scheduled runs; empty disables the scheduler.
	Schedule string `json:"schedule" mapstructure:"schedule"`

	// Run one sync immediately when the server starts.
	RunAtStartup bool `json:"run_at_startup" mapstructure:"run_at_startup"`

	// Listen on the media server's notification feed for deletions.
	ListenNotifications bool `json:"listen_notifications" mapstructure:"listen_notifications"`
}

// ServerConfig for the HTTP surface.
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// StorageConfig for durable state.
type StorageConfig struct {
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
	// "json" or "sqlite".
	Backend string `json:"backend" mapstructure:"backend"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Plex: PlexConfig{
			TVURL:         "https://plex.tv",
			MetadataURL:   "https://metadata.provider.plex.tv",
			ServerURL:     "http://localhost:32400",
			AppName:       "Watchsweep",
			TokenTTLHours: 24,
			Timeout:       10 * time.Second,
		},
		Sync: SyncConfig{
			Schedule: "@every 1h",
		},
		Server: ServerConfig{
			Addr: ":5000",
		},
		Storage: StorageConfig{
			DataDir: "data",
			Backend: "json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// TokenTTL returns the primary-token cache lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	hours := c.Plex.TokenTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Plex.TVURL == "" {
		return errors.New("plex.tv_url is required")
	}
	if c.Plex.ServerURL == "" {
		return errors.New("plex.server_url is required")
	}
	if c.Plex.Timeout <= 0 {
		return errors.New("plex.timeout must be positive")
	}

	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	for _, pair := range c.Plex.ExtraUsers {
		if !strings.Contains(pair, ":") {
			return fmt.Errorf("plex.extra_users entry %q is not user:pass", pair)
		}
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDir, 0700); err != nil {
		return fmt.Errorf("create directory %s: %w", c.Storage.DataDir, err)
	}
	return nil
}

// Credential is a username:password pair for password-based signin.
type Credential struct {
	Username string
	Password string
}

// Credentials returns the configured admin plus secondary account
// credentials, admin first, skipping malformed entries.
func (c *Config) Credentials() []Credential {
	var creds []Credential
	if c.Plex.AdminUsername != "" && c.Plex.AdminPassword != "" {
		creds = append(creds, Credential{c.Plex.AdminUsername, c.Plex.AdminPassword})
	}
	for _, pair := range c.Plex.ExtraUsers {
		user, pass, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		creds = append(creds, Credential{strings.TrimSpace(user), strings.TrimSpace(pass)})
	}
	return creds
}

// StorePath returns the path of a named store file under the data dir.
func (c *Config) StorePath(name string) string {
	return filepath.Join(c.Storage.DataDir, name)
}
