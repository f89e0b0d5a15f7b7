package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional file plus WATCHSWEEP_* environment
// variables, layered over defaults. An empty path searches the default
// locations; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetEnvPrefix("WATCHSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("watchsweep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/watchsweep")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("plex.tv_url", cfg.Plex.TVURL)
	v.SetDefault("plex.metadata_url", cfg.Plex.MetadataURL)
	v.SetDefault("plex.server_url", cfg.Plex.ServerURL)
	v.SetDefault("plex.app_name", cfg.Plex.AppName)
	v.SetDefault("plex.token_ttl_hours", cfg.Plex.TokenTTLHours)
	v.SetDefault("plex.timeout", cfg.Plex.Timeout)
	v.SetDefault("sync.schedule", cfg.Sync.Schedule)
	v.SetDefault("sync.run_at_startup", cfg.Sync.RunAtStartup)
	v.SetDefault("sync.listen_notifications", cfg.Sync.ListenNotifications)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
