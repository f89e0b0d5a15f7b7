// Package client wires configuration, transport, stores and services into
// the high-level API the commands consume.
package client

import (
	"github.com/plexutil/watchsweep/internal/config"
	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/notify"
	"github.com/plexutil/watchsweep/internal/plex"
	"github.com/plexutil/watchsweep/internal/scheduler"
	"github.com/plexutil/watchsweep/internal/server"
	"github.com/plexutil/watchsweep/internal/services/accounts"
	"github.com/plexutil/watchsweep/internal/services/auth"
	"github.com/plexutil/watchsweep/internal/services/sync"
	"github.com/plexutil/watchsweep/internal/store"
	"github.com/plexutil/watchsweep/internal/transport"
)

// Client provides the high-level API for watchsweep operations.
type Client struct {
	Auth     *auth.Service
	Accounts *accounts.Service
	Sync     *sync.Service

	config   *config.Config
	clientID string
	logger   *events.Logger
	store    store.Store
}

// New creates a fully wired client.
func New(cfg *config.Config, logger *events.Logger) (*Client, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	clientID, err := store.LoadOrCreateClientID(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Storage.Backend, cfg.Storage.DataDir, logger)
	if err != nil {
		return nil, err
	}

	httpClient := transport.NewHTTPClient(cfg.Plex.Timeout, cfg.Plex.AppName, clientID, logger)
	tv := plex.NewTVClient(httpClient, cfg.Plex.TVURL, cfg.Plex.MetadataURL, logger)
	pms := plex.NewServerClient(httpClient, cfg.Plex.ServerURL, logger)

	authSvc := auth.NewService(tv, st, clientID, cfg.Plex.AppName, cfg.Plex.AdminUsername, cfg.TokenTTL(), logger)
	accountsSvc := accounts.NewService(st, cfg.Plex.AdminUsername, logger)

	syncSvc := sync.NewService(
		authSvc,
		accountsSvc,
		sync.NewSnapshotReader(pms, logger),
		sync.NewRemover(tv, logger),
		st,
		cfg.Sync.Collections,
		logger,
	)

	return &Client{
		Auth:     authSvc,
		Accounts: accountsSvc,
		Sync:     syncSvc,
		config:   cfg,
		clientID: clientID,
		logger:   logger,
		store:    st,
	}, nil
}

// ClientID returns the stable device identifier.
func (c *Client) ClientID() string { return c.clientID }

// Server builds the HTTP server around the client's services.
func (c *Client) Server() *server.Server {
	return server.New(c.config.Server.Addr, c.Auth, c.Sync, c.logger)
}

// Scheduler builds the cron scheduler, or nil when no schedule is set.
func (c *Client) Scheduler() *scheduler.Scheduler {
	if c.config.Sync.Schedule == "" {
		return nil
	}
	return scheduler.New(c.Sync, c.config.Sync.Schedule, c.config.Sync.RunAtStartup, c.logger)
}

// NotificationListener builds the media server notification listener, or
// nil when disabled.
func (c *Client) NotificationListener() *notify.Listener {
	if !c.config.Sync.ListenNotifications {
		return nil
	}
	return notify.NewListener(c.config.Plex.ServerURL, c.Auth, c.Sync, c.logger)
}

// Close releases the client's resources.
func (c *Client) Close() error {
	return c.store.Close()
}
