// Package notify listens on the Plex Media Server notification websocket
// and feeds item deletions into the watchlist remover.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/services/auth"
	"github.com/plexutil/watchsweep/internal/services/sync"
)

const (
	notificationsPath = "/:/websockets/notifications"
	handshakeTimeout  = 10 * time.Second
	reconnectDelay    = 30 * time.Second
	removalTimeout    = time.Minute

	// timeline state 9 marks a deleted item.
	stateDeleted = 9
)

// notificationFrame is the envelope PMS pushes on the websocket.
type notificationFrame struct {
	Container struct {
		Type     string          `json:"type"`
		Timeline []timelineEntry `json:"TimelineEntry,omitempty"`
	} `json:"NotificationContainer"`
}

type timelineEntry struct {
	ItemID json.Number `json:"itemID"`
	State  int         `json:"state"`
	Type   int         `json:"type"`
}

// Listener tails PMS timeline notifications and removes deleted items from
// every account's watchlist.
type Listener struct {
	serverURL string
	auth      *auth.Service
	sync      *sync.Service
	logger    *events.Logger
}

// NewListener creates a notification listener for the media server at
// serverURL.
func NewListener(serverURL string, authSvc *auth.Service, syncSvc *sync.Service, logger *events.Logger) *Listener {
	return &Listener{
		serverURL: serverURL,
		auth:      authSvc,
		sync:      syncSvc,
		logger:    logger.WithField("component", "notify"),
	}
}

// Run connects and processes notifications until ctx is canceled,
// reconnecting after connection loss.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			l.logger.WithError(err).Warn("Notification stream lost, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// listen holds one websocket session.
func (l *Listener) listen(ctx context.Context) error {
	token, err := l.auth.PrimaryToken(ctx)
	if err != nil {
		return fmt.Errorf("resolve primary token: %w", err)
	}

	wsURL := websocketURL(l.serverURL) + notificationsPath + "?X-Plex-Token=" + token

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket connect failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket connect failed: %w", err)
	}
	defer conn.Close()

	l.logger.Info("Notification stream connected")

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var frame notificationFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return err
		}
		l.handle(ctx, &frame)
	}
}

// handle inspects one notification frame for deleted items.
func (l *Listener) handle(ctx context.Context, frame *notificationFrame) {
	if frame.Container.Type != "timeline" {
		return
	}

	for _, entry := range frame.Container.Timeline {
		if entry.State != stateDeleted || entry.ItemID == "" {
			continue
		}

		l.logger.WithField("item_id", entry.ItemID.String()).Info("Item deletion notification")

		removalCtx, cancel := context.WithTimeout(ctx, removalTimeout)
		if _, err := l.sync.RemoveItem(removalCtx, entry.ItemID.String()); err != nil {
			l.logger.WithError(err).Error("Notification-triggered removal failed")
		}
		cancel()
	}
}

// websocketURL converts an http(s) base URL to its ws(s) form.
func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
