package notify_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/notify"
	"github.com/plexutil/watchsweep/internal/plex"
	"github.com/plexutil/watchsweep/internal/services/accounts"
	"github.com/plexutil/watchsweep/internal/services/auth"
	"github.com/plexutil/watchsweep/internal/services/sync"
	"github.com/plexutil/watchsweep/internal/store"
	"github.com/plexutil/watchsweep/internal/transport"
)

// notificationServer serves one websocket session pushing the given frames.
func notificationServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/:/websockets/notifications", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("X-Plex-Token"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Keep the session open so the listener can process the frames.
		time.Sleep(2 * time.Second)
	}))
}

func TestDeletionNotificationRemovesItem(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	mock := transport.NewMockClient()
	mockStore := store.NewMockStore()
	require.NoError(t, mockStore.PutToken("admin", "token-admin"))

	mock.PerToken["GET /library/sections/watchlist/all|token-admin"] = map[string]interface{}{
		"MediaContainer": map[string]interface{}{
			"Metadata": []map[string]interface{}{
				{"ratingKey": "101", "key": "/library/metadata/101", "title": "Alpha"},
			},
		},
	}
	mock.Responses["PUT /actions/removeFromWatchlist"] = map[string]interface{}{}

	tv := plex.NewTVClient(mock, "https://plex.tv", "https://metadata.provider.plex.tv", logger)
	authSvc := auth.NewService(tv, mockStore, "client-123", "watchsweep", "admin", 24*time.Hour, logger)
	accountsSvc := accounts.NewService(mockStore, "admin", logger)
	syncSvc := sync.NewService(
		authSvc,
		accountsSvc,
		sync.NewSnapshotReader(plex.NewServerClient(mock, "http://unused", logger), logger),
		sync.NewRemover(tv, logger),
		mockStore,
		nil,
		logger,
	)

	srv := notificationServer(t, []string{
		`{"NotificationContainer":{"type":"playing"}}`,
		`{"NotificationContainer":{"type":"timeline","TimelineEntry":[{"itemID":101,"state":9,"type":1}]}}`,
	})
	defer srv.Close()

	listener := notify.NewListener(srv.URL, authSvc, syncSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	require.Eventually(t, func() bool {
		return len(mock.RequestsFor("PUT", "/actions/removeFromWatchlist")) == 1
	}, 5*time.Second, 50*time.Millisecond)

	reqs := mock.RequestsFor("PUT", "/actions/removeFromWatchlist")
	assert.Equal(t, "101", reqs[0].Query.Get("ratingKey"))
}
