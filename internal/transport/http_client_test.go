package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
)

func newTestClient(t *testing.T) *HTTPClient {
	t.Helper()

	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	c := NewHTTPClient(5*time.Second, "watchsweep", "client-123", logger)
	c.retryDelay = time.Millisecond
	return c
}

func TestGetJSON(t *testing.T) {
	t.Run("sends plex headers and token", func(t *testing.T) {
		var got http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		}))
		defer srv.Close()

		var out map[string]string
		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/ping", nil, "secret-token", &out)
		require.NoError(t, err)

		assert.Equal(t, "ok", out["status"])
		assert.Equal(t, "application/json", got.Get("Accept"))
		assert.Equal(t, "watchsweep", got.Get("X-Plex-Product"))
		assert.Equal(t, "client-123", got.Get("X-Plex-Client-Identifier"))
		assert.Equal(t, "secret-token", got.Get("X-Plex-Token"))
	})

	t.Run("no token header when empty", func(t *testing.T) {
		var got http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/ping", nil, "", nil)
		require.NoError(t, err)
		assert.Empty(t, got.Get("X-Plex-Token"))
	})

	t.Run("non-2xx becomes UpstreamError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		defer srv.Close()

		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/missing", nil, "", nil)
		require.Error(t, err)

		var ue *models.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusNotFound, ue.StatusCode)
	})

	t.Run("query parameters appended", func(t *testing.T) {
		var gotQuery url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		query := url.Values{}
		query.Set("code", "ABCD")
		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/pins/1", query, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "ABCD", gotQuery.Get("code"))
	})
}

func TestPostForm(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Get("strong")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("strong", "true")
	err := newTestClient(t).PostForm(context.Background(), srv.URL, "/pins", form, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "true", gotBody)
}

func TestRetry(t *testing.T) {
	t.Run("retries server errors then succeeds", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/flaky", nil, "", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/down", nil, "", nil)
		require.Error(t, err)
		assert.Equal(t, 3, calls)

		var ue *models.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		err := newTestClient(t).GetJSON(context.Background(), srv.URL, "/denied", nil, "", nil)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestPut(t *testing.T) {
	var gotMethod string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	query := url.Values{}
	query.Set("ratingKey", "101")
	err := newTestClient(t).Put(context.Background(), srv.URL, "/actions/removeFromWatchlist", query, "token")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "101", gotQuery.Get("ratingKey"))
}
