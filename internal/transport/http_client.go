package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
)

// HTTPClient implements Client against real Plex endpoints. Every request
// carries the standard X-Plex headers and a bounded timeout so a stalled
// upstream cannot hang the process.
type HTTPClient struct {
	client   *http.Client
	product  string
	clientID string
	logger   *events.Logger

	maxRetries int
	retryDelay time.Duration
}

// NewHTTPClient creates an HTTP client. clientID is the stable client
// identifier persisted across restarts.
func NewHTTPClient(timeout time.Duration, product, clientID string, logger *events.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		},
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		logger.WithError(err).Warn("Failed to configure HTTP/2")
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		product:    product,
		clientID:   clientID,
		maxRetries: 2,
		retryDelay: time.Second,
		logger:     logger.WithField("component", "http_client"),
	}
}

// GetJSON performs a GET and decodes a JSON response.
func (c *HTTPClient) GetJSON(ctx context.Context, base, path string, query url.Values, token string, out interface{}) error {
	return c.do(ctx, http.MethodGet, base, path, query, nil, token, out)
}

// PostForm performs a form-encoded POST and decodes a JSON response.
func (c *HTTPClient) PostForm(ctx context.Context, base, path string, form url.Values, token string, out interface{}) error {
	return c.do(ctx, http.MethodPost, base, path, nil, form, token, out)
}

// Put performs a PUT with query parameters.
func (c *HTTPClient) Put(ctx context.Context, base, path string, query url.Values, token string) error {
	return c.do(ctx, http.MethodPut, base, path, query, nil, token, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, base, path string, query, form url.Values, token string, out interface{}) error {
	reqURL := strings.TrimSuffix(base, "/") + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	op := fmt.Sprintf("%s %s", method, path)

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    reqURL,
	}).Debug("Sending request")

	var body []byte
	err := c.retry(ctx, func() error {
		var reader io.Reader
		if form != nil {
			reader = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.product+"/1.0")
		req.Header.Set("X-Plex-Product", c.product)
		req.Header.Set("X-Plex-Client-Identifier", c.clientID)
		req.Header.Set("X-Plex-Version", "1.0")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		if token != "" {
			req.Header.Set("X-Plex-Token", token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return models.NewUpstreamError(op, 0, err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return models.NewUpstreamError(op, resp.StatusCode, fmt.Errorf("read response: %w", err))
		}

		if c.isRetryable(resp.StatusCode) {
			return &retryableError{models.NewUpstreamError(op, resp.StatusCode, fmt.Errorf("server error"))}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return models.NewUpstreamError(op, resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(truncate(string(body), 200))))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return models.NewUpstreamError(op, 0, fmt.Errorf("parse response: %w", err))
	}
	return nil
}

type retryableError struct{ error }

func (e *retryableError) Unwrap() error { return e.error }

// retry executes fn with exponential backoff on retryable failures.
func (c *HTTPClient) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(map[string]interface{}{
				"attempt": attempt,
				"delay":   delay,
			}).Debug("Retrying request")

			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if _, retryable := err.(*retryableError); !retryable {
			return err
		}
	}

	if re, ok := lastErr.(*retryableError); ok {
		return re.error
	}
	return lastErr
}

func (c *HTTPClient) isRetryable(status int) bool {
	return status == http.StatusTooManyRequests ||
		(status >= 500 && status < 600)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
