// Package transport provides the HTTP layer shared by the plex.tv and media
// server clients. Tokens vary per call (one per account), so they are passed
// per request rather than held on the client.
package transport

import (
	"context"
	"net/url"
)

// Client is the outbound HTTP surface consumed by the Plex clients.
type Client interface {
	// GetJSON performs a GET and decodes a JSON response into out (ignored
	// when out is nil).
	GetJSON(ctx context.Context, base, path string, query url.Values, token string, out interface{}) error

	// PostForm performs a form-encoded POST and decodes a JSON response.
	PostForm(ctx context.Context, base, path string, form url.Values, token string, out interface{}) error

	// Put performs a PUT with query parameters, discarding any body.
	Put(ctx context.Context, base, path string, query url.Values, token string) error
}
