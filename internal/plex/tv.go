// Package plex wraps the two Plex API surfaces this service talks to: the
// cloud API on plex.tv (identity, pins, watchlists) and the local media
// server (library sections and collections).
package plex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
	"github.com/plexutil/watchsweep/internal/transport"
)

const (
	pinsPath      = "/api/v2/pins"
	userPath      = "/api/v2/user"
	signInPath    = "/api/v2/users/signin"
	watchlistPath = "/library/sections/watchlist/all"
	removePath    = "/actions/removeFromWatchlist"
)

// TVClient talks to the plex.tv cloud API and the watchlist metadata
// provider. Account tokens are supplied per call.
type TVClient struct {
	client      transport.Client
	tvURL       string
	metadataURL string
	logger      *events.Logger
}

// NewTVClient creates a cloud API client.
func NewTVClient(client transport.Client, tvURL, metadataURL string, logger *events.Logger) *TVClient {
	return &TVClient{
		client:      client,
		tvURL:       tvURL,
		metadataURL: metadataURL,
		logger:      logger.WithField("component", "plex_tv"),
	}
}

// CreatePin requests a fresh device-authorization code.
func (c *TVClient) CreatePin(ctx context.Context) (*Pin, error) {
	form := url.Values{}
	form.Set("strong", "true")

	var pin Pin
	if err := c.client.PostForm(ctx, c.tvURL, pinsPath, form, "", &pin); err != nil {
		return nil, fmt.Errorf("create pin: %w", err)
	}

	c.logger.WithField("pin_id", pin.ID).Debug("PIN created")
	return &pin, nil
}

// CheckPin polls a pending pin. Returns ErrNotYetAuthorized while the user
// has not approved it.
func (c *TVClient) CheckPin(ctx context.Context, pinID int, code string) (string, error) {
	query := url.Values{}
	query.Set("code", code)

	var pin Pin
	// A 404 here means the pin expired or never existed; the caller must
	// restart the handshake.
	if err := c.client.GetJSON(ctx, c.tvURL, pinsPath+"/"+strconv.Itoa(pinID), query, "", &pin); err != nil {
		return "", fmt.Errorf("check pin: %w", err)
	}

	if pin.AuthToken == "" {
		return "", models.ErrNotYetAuthorized
	}
	return pin.AuthToken, nil
}

// AuthAppURL builds the app.plex.tv URL the user visits to approve a pin.
// forwardURL is where Plex redirects the browser afterwards.
func AuthAppURL(clientID, product, code, forwardURL string) string {
	params := url.Values{}
	params.Set("clientID", clientID)
	params.Set("code", code)
	params.Set("forwardUrl", forwardURL)
	params.Set("context[device][product]", product)
	return "https://app.plex.tv/auth#?" + params.Encode()
}

// SignIn exchanges a username and password for a token.
func (c *TVClient) SignIn(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("login", username)
	form.Set("password", password)

	var resp signInResponse
	if err := c.client.PostForm(ctx, c.tvURL, signInPath, form, "", &resp); err != nil {
		return "", fmt.Errorf("sign in %s: %w", username, err)
	}
	if resp.AuthToken == "" {
		return "", models.NewUpstreamError("sign in", 0, fmt.Errorf("response carried no token"))
	}
	return resp.AuthToken, nil
}

// User resolves the identity behind a token.
func (c *TVClient) User(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.client.GetJSON(ctx, c.tvURL, userPath, nil, token, &user); err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return &user, nil
}

// Watchlist fetches an account's watchlist.
func (c *TVClient) Watchlist(ctx context.Context, token string) ([]models.WatchlistItem, error) {
	var resp apiResponse
	if err := c.client.GetJSON(ctx, c.metadataURL, watchlistPath, nil, token, &resp); err != nil {
		return nil, fmt.Errorf("fetch watchlist: %w", err)
	}

	items := make([]models.WatchlistItem, 0, len(resp.MediaContainer.Metadata))
	for _, md := range resp.MediaContainer.Metadata {
		items = append(items, models.WatchlistItem{
			RatingKey: md.RatingKey,
			Key:       md.Key,
			GUID:      md.GUID,
			Title:     md.Title,
		})
	}
	return items, nil
}

// RemoveFromWatchlist removes one item from an account's watchlist.
func (c *TVClient) RemoveFromWatchlist(ctx context.Context, token string, item models.WatchlistItem) error {
	query := url.Values{}
	query.Set("ratingKey", item.RatingKey)

	if err := c.client.Put(ctx, c.metadataURL, removePath, query, token); err != nil {
		return fmt.Errorf("remove %q from watchlist: %w", item.Title, err)
	}
	return nil
}
