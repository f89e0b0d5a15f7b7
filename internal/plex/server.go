package plex

import (
	"context"
	"fmt"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/transport"
)

// ServerClient talks to the local Plex Media Server. It authenticates with
// the primary account's token.
type ServerClient struct {
	client  transport.Client
	baseURL string
	logger  *events.Logger
}

// NewServerClient creates a media server client.
func NewServerClient(client transport.Client, baseURL string, logger *events.Logger) *ServerClient {
	return &ServerClient{
		client:  client,
		baseURL: baseURL,
		logger:  logger.WithField("component", "plex_server"),
	}
}

// Sections lists the server's library sections.
func (c *ServerClient) Sections(ctx context.Context, token string) ([]Directory, error) {
	var resp apiResponse
	if err := c.client.GetJSON(ctx, c.baseURL, "/library/sections", nil, token, &resp); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return resp.MediaContainer.Directory, nil
}

// Collections lists the collections of one library section.
func (c *ServerClient) Collections(ctx context.Context, token, sectionKey string) ([]Metadata, error) {
	path := fmt.Sprintf("/library/sections/%s/collections", sectionKey)

	var resp apiResponse
	if err := c.client.GetJSON(ctx, c.baseURL, path, nil, token, &resp); err != nil {
		return nil, fmt.Errorf("list collections of section %s: %w", sectionKey, err)
	}
	return resp.MediaContainer.Metadata, nil
}

// CollectionItems lists the members of one collection.
func (c *ServerClient) CollectionItems(ctx context.Context, token, collectionKey string) ([]Metadata, error) {
	path := fmt.Sprintf("/library/collections/%s/children", collectionKey)

	var resp apiResponse
	if err := c.client.GetJSON(ctx, c.baseURL, path, nil, token, &resp); err != nil {
		return nil, fmt.Errorf("list items of collection %s: %w", collectionKey, err)
	}
	return resp.MediaContainer.Metadata, nil
}
