package sync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexutil/watchsweep/internal/models"
	"github.com/plexutil/watchsweep/internal/plex"
	"github.com/plexutil/watchsweep/internal/services/sync"
	"github.com/plexutil/watchsweep/internal/transport"
)

const (
	tvURL       = "https://plex.tv"
	metadataURL = "https://metadata.provider.plex.tv"
)

func newRemover(mock *transport.MockClient) *sync.Remover {
	logger := testLogger()
	tv := plex.NewTVClient(mock, tvURL, metadataURL, logger)
	return sync.NewRemover(tv, logger)
}

func watchlistResponse(entries ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"MediaContainer": map[string]interface{}{"Metadata": entries},
	}
}

func TestRemoveBatch(t *testing.T) {
	ctx := context.Background()

	accounts := []models.Account{
		{Username: "admin", Token: "token-admin", Role: models.RolePrimary},
		{Username: "bob", Token: "token-bob", Role: models.RoleSecondary},
	}

	t.Run("matched items removed per account", func(t *testing.T) {
		mock := transport.NewMockClient()
		mock.PerToken["GET /library/sections/watchlist/all|token-admin"] = watchlistResponse(
			map[string]interface{}{"ratingKey": "101", "key": "/library/metadata/101", "guid": "plex://movie/aaa", "title": "Alpha"},
			map[string]interface{}{"ratingKey": "102", "key": "/library/metadata/102", "title": "Beta"},
			map[string]interface{}{"ratingKey": "103", "key": "/library/metadata/103", "title": "Gamma"},
		)
		mock.PerToken["GET /library/sections/watchlist/all|token-bob"] = watchlistResponse(
			map[string]interface{}{"ratingKey": "102", "key": "/library/metadata/102", "title": "Beta"},
		)
		mock.Responses["PUT /actions/removeFromWatchlist"] = map[string]interface{}{}

		remover := newRemover(mock)
		outcomes := remover.RemoveBatch(ctx, set("plex://movie/aaa", "/library/metadata/102"), accounts)

		require.Len(t, outcomes, 2)
		assert.Equal(t, "admin", outcomes[0].Username)
		assert.True(t, outcomes[0].Attempted)
		assert.Equal(t, []string{"Alpha", "Beta"}, outcomes[0].RemovedTitles)

		assert.Equal(t, "bob", outcomes[1].Username)
		assert.True(t, outcomes[1].Attempted)
		assert.Equal(t, []string{"Beta"}, outcomes[1].RemovedTitles)

		puts := mock.RequestsFor("PUT", "/actions/removeFromWatchlist")
		assert.Len(t, puts, 3)
	})

	t.Run("absent identifiers skipped silently", func(t *testing.T) {
		mock := transport.NewMockClient()
		mock.PerToken["GET /library/sections/watchlist/all|token-admin"] = watchlistResponse()
		mock.PerToken["GET /library/sections/watchlist/all|token-bob"] = watchlistResponse()

		remover := newRemover(mock)
		outcomes := remover.RemoveBatch(ctx, set("/library/metadata/999"), accounts)

		for _, outcome := range outcomes {
			assert.True(t, outcome.Attempted)
			assert.Empty(t, outcome.RemovedTitles)
		}
	})

	t.Run("one account failure does not stop the others", func(t *testing.T) {
		mock := transport.NewMockClient()
		// admin has no mocked watchlist, so its fetch fails.
		mock.PerToken["GET /library/sections/watchlist/all|token-bob"] = watchlistResponse(
			map[string]interface{}{"ratingKey": "102", "key": "/library/metadata/102", "title": "Beta"},
		)
		mock.Responses["PUT /actions/removeFromWatchlist"] = map[string]interface{}{}

		remover := newRemover(mock)
		outcomes := remover.RemoveBatch(ctx, set("/library/metadata/102"), accounts)

		require.Len(t, outcomes, 2)
		assert.False(t, outcomes[0].Attempted)
		assert.Empty(t, outcomes[0].RemovedTitles)

		assert.True(t, outcomes[1].Attempted)
		assert.Equal(t, []string{"Beta"}, outcomes[1].RemovedTitles)
	})

	t.Run("removal failure recorded, account marked failed", func(t *testing.T) {
		mock := transport.NewMockClient()
		mock.PerToken["GET /library/sections/watchlist/all|token-admin"] = watchlistResponse(
			map[string]interface{}{"ratingKey": "101", "key": "/library/metadata/101", "title": "Alpha"},
		)
		mock.Errors["PUT /actions/removeFromWatchlist"] = models.NewUpstreamError("remove", 500, assert.AnError)

		remover := newRemover(mock)
		outcomes := remover.RemoveBatch(ctx, set("/library/metadata/101"), accounts[:1])

		require.Len(t, outcomes, 1)
		assert.False(t, outcomes[0].Attempted)
	})

	t.Run("no accounts", func(t *testing.T) {
		remover := newRemover(transport.NewMockClient())
		outcomes := remover.RemoveBatch(ctx, set("/library/metadata/101"), nil)
		assert.Empty(t, outcomes)
	})
}
