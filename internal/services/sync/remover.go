package sync

import (
	"context"
	gosync "sync"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
	"github.com/plexutil/watchsweep/internal/plex"
)

// Remover applies a removal set across account watchlists.
type Remover struct {
	tv     *plex.TVClient
	logger *events.Logger
}

// NewRemover creates a batch remover.
func NewRemover(tv *plex.TVClient, logger *events.Logger) *Remover {
	return &Remover{
		tv:     tv,
		logger: logger.WithField("component", "remover"),
	}
}

// RemoveBatch removes every identifier in ids from every account's
// watchlist. Accounts are processed concurrently, one task each; a failing
// account is recorded as not attempted and never disturbs the others.
// Outcomes come back in account order, and each account's removals keep its
// watchlist order.
func (r *Remover) RemoveBatch(ctx context.Context, ids map[string]struct{}, accounts []models.Account) []models.RemovalOutcome {
	outcomes := make([]models.RemovalOutcome, len(accounts))

	var wg gosync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account models.Account) {
			defer wg.Done()
			outcomes[i] = r.removeForAccount(ctx, ids, account)
		}(i, account)
	}
	wg.Wait()

	return outcomes
}

// removeForAccount applies the removal set to one account.
func (r *Remover) removeForAccount(ctx context.Context, ids map[string]struct{}, account models.Account) models.RemovalOutcome {
	logger := r.logger.WithField("username", account.Username)
	outcome := models.RemovalOutcome{Username: account.Username}

	watchlist, err := r.tv.Watchlist(ctx, account.Token)
	if err != nil {
		logger.WithError(err).Error("Watchlist fetch failed, skipping account")
		return outcome
	}

	outcome.Attempted = true

	for _, item := range watchlist {
		if !matchesAny(item, ids) {
			continue
		}

		if err := r.tv.RemoveFromWatchlist(ctx, account.Token, item); err != nil {
			logger.WithError(err).WithField("title", item.Title).Error("Removal failed, skipping account")
			outcome.Attempted = false
			return outcome
		}

		outcome.RemovedTitles = append(outcome.RemovedTitles, item.Title)
		logger.WithField("title", item.Title).Info("Removed from watchlist")
	}

	return outcome
}

// matchesAny reports whether the item's key or guid is in the removal set.
func matchesAny(item models.WatchlistItem, ids map[string]struct{}) bool {
	if _, ok := ids[item.Key]; ok && item.Key != "" {
		return true
	}
	if _, ok := ids[item.GUID]; ok && item.GUID != "" {
		return true
	}
	return false
}
