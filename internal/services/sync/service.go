// Package sync implements the collection-to-watchlist synchronization
// engine: snapshot the monitored collections, diff against the last known
// state, and remove the new members from every account's watchlist.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
	"github.com/plexutil/watchsweep/internal/services/accounts"
	"github.com/plexutil/watchsweep/internal/services/auth"
	"github.com/plexutil/watchsweep/internal/store"
)

// Service orchestrates synchronization runs and event-triggered removals.
type Service struct {
	auth        *auth.Service
	accounts    *accounts.Service
	snapshots   *SnapshotReader
	remover     *Remover
	state       store.StateStore
	collections []string
	logger      *events.Logger
}

// NewService creates a sync service. collections are the monitored
// collection titles.
func NewService(authSvc *auth.Service, accountsSvc *accounts.Service, snapshots *SnapshotReader, remover *Remover, state store.StateStore, collections []string, logger *events.Logger) *Service {
	return &Service{
		auth:        authSvc,
		accounts:    accountsSvc,
		snapshots:   snapshots,
		remover:     remover,
		state:       state,
		collections: collections,
		logger:      logger.WithField("service", "sync"),
	}
}

// Run performs one synchronization pass. With no monitored collections it
// is a logged no-op. A primary-token or snapshot failure aborts the run
// before any state is touched; the persisted state is replaced only after
// the removal batch, and on every successful run, empty snapshots included.
func (s *Service) Run(ctx context.Context) (*models.SyncResult, error) {
	started := time.Now()

	if len(s.collections) == 0 {
		s.logger.Info("No collections configured, nothing to synchronize")
		return &models.SyncResult{StartedAt: started, Duration: time.Since(started).String()}, nil
	}

	token, err := s.auth.PrimaryToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve primary token: %w", err)
	}

	current, err := s.snapshots.Snapshot(ctx, token, s.collections)
	if err != nil {
		return nil, fmt.Errorf("snapshot collections: %w", err)
	}

	previous, err := s.state.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	additions := Diff(current, previous)

	removed := 0
	if len(additions) > 0 {
		accts, err := s.accounts.List()
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}

		outcomes := s.remover.RemoveBatch(ctx, additions, accts)
		for _, outcome := range outcomes {
			removed += len(outcome.RemovedTitles)
		}
	}

	if err := s.state.SaveSnapshot(current); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	result := &models.SyncResult{
		CurrentCount:  len(current),
		PreviousCount: len(previous),
		RemovedCount:  removed,
		StartedAt:     started,
		Duration:      time.Since(started).String(),
	}

	s.logger.WithFields(map[string]interface{}{
		"current":  result.CurrentCount,
		"previous": result.PreviousCount,
		"removed":  result.RemovedCount,
		"duration": result.Duration,
	}).Info("Synchronization run finished")

	return result, nil
}

// RemoveItem removes one externally identified item from every account's
// watchlist. rawID may be a bare rating key, a metadata key, or a GUID.
func (s *Service) RemoveItem(ctx context.Context, rawID string) (*models.EventResult, error) {
	id := models.NormalizeItemID(rawID)
	if id == "" {
		return &models.EventResult{}, nil
	}

	accts, err := s.accounts.List()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	outcomes := s.remover.RemoveBatch(ctx, map[string]struct{}{id: {}}, accts)
	result := models.CollectResult(outcomes)

	s.logger.WithFields(map[string]interface{}{
		"item_id": id,
		"found":   result.Found,
		"titles":  len(result.Titles),
	}).Info("Event removal finished")

	return &result, nil
}
