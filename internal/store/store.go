// Package store persists the service's durable state: the username→token
// map, the cached primary token, and the collection snapshot from the last
// successful sync run. Stores have no in-memory authority; every operation
// reads from durable storage before acting and writes after, so the backing
// store stays the single source of truth across restarts.
package store

import (
	"errors"

	"github.com/plexutil/watchsweep/internal/models"
)

// CredentialStore persists account tokens and the primary-token cache.
type CredentialStore interface {
	// Token returns the token registered for username, or ErrTokenNotFound.
	Token(username string) (string, error)

	// PutToken registers or replaces the token for username.
	PutToken(username, token string) error

	// Tokens returns the full username→token map. Never nil.
	Tokens() (map[string]string, error)

	// PrimaryCache returns the cached primary token, or ErrCacheMiss.
	PrimaryCache() (*models.PrimaryCache, error)

	// PutPrimaryCache replaces the cached primary token.
	PutPrimaryCache(cache models.PrimaryCache) error
}

// StateStore persists the snapshot of the last successful sync run.
type StateStore interface {
	// LoadSnapshot returns the persisted identifier set. Missing state
	// yields an empty set, not an error.
	LoadSnapshot() (map[string]struct{}, error)

	// SaveSnapshot atomically replaces the persisted set, including with an
	// empty one.
	SaveSnapshot(snapshot map[string]struct{}) error
}

// Store combines both persistence concerns behind one backend.
type Store interface {
	CredentialStore
	StateStore

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrTokenNotFound = errors.New("no token for username")
	ErrCacheMiss     = errors.New("no cached primary token")
)
