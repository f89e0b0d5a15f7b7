package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
)

const (
	tokensFile  = "user_tokens.json"
	primaryFile = "primary_token.json"
	stateFile   = "collection_state.json"
)

// JSONStore implements Store on plain JSON files. Every read re-parses the
// backing file and every write replaces it atomically (temp file + rename),
// so concurrent triggering paths never observe a half-written record.
// Corrupt or unreadable files are treated as empty, never as fatal.
type JSONStore struct {
	dir    string
	logger *events.Logger

	mu sync.Mutex
}

// NewJSONStore creates a JSON-file-backed store under dir.
func NewJSONStore(dir string, logger *events.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &JSONStore{
		dir:    dir,
		logger: logger.WithField("component", "json_store"),
	}, nil
}

// Token returns the token registered for username.
func (s *JSONStore) Token(username string) (string, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return "", err
	}
	token, ok := tokens[username]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// PutToken registers or replaces the token for username.
func (s *JSONStore) PutToken(username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.readTokens()
	tokens[username] = token
	return s.writeFile(tokensFile, tokens)
}

// Tokens returns the full username→token map.
func (s *JSONStore) Tokens() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTokens(), nil
}

// PrimaryCache returns the cached primary token.
func (s *JSONStore) PrimaryCache() (*models.PrimaryCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, primaryFile))
	if err != nil {
		return nil, ErrCacheMiss
	}

	var cache models.PrimaryCache
	if err := json.Unmarshal(data, &cache); err != nil {
		s.logger.WithError(err).Warn("Primary cache unreadable, treating as empty")
		return nil, ErrCacheMiss
	}
	if cache.Token == "" {
		return nil, ErrCacheMiss
	}
	return &cache, nil
}

// PutPrimaryCache replaces the cached primary token.
func (s *JSONStore) PutPrimaryCache(cache models.PrimaryCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(primaryFile, cache)
}

// LoadSnapshot returns the persisted identifier set.
func (s *JSONStore) LoadSnapshot() (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]struct{})

	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("State file unreadable, treating as empty")
		}
		return snapshot, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.WithError(err).Warn("State file corrupt, treating as empty")
		return snapshot, nil
	}
	for _, id := range ids {
		snapshot[id] = struct{}{}
	}
	return snapshot, nil
}

// SaveSnapshot atomically replaces the persisted identifier set.
func (s *JSONStore) SaveSnapshot(snapshot map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return s.writeFile(stateFile, ids)
}

// Close releases resources.
func (s *JSONStore) Close() error { return nil }

// readTokens loads the token map, treating missing or corrupt files as empty.
func (s *JSONStore) readTokens() map[string]string {
	tokens := make(map[string]string)

	data, err := os.ReadFile(filepath.Join(s.dir, tokensFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Token store unreadable, treating as empty")
		}
		return tokens
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		s.logger.WithError(err).Warn("Token store corrupt, treating as empty")
		return map[string]string{}
	}
	return tokens
}

// writeFile persists v as indented JSON via temp-file-then-rename.
func (s *JSONStore) writeFile(name string, v interface{}) error {
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if file, err := os.Open(tmpPath); err == nil {
		_ = file.Sync()
		_ = file.Close()
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
