package store

import (
	"sync"

	"github.com/plexutil/watchsweep/internal/models"
)

// MockStore implements Store in memory for testing.
type MockStore struct {
	mu       sync.Mutex
	tokens   map[string]string
	primary  *models.PrimaryCache
	snapshot map[string]struct{}

	// Error injection
	TokenErr    error
	PutErr      error
	SnapshotErr error
	SaveErr     error
}

// NewMockStore creates an in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		tokens:   make(map[string]string),
		snapshot: make(map[string]struct{}),
	}
}

func (s *MockStore) Token(username string) (string, error) {
	if s.TokenErr != nil {
		return "", s.TokenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[username]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (s *MockStore) PutToken(username, token string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[username] = token
	return nil
}

func (s *MockStore) Tokens() (map[string]string, error) {
	if s.TokenErr != nil {
		return nil, s.TokenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.tokens))
	for k, v := range s.tokens {
		out[k] = v
	}
	return out, nil
}

func (s *MockStore) PrimaryCache() (*models.PrimaryCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primary == nil {
		return nil, ErrCacheMiss
	}
	cache := *s.primary
	return &cache, nil
}

func (s *MockStore) PutPrimaryCache(cache models.PrimaryCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.primary = &cache
	return nil
}

func (s *MockStore) LoadSnapshot() (map[string]struct{}, error) {
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(s.snapshot))
	for k := range s.snapshot {
		out[k] = struct{}{}
	}
	return out, nil
}

func (s *MockStore) SaveSnapshot(snapshot map[string]struct{}) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(snapshot))
	for k := range snapshot {
		out[k] = struct{}{}
	}
	s.snapshot = out
	return nil
}

func (s *MockStore) Close() error { return nil }
