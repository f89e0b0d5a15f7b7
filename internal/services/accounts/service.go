// Package accounts maintains the registry of authorized Plex accounts.
package accounts

import (
	"fmt"
	"sort"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
	"github.com/plexutil/watchsweep/internal/store"
)

// Service derives the account registry from the credential store. The store
// is re-read on every call so accounts authorized through the web flow are
// picked up without a restart.
type Service struct {
	creds  store.CredentialStore
	admin  string
	logger *events.Logger
}

// NewService creates an accounts service. admin names the primary account.
func NewService(creds store.CredentialStore, admin string, logger *events.Logger) *Service {
	return &Service{
		creds:  creds,
		admin:  admin,
		logger: logger.WithField("service", "accounts"),
	}
}

// List returns every authorized account, primary first, secondaries sorted
// by username. An empty registry yields an empty slice, not an error.
func (s *Service) List() ([]models.Account, error) {
	tokens, err := s.creds.Tokens()
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}

	accounts := make([]models.Account, 0, len(tokens))
	for username, token := range tokens {
		role := models.RoleSecondary
		if username == s.admin {
			role = models.RolePrimary
		}
		accounts = append(accounts, models.Account{
			Username: username,
			Token:    token,
			Role:     role,
		})
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].IsPrimary() != accounts[j].IsPrimary() {
			return accounts[i].IsPrimary()
		}
		return accounts[i].Username < accounts[j].Username
	})

	return accounts, nil
}

// Usernames returns the registry's usernames in List order.
func (s *Service) Usernames() ([]string, error) {
	accounts, err := s.List()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(accounts))
	for i, acct := range accounts {
		names[i] = acct.Username
	}
	return names, nil
}
