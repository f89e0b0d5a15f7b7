// Package auth implements the device-authorization and password sign-in
// flows against plex.tv, and resolves the primary token used for media
// server reads.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
	"github.com/plexutil/watchsweep/internal/plex"
	"github.com/plexutil/watchsweep/internal/store"
)

// unknownUsername is stored when plex.tv accepts a token but the identity
// lookup behind it fails. The token still works for watchlist calls.
const unknownUsername = "unknown"

// PinSession is a pending device authorization.
type PinSession struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
}

// Service runs authorization flows and persists the resulting tokens.
type Service struct {
	tv       *plex.TVClient
	creds    store.CredentialStore
	clientID string
	product  string
	admin    string
	tokenTTL time.Duration
	logger   *events.Logger

	now func() time.Time
}

// NewService creates an auth service.
func NewService(tv *plex.TVClient, creds store.CredentialStore, clientID, product, admin string, tokenTTL time.Duration, logger *events.Logger) *Service {
	return &Service{
		tv:       tv,
		creds:    creds,
		clientID: clientID,
		product:  product,
		admin:    admin,
		tokenTTL: tokenTTL,
		logger:   logger.WithField("service", "auth"),
		now:      time.Now,
	}
}

// BeginPIN starts a device-authorization handshake.
func (s *Service) BeginPIN(ctx context.Context) (*PinSession, error) {
	pin, err := s.tv.CreatePin(ctx)
	if err != nil {
		return nil, err
	}
	return &PinSession{ID: pin.ID, Code: pin.Code}, nil
}

// AuthURL builds the app.plex.tv page the user must visit to approve a
// pending PIN. forwardURL is where Plex redirects the browser afterwards.
func (s *Service) AuthURL(code, forwardURL string) string {
	return plex.AuthAppURL(s.clientID, s.product, code, forwardURL)
}

// PollPIN checks a pending handshake once. It returns the token when the
// user has approved, or models.ErrNotYetAuthorized while they have not.
func (s *Service) PollPIN(ctx context.Context, pinID int, code string) (string, error) {
	return s.tv.CheckPin(ctx, pinID, code)
}

// Complete resolves the identity behind a freshly granted token and
// registers it. A failed identity lookup does not discard the token.
func (s *Service) Complete(ctx context.Context, token string) (string, error) {
	username := unknownUsername

	user, err := s.tv.User(ctx, token)
	if err != nil {
		s.logger.WithError(err).Warn("Identity lookup failed, storing token anyway")
	} else {
		username = user.Username
	}

	if err := s.register(username, token); err != nil {
		return "", err
	}
	return username, nil
}

// SignIn exchanges a password for a token and registers it.
func (s *Service) SignIn(ctx context.Context, username, password string) error {
	token, err := s.tv.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	return s.register(username, token)
}

// register persists the token and refreshes the primary cache when the
// account is the configured admin.
func (s *Service) register(username, token string) error {
	if err := s.creds.PutToken(username, token); err != nil {
		return fmt.Errorf("store token for %s: %w", username, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"username": username,
		"token":    events.RedactToken(token),
	}).Info("Account authorized")

	if username == s.admin {
		if err := s.creds.PutPrimaryCache(models.PrimaryCache{
			Token:      token,
			AcquiredAt: s.now(),
		}); err != nil {
			return fmt.Errorf("refresh primary cache: %w", err)
		}
	}
	return nil
}

// PrimaryToken returns the admin account's token for media server reads.
// A cached token younger than the TTL is used as-is. On expiry the admin's
// stored token is re-cached with a fresh acquisition time.
func (s *Service) PrimaryToken(ctx context.Context) (string, error) {
	if cache, err := s.creds.PrimaryCache(); err == nil && cache.Valid(s.now(), s.tokenTTL) {
		return cache.Token, nil
	}

	token, err := s.creds.Token(s.admin)
	if err != nil {
		return "", models.ErrNoPrimaryToken
	}

	if err := s.creds.PutPrimaryCache(models.PrimaryCache{
		Token:      token,
		AcquiredAt: s.now(),
	}); err != nil {
		return "", fmt.Errorf("refresh primary cache: %w", err)
	}

	s.logger.Debug("Primary token re-cached from credential store")
	return token, nil
}
