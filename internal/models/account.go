package models

import "time"

// Role distinguishes the admin account from secondary ones.
type Role string

const (
	// RolePrimary marks the account whose token also authenticates against
	// the local media server.
	RolePrimary Role = "primary"

	// RoleSecondary marks every other registered account.
	RoleSecondary Role = "secondary"
)

// Account is a registered Plex account with a durable access token.
type Account struct {
	Username string `json:"username"`
	Token    string `json:"-"` // never serialized or logged in full
	Role     Role   `json:"role"`
}

// IsPrimary reports whether this is the admin account.
func (a Account) IsPrimary() bool { return a.Role == RolePrimary }

// PrimaryCache is the cached admin token with its acquisition time.
type PrimaryCache struct {
	Token      string    `json:"token"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Valid reports whether the cached token is still within its TTL at now.
func (c PrimaryCache) Valid(now time.Time, ttl time.Duration) bool {
	if c.Token == "" {
		return false
	}
	return now.Sub(c.AcquiredAt) < ttl
}
