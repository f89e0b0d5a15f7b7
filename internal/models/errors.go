package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNotYetAuthorized is returned while a PIN has been created but the
	// user has not yet approved it on plex.tv. Retryable, not a failure.
	ErrNotYetAuthorized = errors.New("authorization not yet completed")

	// ErrNoPrimaryToken means no admin token is cached or registered, so the
	// local media server cannot be reached.
	ErrNoPrimaryToken = errors.New("no primary token available")
)

// UpstreamError wraps a failed call to plex.tv or the local media server.
// A snapshot-phase UpstreamError aborts the whole sync run; a per-account
// UpstreamError aborts only that account's processing.
type UpstreamError struct {
	Op         string // e.g. "create pin", "fetch watchlist"
	StatusCode int    // 0 for transport-level failures
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError builds an UpstreamError for an operation.
func NewUpstreamError(op string, status int, err error) *UpstreamError {
	return &UpstreamError{Op: op, StatusCode: status, Err: err}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
