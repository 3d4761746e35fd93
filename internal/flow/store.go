package flow

import (
	"context"
	"errors"
)

// ErrSessionNotFound indicates no session exists for the user.
var ErrSessionNotFound = errors.New("session not found")

// Store defines the persistence contract for order sessions. Implementations
// must return copies: callers own a session only for the duration of one
// event.
type Store interface {
	// Get returns the user's session or ErrSessionNotFound.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Set saves the session for the user.
	Set(ctx context.Context, userID int64, session *Session) error
	// Clear removes the user's session.
	Clear(ctx context.Context, userID int64) error
	// GetAll returns every stored session.
	GetAll(ctx context.Context) ([]*Session, error)
}
