package store

import (
	"context"
	"errors"
	"time"
)

// ErrExpired is returned by stores that refuse to persist a session whose
// expiry has already passed.
var ErrExpired = errors.New("store: session already expired")

// DefaultProfile is the profile name used when none is configured.
const DefaultProfile = "default"

// Session is the persisted form of an authenticated session.
// The user profile is kept as raw JSON so this package does not depend on
// the API types.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      []byte
	CreatedAt time.Time
}

// Complete reports whether all three session fields are present.
// A record missing any of them must be treated as absent.
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && !s.ExpiresAt.IsZero() && len(s.User) > 0
}

// SessionStore defines the interface for session persistence backends.
// A store instance is bound to a single profile and holds at most one session.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Save persists the session, replacing any previous one.
	// Token, expiry and user are written in a single operation so no reader
	// ever observes a partially saved session.
	Save(ctx context.Context, session *Session) error

	// Load returns the stored session, or (nil, nil) if there is none.
	Load(ctx context.Context) (*Session, error)

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
