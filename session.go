package ramik

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/muhammadarsalan100/ramik/store"
)

// Role is a user's privilege level on the storefront.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserRegion is the region attached to a user. The login endpoint returns
// {id, name}; the user list returns only the name.
type UserRegion struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts either a region object or a bare region name.
func (r *UserRegion) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Name)
	}
	type plain UserRegion
	return json.Unmarshal(data, (*plain)(r))
}

// User is the backend's user record.
type User struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	PhoneNumber   *string     `json:"phoneNumber"`
	Address       *string     `json:"address"`
	Role          Role        `json:"role"`
	Active        bool        `json:"active"`
	EmailVerified bool        `json:"emailVerified,omitempty"`
	Region        *UserRegion `json:"region"`
}

// Session is the client-held proof of authentication.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt)
}

// Sessions is the token store: a session persisted in a store.SessionStore
// with expiry evaluated against an injectable clock.
type Sessions struct {
	store store.SessionStore
	now   func() time.Time
}

// NewSessions wraps a store. A nil clock means time.Now.
func NewSessions(s store.SessionStore, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{store: s, now: now}
}

// Save persists token, expiry and user together.
func (s *Sessions) Save(ctx context.Context, session Session) error {
	if session.Token == "" || session.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: session needs a token and an expiry", ErrInvalidInput)
	}

	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("ramik: failed to marshal user: %w", err)
	}

	return s.store.Save(ctx, &store.Session{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		CreatedAt: s.now(),
	})
}

// Read returns the stored session, or nil if there is none.
// A stored record missing any field, or whose user cannot be decoded, is
// cleared and reported as absent.
func (s *Sessions) Read(ctx context.Context) (*Session, error) {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if !rec.Complete() {
		return nil, s.store.Clear(ctx)
	}

	var user User
	if err := json.Unmarshal(rec.User, &user); err != nil {
		return nil, s.store.Clear(ctx)
	}

	return &Session{
		Token:     rec.Token,
		ExpiresAt: rec.ExpiresAt,
		User:      user,
	}, nil
}

// Expired reports true if no expiry is stored or the current time is at or
// past the stored expiry.
func (s *Sessions) Expired(ctx context.Context) (bool, error) {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return true, err
	}
	if rec == nil || rec.ExpiresAt.IsZero() {
		return true, nil
	}
	return !s.now().Before(rec.ExpiresAt), nil
}

// Clear removes the stored session.
func (s *Sessions) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Valid reports whether a complete, unexpired session is stored.
// An expired session is cleared as a side effect.
func (s *Sessions) Valid(ctx context.Context) (bool, error) {
	expired, err := s.Expired(ctx)
	if err != nil {
		return false, err
	}
	if expired {
		return false, s.Clear(ctx)
	}
	sess, err := s.Read(ctx)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

// Close closes the underlying store.
func (s *Sessions) Close() error {
	return s.store.Close()
}

// active returns the unexpired session or ErrSessionExpired, clearing the
// store when it is expired or incomplete.
func (s *Sessions) active(ctx context.Context) (*Session, error) {
	expired, err := s.Expired(ctx)
	if err != nil {
		return nil, err
	}
	if expired {
		if err := s.Clear(ctx); err != nil {
			return nil, errors.Join(ErrSessionExpired, err)
		}
		return nil, ErrSessionExpired
	}

	sess, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionExpired
	}
	return sess, nil
}
