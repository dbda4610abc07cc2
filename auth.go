package ramik

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is what a successful login yields.
type LoginResult struct {
	Session   Session
	CartCount int
}

type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Data   struct {
		User      User `json:"user"`
		CartCount int  `json:"cartCount"`
	} `json:"data"`
}

// Login authenticates against the backend and persists the session.
// The session expires SessionTTL after login, or at the token's exp claim if
// that comes first.
func (c *Client) Login(ctx context.Context, cred Credentials) (*LoginResult, error) {
	if err := c.check(cred); err != nil {
		return nil, err
	}

	raw, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   cred,
		Public: true,
	})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: login: %v", ErrMalformedResponse, err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}

	session := Session{
		Token:     resp.Token,
		ExpiresAt: c.expiry(resp.Token),
		User:      resp.Data.User,
	}
	if err := c.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("ramik: failed to save session: %w", err)
	}

	c.log.InfoContext(ctx, "logged in",
		"user_id", session.User.ID,
		"role", session.User.Role,
		"expires_at", session.ExpiresAt,
	)

	return &LoginResult{Session: session, CartCount: resp.Data.CartCount}, nil
}

// expiry returns now+SessionTTL, capped by the token's exp claim when the
// token is a JWT. The signature is not checked; the backend does that.
func (c *Client) expiry(token string) time.Time {
	expires := c.config.Now().Add(c.config.SessionTTL)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return expires
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expires
	}
	if exp.Time.Before(expires) {
		return exp.Time
	}
	return expires
}

// Logout clears the stored session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("ramik: failed to clear session: %w", err)
	}
	c.log.InfoContext(ctx, "logged out")
	return nil
}

// Authenticated reports whether an unexpired session is stored.
func (c *Client) Authenticated(ctx context.Context) (bool, error) {
	return c.sessions.Valid(ctx)
}

// CurrentUser returns the cached profile of the logged-in user, or nil.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	sess, err := c.sessions.Read(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	return &sess.User, nil
}
