package ramik

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Request describes one call to the backend.
type Request struct {
	Method string
	// Path is appended to the base URL, e.g. "/api/categories".
	Path string
	// Query is encoded onto the URL when non-empty.
	Query url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// Public skips the session check and the Authorization header.
	Public bool
}

// Do issues an authenticated request and returns the raw JSON body of a 2xx
// response. An empty 2xx body yields a nil result.
//
// When authentication is required and the stored session is expired, the
// session is cleared and ErrSessionExpired is returned without touching the
// network. A 401 on an authenticated call clears the session and returns
// ErrUnauthorized. Any other non-2xx status is a *RequestError.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}

	var token string
	if !r.Public {
		sess, err := c.sessions.active(ctx)
		if err != nil {
			if errors.Is(err, ErrSessionExpired) {
				c.log.InfoContext(ctx, "session expired, request not sent", "method", r.Method, "path", r.Path)
			}
			return nil, err
		}
		token = sess.Token
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("ramik: failed to encode %s %s body: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.base.String() + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("ramik: failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ramik: rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(r.Method, r.Path, "error", time.Since(start))
		return nil, fmt.Errorf("ramik: %s %s: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.observe(r.Method, r.Path, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("ramik: failed to read %s %s response: %w", r.Method, r.Path, err)
	}

	c.log.DebugContext(ctx, "backend request",
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized && !r.Public {
		c.endSession(ctx, "unauthorized")
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRequestError(r.Method, r.Path, resp.StatusCode, data)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s returned non-JSON body", ErrMalformedResponse, r.Method, r.Path)
	}
	return json.RawMessage(data), nil
}

// endSession clears the stored session after the backend rejected it.
func (c *Client) endSession(ctx context.Context, reason string) {
	if err := c.sessions.Clear(ctx); err != nil {
		c.log.ErrorContext(ctx, "failed to clear session", "reason", reason, "error", err)
		return
	}
	c.log.InfoContext(ctx, "session cleared", "reason", reason)
}

// call issues r and decodes the envelope payload into T.
// name is the key the payload may be nested under inside "data".
func call[T any](ctx context.Context, c *Client, r Request, name string) (T, error) {
	raw, err := c.Do(ctx, r)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeData[T](raw, name)
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}
