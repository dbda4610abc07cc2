package ramik

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muhammadarsalan100/ramik/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// backend is an httptest server that counts every request it receives.
type backend struct {
	*httptest.Server
	mux  *http.ServeMux
	hits atomic.Int64
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux()}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) handle(pattern string, fn http.HandlerFunc) {
	b.mux.HandleFunc(pattern, fn)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func newTestClient(t *testing.T, b *backend, clock *fakeClock, tweak ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:      b.URL,
		SessionStore: store.NewMemoryStore(),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:          clock.Now,
		Media: MediaConfig{
			Endpoint:  b.URL,
			CloudName: "demo",
			APIKey:    "key-1",
			APISecret: "abcd",
		},
	}
	for _, fn := range tweak {
		fn(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// loggedIn stores a session valid for a day from the clock's current time.
func loggedIn(t *testing.T, c *Client, clock *fakeClock) {
	t.Helper()
	err := c.Sessions().Save(context.Background(), Session{
		Token:     "tok-test",
		ExpiresAt: clock.Now().Add(24 * time.Hour),
		User:      User{ID: 1, Name: "Admin", Email: "admin@ramik.test", Role: RoleAdmin, Active: true},
	})
	if err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
}
