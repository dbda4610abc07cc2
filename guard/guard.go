// Package guard gates protected dashboard pages behind a valid stored
// session.
//
// Every request to a protected path re-reads the session store. An expired
// session is cleared, and a missing or expired one is redirected to the
// public entry page without the protected handler ever running.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muhammadarsalan100/ramik"
)

// ErrNoSession is reported when no session is stored.
var ErrNoSession = errors.New("guard: no session")

// Defaults matching the storefront's route layout.
var (
	DefaultPublicRoutes    = []string{"/", "/login", "/register", "/forgot-password", "/verify-email", "/setup-2fa"}
	DefaultProtectedRoutes = []string{"/dashboard"}
)

// Guard checks sessions for protected routes.
type Guard struct {
	sessions   *ramik.Sessions
	publicPath string
	public     []string
	protected  []string
	geoip      *GeoIP
	log        *slog.Logger
}

// Option customises a Guard.
type Option func(*Guard)

// WithLogger sets the logger for redirect events.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) { g.log = l }
}

// WithGeoIP adds country and city to logged visitors.
func WithGeoIP(db *GeoIP) Option {
	return func(g *Guard) { g.geoip = db }
}

// WithRoutes replaces the public (exact match) and protected (prefix match)
// route lists.
func WithRoutes(public, protected []string) Option {
	return func(g *Guard) {
		g.public = public
		g.protected = protected
	}
}

// New creates a Guard that redirects to publicPath ("/" when empty).
func New(sessions *ramik.Sessions, publicPath string, opts ...Option) *Guard {
	if publicPath == "" {
		publicPath = "/"
	}
	g := &Guard{
		sessions:   sessions,
		publicPath: publicPath,
		public:     DefaultPublicRoutes,
		protected:  DefaultProtectedRoutes,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With("component", "guard")
	return g
}

// Check returns nil when a complete, unexpired session is stored. An expired
// session is cleared and reported as ramik.ErrSessionExpired.
func (g *Guard) Check(ctx context.Context) error {
	expired, err := g.sessions.Expired(ctx)
	if err != nil {
		return err
	}
	if expired {
		if err := g.sessions.Clear(ctx); err != nil {
			return err
		}
		return ramik.ErrSessionExpired
	}

	s, err := g.sessions.Read(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}
	return nil
}

// Protects reports whether p needs a session. Public routes, API routes and
// static assets never do.
func (g *Guard) Protects(p string) bool {
	if slices.Contains(g.public, p) || isAsset(p) {
		return false
	}
	for _, prefix := range g.protected {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Allow reports whether r may reach a protected handler, logging the
// visitor when it may not.
func (g *Guard) Allow(r *http.Request) bool {
	if !g.Protects(r.URL.Path) {
		return true
	}
	err := g.Check(r.Context())
	if err == nil {
		return true
	}

	v := Inspect(r)
	g.geoip.Locate(&v)
	level := slog.LevelInfo
	if !errors.Is(err, ErrNoSession) && !errors.Is(err, ramik.ErrSessionEnded) {
		level = slog.LevelError
	}
	g.log.Log(r.Context(), level, "redirecting unauthenticated request",
		"path", r.URL.Path, "reason", err, "visitor", v)
	return false
}

// Handler wraps next with the guard.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Allow(r) {
			http.Redirect(w, r, g.publicPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Gin returns the guard as gin middleware.
func (g *Guard) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Allow(c.Request) {
			c.Redirect(http.StatusFound, g.publicPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// isAsset follows the storefront's middleware matcher: API routes, framework
// static paths, the favicon, the public folder and anything with a file
// extension.
func isAsset(p string) bool {
	for _, prefix := range []string{"/api", "/_next/static", "/_next/image", "/favicon.ico", "/public", "/static"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return strings.Contains(path.Base(p), ".")
}
