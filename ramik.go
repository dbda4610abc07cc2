// Package ramik is a client for the Ramik perfume storefront admin API.
//
// A Client keeps the login session in a pluggable store, injects the bearer
// token into every authenticated request, and clears the session as soon as
// it expires locally or the backend rejects it.
package ramik

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/muhammadarsalan100/ramik/store"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.3.0"

// Client is the entry point to the admin API.
type Client struct {
	config   Config
	base     *url.URL
	http     *http.Client
	sessions *Sessions
	limiter  *rate.Limiter
	validate *validator.Validate
	metrics  *clientMetrics
	log      *slog.Logger

	Categories          *CategoryService
	Languages           *LanguageService
	Regions             *RegionService
	Users               *UserService
	Products            *ProductService
	ProductSizes        *ProductSizeService
	ProductTranslations *ProductTranslationService
	Media               *Media
}

// New creates a new Client with the given configuration.
// If SessionStore is not provided, a SQLite store at DatabasePath is used.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("ramik: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("ramik: base URL %q must be absolute", cfg.BaseURL)
	}

	sessionStore := cfg.SessionStore
	if sessionStore == nil {
		sqliteStore, err := store.NewSQLite(cfg.DatabasePath, cfg.Profile)
		if err != nil {
			return nil, fmt.Errorf("ramik: failed to initialize SQLite store: %w", err)
		}
		sessionStore = sqliteStore
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		config:   cfg,
		base:     base,
		http:     httpClient,
		sessions: NewSessions(sessionStore, cfg.Now),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  newClientMetrics(),
		log:      cfg.Logger.With("component", "ramik"),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	c.Categories = &CategoryService{c: c}
	c.Languages = &LanguageService{c: c}
	c.Regions = &RegionService{c: c}
	c.Users = &UserService{c: c}
	c.Products = &ProductService{c: c}
	c.ProductSizes = &ProductSizeService{c: c}
	c.ProductTranslations = &ProductTranslationService{c: c}
	c.Media = newMedia(cfg.Media, httpClient, cfg.Now, c.log)

	return c, nil
}

// Sessions returns the token store backing this client.
func (c *Client) Sessions() *Sessions {
	return c.sessions
}

// Close releases all resources held by the client.
// Should be called when the application shuts down.
func (c *Client) Close() error {
	if c.sessions == nil {
		return nil
	}
	if err := c.sessions.Close(); err != nil {
		return fmt.Errorf("ramik: error during close: %w", err)
	}
	return nil
}

// check validates the shape of a request payload.
func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
