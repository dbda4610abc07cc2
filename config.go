package ramik

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/muhammadarsalan100/ramik/store"
)

// DefaultBaseURL is the origin of the production backend.
const DefaultBaseURL = "https://ramik-backend.onrender.com"

// Config contains configuration options for the Client.
type Config struct {
	// BaseURL is the fixed backend origin every request path is appended to.
	// Default: DefaultBaseURL.
	BaseURL string

	// SessionTTL is how long a login stays valid on the client side.
	// If the token carries an earlier exp claim, that wins.
	// Default: 24 hours.
	SessionTTL time.Duration

	// SessionStore persists the session between runs.
	// Default: SQLite store at DatabasePath.
	SessionStore store.SessionStore

	// DatabasePath is the path for the default SQLite database.
	// Only used if SessionStore is nil.
	// Default: "ramik.db".
	DatabasePath string

	// Profile names the session slot in the default SQLite store.
	// Default: "default".
	Profile string

	// HTTPClient is used for every backend and media call.
	// Default: a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds a single HTTP exchange when HTTPClient is nil.
	// Default: 30 seconds.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing backend requests. Zero disables it.
	RequestsPerSecond float64

	// Burst is the limiter burst size when RequestsPerSecond is set.
	// Default: 1.
	Burst int

	// Logger receives request and session lifecycle logs.
	// Default: slog.Default().
	Logger *slog.Logger

	// Now is the clock used for expiry checks.
	// Default: time.Now.
	Now func() time.Time

	// UserAgent is sent on every backend request.
	// Default: "ramik-go/" + Version.
	UserAgent string

	// Media configures signed image uploads.
	Media MediaConfig
}

// MediaConfig configures the external image-hosting service.
type MediaConfig struct {
	// Endpoint is the upload API root.
	// Default: "https://api.cloudinary.com/v1_1".
	Endpoint string

	CloudName string
	APIKey    string
	APISecret string

	// Folder is the target folder for product images.
	// Default: "products".
	Folder string

	// KeepOrphans disables the best-effort deletion of already uploaded
	// images when a product submission fails part way.
	KeepOrphans bool
}

func (m MediaConfig) configured() bool {
	return m.CloudName != "" && m.APIKey != "" && m.APISecret != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		SessionTTL:   24 * time.Hour,
		DatabasePath: "ramik.db",
		Profile:      store.DefaultProfile,
		Timeout:      30 * time.Second,
		Burst:        1,
		UserAgent:    "ramik-go/" + Version,
		Media: MediaConfig{
			Endpoint: "https://api.cloudinary.com/v1_1",
			Folder:   "products",
		},
	}
}

// applyDefaults fills in default values for zero-value fields.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = defaults.SessionTTL
	}
	if c.DatabasePath == "" {
		c.DatabasePath = defaults.DatabasePath
	}
	if c.Profile == "" {
		c.Profile = defaults.Profile
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.Burst <= 0 {
		c.Burst = defaults.Burst
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Media.Endpoint == "" {
		c.Media.Endpoint = defaults.Media.Endpoint
	}
	if c.Media.Folder == "" {
		c.Media.Folder = defaults.Media.Folder
	}
}
