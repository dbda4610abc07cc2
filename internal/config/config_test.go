package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/store"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ramik.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "{}\n"))
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if cfg.BaseURL != ramik.DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL, got %v", cfg.SessionTTL)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "ramik.db" {
		t.Errorf("Unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Media.Folder != "products" {
		t.Errorf("Expected products folder, got %q", cfg.Media.Folder)
	}
	if cfg.Server.PublicPath != "/" {
		t.Errorf("Expected public path /, got %q", cfg.Server.PublicPath)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
base_url: http://localhost:4000
session_ttl: 2h
store:
  driver: memory
media:
  cloud_name: demo
  api_key: key-1
cache:
  max_age: 30s
log:
  level: debug
`)
	t.Setenv("RAMIK_MEDIA_API_SECRET", "from-env")
	t.Setenv("RAMIK_BASE_URL", "http://override:5000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if cfg.BaseURL != "http://override:5000" {
		t.Errorf("Env should override file, got %s", cfg.BaseURL)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected 2h, got %v", cfg.SessionTTL)
	}
	if cfg.Media.CloudName != "demo" || cfg.Media.APISecret != "from-env" {
		t.Errorf("Unexpected media config %+v", cfg.Media)
	}
	if cfg.Cache.MaxAge != 30*time.Second {
		t.Errorf("Expected 30s cache max age, got %v", cfg.Cache.MaxAge)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug log level, got %q", cfg.Log.Level)
	}

	lib := cfg.Client(store.NewMemoryStore(), nil)
	if lib.BaseURL != cfg.BaseURL || lib.Media.APIKey != "key-1" || lib.SessionStore == nil {
		t.Errorf("Client config not carried over: %+v", lib)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for a missing explicit file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{BaseURL: "http://x", Store: StoreConfig{Driver: "memory"}}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no base url", func(c *Config) { c.BaseURL = "" }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"mysql without dsn", func(c *Config) { c.Store.Driver = "mysql" }, true},
		{"postgres with dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DSN = "postgres://x" }, false},
		{"redis without addr", func(c *Config) { c.Store.Driver = "redis" }, true},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	c := Config{Profile: "ops", Store: StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "s.db")}}
	s, err := c.OpenStore()
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*store.SQLiteStore); !ok {
		t.Errorf("Expected *store.SQLiteStore, got %T", s)
	}

	c.Store.Driver = "memory"
	m, err := c.OpenStore()
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	if _, ok := m.(*store.MemoryStore); !ok {
		t.Errorf("Expected *store.MemoryStore, got %T", m)
	}
}
