// Package config loads the CLI configuration from ramik.yaml and RAMIK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/internal/logger"
	"github.com/muhammadarsalan100/ramik/store"
)

// EnvPrefix is prepended to every environment override, with dots in the key
// replaced by underscores: RAMIK_STORE_DRIVER, RAMIK_MEDIA_API_SECRET.
const EnvPrefix = "RAMIK"

// Config is the complete CLI configuration.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	Profile           string        `mapstructure:"profile"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`

	Store  StoreConfig   `mapstructure:"store"`
	Media  MediaConfig   `mapstructure:"media"`
	Cache  CacheConfig   `mapstructure:"cache"`
	Server ServerConfig  `mapstructure:"server"`
	Log    logger.Config `mapstructure:"log"`
}

// StoreConfig selects where the session is persisted.
type StoreConfig struct {
	// Driver is memory, sqlite, mysql, postgres or redis.
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// DSN is the MySQL or PostgreSQL data source name.
	DSN   string      `mapstructure:"dsn"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type MediaConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	CloudName   string `mapstructure:"cloud_name"`
	APIKey      string `mapstructure:"api_key"`
	APISecret   string `mapstructure:"api_secret"`
	Folder      string `mapstructure:"folder"`
	KeepOrphans bool   `mapstructure:"keep_orphans"`
}

type CacheConfig struct {
	// MaxAge is how long a query result stays fresh without an invalidation.
	// Zero keeps it fresh until invalidated.
	MaxAge time.Duration `mapstructure:"max_age"`
}

// ServerConfig configures the local dashboard server.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	PublicPath   string        `mapstructure:"public_path"`
	GeoIPPath    string        `mapstructure:"geoip_path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Load reads path, or ramik.yaml from the working directory and the user
// config directory when path is empty, then applies environment overrides.
// A missing default file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ramik")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "ramik"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	switch c.Store.Driver {
	case "memory", "sqlite":
	case "mysql", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for %s", c.Store.Driver)
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return errors.New("store.redis.addr is required for redis")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative, got %v", c.RequestsPerSecond)
	}
	return nil
}

// OpenStore opens the configured session store.
func (c *Config) OpenStore() (store.SessionStore, error) {
	switch c.Store.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewSQLite(c.Store.Path, c.Profile)
	case "mysql":
		return store.NewMySQLFromDSN(c.Store.DSN, c.Profile)
	case "postgres":
		return store.NewPostgresFromDSN(c.Store.DSN, c.Profile)
	case "redis":
		return store.NewRedisFromConfig(store.RedisConfig{
			Addr:      c.Store.Redis.Addr,
			Password:  c.Store.Redis.Password,
			DB:        c.Store.Redis.DB,
			KeyPrefix: c.Store.Redis.KeyPrefix,
			Profile:   c.Profile,
		})
	default:
		return nil, fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
}

// Client builds the library configuration around an opened store.
func (c *Config) Client(s store.SessionStore, log *slog.Logger) ramik.Config {
	return ramik.Config{
		BaseURL:           c.BaseURL,
		SessionTTL:        c.SessionTTL,
		SessionStore:      s,
		Profile:           c.Profile,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		Logger:            log,
		Media: ramik.MediaConfig{
			Endpoint:    c.Media.Endpoint,
			CloudName:   c.Media.CloudName,
			APIKey:      c.Media.APIKey,
			APISecret:   c.Media.APISecret,
			Folder:      c.Media.Folder,
			KeepOrphans: c.Media.KeepOrphans,
		},
	}
}

func setDefaults(v *viper.Viper) {
	lib := ramik.DefaultConfig()

	v.SetDefault("base_url", lib.BaseURL)
	v.SetDefault("profile", lib.Profile)
	v.SetDefault("session_ttl", lib.SessionTTL)
	v.SetDefault("timeout", lib.Timeout)
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("burst", lib.Burst)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", lib.DatabasePath)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.redis.addr", "")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "ramik:session:")

	v.SetDefault("media.endpoint", lib.Media.Endpoint)
	v.SetDefault("media.cloud_name", "")
	v.SetDefault("media.api_key", "")
	v.SetDefault("media.api_secret", "")
	v.SetDefault("media.folder", lib.Media.Folder)
	v.SetDefault("media.keep_orphans", false)

	v.SetDefault("cache.max_age", 0)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.public_path", "/")
	v.SetDefault("server.geoip_path", "")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/ramik.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.with_caller", false)
}
