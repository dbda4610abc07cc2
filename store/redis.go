package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements SessionStore using Redis.
// The whole session is one JSON value whose Redis TTL ends at the session
// expiry, so an expired session disappears on its own.
type RedisStore struct {
	client *redis.Client
	key    string
}

// redisSession is the JSON layout stored under the profile key.
type redisSession struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      json.RawMessage `json:"user"`
	CreatedAt time.Time       `json:"created_at"`
}

// RedisConfig contains configuration options for Redis.
type RedisConfig struct {
	// Addr is the Redis server address (e.g., "localhost:6379")
	Addr string

	// Password is the Redis password (empty for no auth)
	Password string

	// DB is the Redis database number (0-15)
	DB int

	// KeyPrefix is prepended to the profile name (default: "ramik:session:").
	// typically ends with a colon.
	KeyPrefix string

	// Profile selects which session this store holds.
	Profile string
}

// NewRedis creates a Redis session store from an existing client.
func NewRedis(client *redis.Client, keyPrefix, profile string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "ramik:session:"
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &RedisStore{
		client: client,
		key:    keyPrefix + profile,
	}
}

// NewRedisFromConfig connects to Redis and creates a session store.
func NewRedisFromConfig(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return NewRedis(client, cfg.KeyPrefix, cfg.Profile), nil
}

// Save writes the session as a single key with a TTL matching its expiry.
func (r *RedisStore) Save(ctx context.Context, session *Session) error {
	ttl, err := sessionTTL(session.ExpiresAt, time.Now())
	if err != nil {
		if cerr := r.Clear(ctx); cerr != nil {
			return cerr
		}
		return err
	}

	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	data, err := json.Marshal(redisSession{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User,
		CreatedAt: createdAt,
	})
	if err != nil {
		return fmt.Errorf("redis: failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to save session: %w", err)
	}
	return nil
}

// sessionTTL is the key lifetime for a session expiring at expiresAt.
func sessionTTL(expiresAt, now time.Time) (time.Duration, error) {
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return 0, fmt.Errorf("redis: %w at %s", ErrExpired, expiresAt.Format(time.RFC3339))
	}
	return ttl, nil
}

// Load returns the stored session.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: failed to load session: %w", err)
	}

	var rs redisSession
	if err := json.Unmarshal(val, &rs); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal session: %w", err)
	}

	return &Session{
		Token:     rs.Token,
		ExpiresAt: rs.ExpiresAt,
		User:      []byte(rs.User),
		CreatedAt: rs.CreatedAt,
	}, nil
}

// Clear deletes the session key.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
