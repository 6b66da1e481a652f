package redisinfra

import (
	"context"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/redis/go-redis/v9"
)

// Config holds the connection settings for the redis cache backend.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "must not be empty"}
	}
	if c.DB < 0 {
		return &ConfigError{Field: "DB", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// RedisStore adapts a go-redis client to the byte-oriented cache port using
// GET / SETEX / DEL / KEYS, the protocol surface the shared cache exposes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates the shared cache backend. Connection health is not
// probed here; the first degraded operation surfaces through the read-path
// fallback instead of failing startup.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{client: client}, nil
}

// Ping verifies connectivity. A failure here is advisory; reads fall back to
// the store either way.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "redis ping failed")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get returns the value stored under key, reporting absence via the boolean.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.CodeNetwork, "redis GET %s failed", key)
	}
	return data, true, nil
}

// SetWithTTL stores value under key with the given expiry (SETEX).
func (s *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, errors.CodeNetwork, "redis SETEX %s failed", key)
	}
	return nil
}

// DeleteKeys removes the given keys in a single DEL.
func (s *RedisStore) DeleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "redis DEL failed")
	}
	return nil
}

// FindKeysByPrefix lists keys matching prefix via KEYS. This is O(keyspace)
// on the server; acceptable for bounded invalidation workloads, and the
// documented place a high-cardinality deployment would substitute a
// maintained secondary index.
func (s *RedisStore) FindKeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.client.Keys(ctx, escapeGlob(prefix)+"*").Result()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNetwork, "redis KEYS %s* failed", prefix)
	}
	return keys, nil
}

// escapeGlob neutralizes redis glob metacharacters in a literal prefix so a
// key segment containing '*' or '[' cannot widen the match.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
