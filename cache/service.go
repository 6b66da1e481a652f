package cache

import (
	"context"
	"time"
)

// CacheService is the look-aside cache port. Values are opaque byte slices
// produced by a Codec; keys are built by a Keyspace. Implementations must be
// safe for concurrent use and must treat an absent key as a normal outcome,
// not an error.
//
// Callers never treat the cache as authoritative: every read path falls back
// to the resource store when a key is absent or the backend is unreachable.
type CacheService interface {
	// Get returns the value stored under key. The second return value is
	// false when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetWithTTL stores value under key with the given expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteKeys removes the given keys. Keys that do not exist are ignored.
	DeleteKeys(ctx context.Context, keys []string) error

	// FindKeysByPrefix returns every key that starts with prefix. Backends
	// may implement this as a full key scan; callers tolerate O(keys) cost
	// and only use it for bulk invalidation.
	FindKeysByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// DefaultTTL is the expiry applied to cache entries unless configured
// otherwise. Staleness up to this bound is an accepted tradeoff; entries are
// never updated in place, only deleted by invalidation or expired.
const DefaultTTL = 3600 * time.Second
