package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FetchFn loads a value from the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// GetOrFetch implements the cache-aside read path: look the key up, fall back
// to fetch on a miss, write the fetched value back with the given TTL.
//
// Cache failures never fail the read. A backend error on lookup or write-back
// is logged as a degradation and the call proceeds against the source; only
// fetch errors propagate, and failed fetches are never cached.
func GetOrFetch[T any](ctx context.Context, svc CacheService, codec Codec, log *zap.Logger, key string, ttl time.Duration, fetch FetchFn[T]) (T, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, found, err := svc.Get(ctx, key)
	if err != nil {
		log.Warn("cache read degraded, falling back to store",
			zap.String("key", key), zap.Error(err))
	} else if found {
		var cached T
		if err := codec.Unmarshal(data, &cached); err != nil {
			// A poisoned entry behaves like a miss; it will be overwritten below.
			log.Warn("cache entry decode failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		} else {
			return cached, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if data, err := codec.Marshal(value); err != nil {
		log.Warn("cache value encode failed, skipping write-back",
			zap.String("key", key), zap.Error(err))
	} else if err := svc.SetWithTTL(ctx, key, data, ttl); err != nil {
		log.Warn("cache write-back degraded",
			zap.String("key", key), zap.Error(err))
	}

	return value, nil
}
