// Package cache defines the look-aside cache port and the key layout shared
// by every resource type.
//
// # Overview
//
// The package exports:
//
//   - CacheService: a byte-oriented key/value port with TTL expiry,
//     multi-key deletion and prefix scans (the operations bulk invalidation
//     needs)
//   - Codec: value serialization, msgpack by default
//   - Keyspace: cache key construction per resource type, including the
//     owner/public scope tags
//   - GetOrFetch: the generic cache-aside read helper
//
// # Key layout
//
// List entries live under "{type}:{owner}:{scope}:{fingerprint}" where the
// fingerprint is the digest of a canonical query descriptor (see the query
// package). Single items live under "{item}:{owner}:{id}:{scope}". The
// "{type}:{owner}:" prefix therefore covers every cached list variant for one
// owner, which is what the invalidation coordinator deletes on writes.
//
// # Degradation
//
// The cache is never authoritative. GetOrFetch downgrades every backend
// failure to a log entry and a store fallback; a cache outage slows reads
// down but never fails them, and a stale entry self-heals once its TTL
// lapses.
//
// Backends live in internal/cacheinfra (sturdyc, in-process) and
// internal/redisinfra (redis, shared).
package cache
