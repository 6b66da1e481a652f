package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/vault"
)

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-memory cache.CacheService for tests. The Fail switches
// make the corresponding operation return a network error so degradation
// paths can be exercised without a broken backend.
type MemoryCache struct {
	entries *xsync.MapOf[string, cacheEntry]

	mu   sync.Mutex
	ttls []time.Duration

	FailGet    bool
	FailSet    bool
	FailDelete bool
	FailScan   bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: xsync.NewMapOf[string, cacheEntry]()}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.FailGet {
		return nil, false, errors.New(errors.CodeNetwork, "cache get unavailable")
	}
	entry, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		m.entries.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCache) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.FailSet {
		return errors.New(errors.CodeNetwork, "cache set unavailable")
	}
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}
	m.entries.Store(key, entry)

	m.mu.Lock()
	m.ttls = append(m.ttls, ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) DeleteKeys(_ context.Context, keys []string) error {
	if m.FailDelete {
		return errors.New(errors.CodeNetwork, "cache delete unavailable")
	}
	for _, key := range keys {
		m.entries.Delete(key)
	}
	return nil
}

func (m *MemoryCache) FindKeysByPrefix(_ context.Context, prefix string) ([]string, error) {
	if m.FailScan {
		return nil, errors.New(errors.CodeNetwork, "cache scan unavailable")
	}
	var keys []string
	m.entries.Range(func(key string, _ cacheEntry) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	return keys, nil
}

// Has reports whether key is currently cached. Test-only inspection helper.
func (m *MemoryCache) Has(key string) bool {
	_, ok := m.entries.Load(key)
	return ok
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	return m.entries.Size()
}

// WriteTTLs returns the ttl passed to each SetWithTTL call, in order.
func (m *MemoryCache) WriteTTLs() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.ttls...)
}

// MemoryBlobStore is an in-memory vault.BlobStore for tests. It records every
// upload and delete so saga compensation can be asserted.
type MemoryBlobStore struct {
	mu      sync.Mutex
	seq     int
	objects map[string][]byte

	Uploads []string
	Deletes []string

	FailUpload bool
	FailDelete bool
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: map[string][]byte{}}
}

func (m *MemoryBlobStore) Upload(_ context.Context, data []byte, folder string) (vault.BlobRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpload {
		return vault.BlobRef{}, errors.New(errors.CodeNetwork, "blob store unavailable")
	}

	m.seq++
	id := fmt.Sprintf("%s/blob-%d", folder, m.seq)
	m.objects[id] = data
	m.Uploads = append(m.Uploads, id)

	return vault.BlobRef{ID: id, URL: "https://blobs.test/" + id}, nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete {
		return errors.New(errors.CodeNetwork, "blob store unavailable")
	}

	delete(m.objects, id)
	m.Deletes = append(m.Deletes, id)
	return nil
}

// Stored reports whether the object identified by id is still held.
func (m *MemoryBlobStore) Stored(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[id]
	return ok
}
