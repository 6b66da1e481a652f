package vault

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/cache"
	"github.com/goliatone/go-photo-vault/query"
)

// AlbumKeyspace tags album cache entries.
func AlbumKeyspace() cache.Keyspace {
	return cache.NewKeyspace("albums", "album")
}

// AlbumService is the cache-aside front for albums. Albums are private to
// their owner, so every entry is cached under the owner scope and there is no
// public read path.
type AlbumService struct {
	albums      AlbumStore
	cache       cache.CacheService
	codec       cache.Codec
	invalidator *Invalidator
	logger      *zap.Logger

	keys cache.Keyspace
	ttl  time.Duration
}

func NewAlbumService(albums AlbumStore, svc cache.CacheService, codec cache.Codec, inv *Invalidator, logger *zap.Logger, ttl time.Duration) *AlbumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &AlbumService{
		albums:      albums,
		cache:       svc,
		codec:       codec,
		invalidator: inv,
		logger:      logger,
		keys:        AlbumKeyspace(),
		ttl:         ttl,
	}
}

// Create adds an album for the requester. Names collide per owner only; two
// users may both have an album called "Summer".
func (s *AlbumService) Create(ctx context.Context, requesterID, name string) (*Album, error) {
	if name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "album name is required")
	}

	album, err := s.albums.Create(ctx, &Album{OwnerID: requesterID, Name: name})
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, s.keys, requesterID, album.ID)
	return album, nil
}

// List returns the requester's albums for the given query.
func (s *AlbumService) List(ctx context.Context, requesterID string, params map[string]string) ([]*Album, error) {
	desc, err := query.Parse(params)
	if err != nil {
		return nil, err
	}

	key := s.keys.ListKey(requesterID, cache.ScopeOwner, desc.Fingerprint())

	return cache.GetOrFetch(ctx, s.cache, s.codec, s.logger, key, s.ttl, func(ctx context.Context) ([]*Album, error) {
		return s.albums.FindMany(ctx, requesterID, desc)
	})
}

// Get returns one of the requester's albums.
func (s *AlbumService) Get(ctx context.Context, requesterID, id string) (*Album, error) {
	key := s.keys.ItemKey(requesterID, id, cache.ScopeOwner)

	return cache.GetOrFetch(ctx, s.cache, s.codec, s.logger, key, s.ttl, func(ctx context.Context) (*Album, error) {
		return s.albums.FindOne(ctx, requesterID, id)
	})
}

// Update renames the requester's album.
func (s *AlbumService) Update(ctx context.Context, requesterID, id string, patch AlbumPatch) (*Album, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "album name is required")
	}

	album, err := s.albums.FindOneAndUpdate(ctx, requesterID, id, patch)
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, s.keys, requesterID, id)
	return album, nil
}

// Delete removes the requester's album. Photos that referenced it keep their
// album id; the reference is weak.
func (s *AlbumService) Delete(ctx context.Context, requesterID, id string) error {
	if _, err := s.albums.FindOneAndDelete(ctx, requesterID, id); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx, s.keys, requesterID, id)
	return nil
}
