package vault

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/cache"
	"github.com/goliatone/go-photo-vault/query"
)

// PhotoKeyspace tags photo cache entries. Lists live under "photos:", items
// under "photo:".
func PhotoKeyspace() cache.Keyspace {
	return cache.NewKeyspace("photos", "photo")
}

// UploadPhotoInput carries the payload and metadata for one upload.
type UploadPhotoInput struct {
	Title       string
	Description string
	Visibility  Visibility
	AlbumID     string
	Data        []byte
}

// PhotoService is the cache-aside front for the photo store. Reads go through
// GetOrFetch keyed by owner, scope and query fingerprint; every mutation runs
// the invalidator for the affected owner before returning.
type PhotoService struct {
	photos      PhotoStore
	albums      AlbumStore
	blobs       BlobStore
	cache       cache.CacheService
	codec       cache.Codec
	invalidator *Invalidator
	logger      *zap.Logger

	keys cache.Keyspace
	ttl  time.Duration
}

func NewPhotoService(photos PhotoStore, albums AlbumStore, blobs BlobStore, svc cache.CacheService, codec cache.Codec, inv *Invalidator, logger *zap.Logger, ttl time.Duration) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &PhotoService{
		photos:      photos,
		albums:      albums,
		blobs:       blobs,
		cache:       svc,
		codec:       codec,
		invalidator: inv,
		logger:      logger,
		keys:        PhotoKeyspace(),
		ttl:         ttl,
	}
}

// Upload runs the blob-then-record saga for requesterID and invalidates the
// owner's cache entries once the record is committed.
func (s *PhotoService) Upload(ctx context.Context, requesterID string, in UploadPhotoInput) (*Photo, error) {
	if in.Title == "" {
		return nil, errors.New(errors.CodeInvalidInput, "photo title is required")
	}
	if in.Visibility == "" {
		in.Visibility = VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown visibility %q", in.Visibility)
	}
	if err := s.checkAlbumOwnership(ctx, requesterID, in.AlbumID); err != nil {
		return nil, err
	}

	saga := NewUploadSaga(s.blobs, s.logger)
	photo, err := saga.Run(ctx, in.Data, "photos/"+requesterID, func(ctx context.Context, ref BlobRef) (*Photo, error) {
		return s.photos.Create(ctx, &Photo{
			OwnerID:     requesterID,
			Title:       in.Title,
			Description: in.Description,
			Visibility:  in.Visibility,
			AlbumID:     in.AlbumID,
			URL:         ref.URL,
			BlobID:      ref.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, s.keys, requesterID, photo.ID)
	return photo, nil
}

// List returns the requester's view of owner's photos. Requesting another
// user's collection narrows the result to public photos and caches it under
// the public scope tag.
func (s *PhotoService) List(ctx context.Context, requesterID, ownerID string, params map[string]string) ([]*Photo, error) {
	desc, err := query.Parse(params)
	if err != nil {
		return nil, err
	}

	owner, scope := ResolveScope(requesterID, ownerID)
	key := s.keys.ListKey(owner, scope.Tag, desc.Fingerprint())

	return cache.GetOrFetch(ctx, s.cache, s.codec, s.logger, key, s.ttl, func(ctx context.Context) ([]*Photo, error) {
		return s.photos.FindMany(ctx, owner, scope.PublicOnly, desc)
	})
}

// Get returns one photo in the requester's scope. A private photo read by a
// non-owner is reported not found.
func (s *PhotoService) Get(ctx context.Context, requesterID, ownerID, id string) (*Photo, error) {
	owner, scope := ResolveScope(requesterID, ownerID)
	key := s.keys.ItemKey(owner, id, scope.Tag)

	return cache.GetOrFetch(ctx, s.cache, s.codec, s.logger, key, s.ttl, func(ctx context.Context) (*Photo, error) {
		return s.photos.FindOne(ctx, owner, id, scope.PublicOnly)
	})
}

// Update applies patch to the requester's own photo and invalidates the
// owner's entries.
func (s *PhotoService) Update(ctx context.Context, requesterID, id string, patch PhotoPatch) (*Photo, error) {
	if patch.Visibility != nil && !patch.Visibility.Valid() {
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown visibility %q", *patch.Visibility)
	}
	if patch.AlbumID != nil && *patch.AlbumID != "" {
		if err := s.checkAlbumOwnership(ctx, requesterID, *patch.AlbumID); err != nil {
			return nil, err
		}
	}

	photo, err := s.photos.FindOneAndUpdate(ctx, requesterID, id, patch)
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, s.keys, requesterID, id)
	return photo, nil
}

// Delete removes the requester's own photo, deletes its blob best-effort and
// invalidates the owner's entries. A blob delete failure is logged; the record
// is already gone and the operation succeeded.
func (s *PhotoService) Delete(ctx context.Context, requesterID, id string) error {
	photo, err := s.photos.FindOneAndDelete(ctx, requesterID, id)
	if err != nil {
		return err
	}

	if photo.BlobID != "" {
		if err := s.blobs.Delete(ctx, photo.BlobID); err != nil {
			s.logger.Error("orphaned blob, delete after record removal failed",
				zap.String("blob_id", photo.BlobID),
				zap.Error(err))
		}
	}

	s.invalidator.Invalidate(ctx, s.keys, requesterID, id)
	return nil
}

// checkAlbumOwnership rejects album assignments that point at another user's
// album or at nothing. Both cases read as invalid input so the response does
// not reveal whether the album exists.
func (s *PhotoService) checkAlbumOwnership(ctx context.Context, requesterID, albumID string) error {
	if albumID == "" {
		return nil
	}
	if _, err := s.albums.FindOne(ctx, requesterID, albumID); err != nil {
		if errors.GetCode(err) == errors.CodeNotFound {
			return errors.Newf(errors.CodeInvalidInput, "album %q is not available", albumID)
		}
		return err
	}
	return nil
}
