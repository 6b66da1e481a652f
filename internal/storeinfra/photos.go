package storeinfra

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-photo-vault/query"
	"github.com/goliatone/go-photo-vault/vault"
)

// PhotoStore is the bun-backed vault.PhotoStore. Every read is constrained by
// owner, and the publicOnly flag adds a visibility clause so private records
// read by outsiders come back as no rows, not as forbidden.
type PhotoStore struct {
	db *bun.DB
}

func NewPhotoStore(db *bun.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) Create(ctx context.Context, photo *vault.Photo) (*vault.Photo, error) {
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(photo).Exec(ctx); err != nil {
		return nil, translateError(err, "photo")
	}
	return photo, nil
}

func (s *PhotoStore) FindOne(ctx context.Context, ownerID, id string, publicOnly bool) (*vault.Photo, error) {
	photo := new(vault.Photo)
	q := s.db.NewSelect().Model(photo).
		Where("p.id = ?", id).
		Where("p.owner_id = ?", ownerID)
	if publicOnly {
		q = q.Where("p.visibility = ?", vault.VisibilityPublic)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err, "photo")
	}
	return photo, nil
}

func (s *PhotoStore) FindMany(ctx context.Context, ownerID string, publicOnly bool, desc query.Descriptor) ([]*vault.Photo, error) {
	var photos []*vault.Photo
	q := s.db.NewSelect().Model(&photos).
		Where("p.owner_id = ?", ownerID)
	if publicOnly {
		q = q.Where("p.visibility = ?", vault.VisibilityPublic)
	}

	q, err := applyDescriptor(q, desc, photoColumns)
	if err != nil {
		return nil, err
	}

	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err, "photo")
	}
	return photos, nil
}

func (s *PhotoStore) FindOneAndUpdate(ctx context.Context, ownerID, id string, patch vault.PhotoPatch) (*vault.Photo, error) {
	q := s.db.NewUpdate().Model((*vault.Photo)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID)

	touched := false
	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
		touched = true
	}
	if patch.Description != nil {
		q = q.Set("description = ?", *patch.Description)
		touched = true
	}
	if patch.Visibility != nil {
		q = q.Set("visibility = ?", *patch.Visibility)
		touched = true
	}
	if patch.AlbumID != nil {
		// An empty id clears the album. Stored as NULL so the cleared state
		// matches what inserts write for the nullzero column.
		if *patch.AlbumID == "" {
			q = q.Set("album_id = NULL")
		} else {
			q = q.Set("album_id = ?", *patch.AlbumID)
		}
		touched = true
	}

	if touched {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, translateError(err, "photo")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, notFound("photo")
		}
	}

	return s.FindOne(ctx, ownerID, id, false)
}

func (s *PhotoStore) FindOneAndDelete(ctx context.Context, ownerID, id string) (*vault.Photo, error) {
	photo, err := s.FindOne(ctx, ownerID, id, false)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.NewDelete().Model((*vault.Photo)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Exec(ctx); err != nil {
		return nil, translateError(err, "photo")
	}
	return photo, nil
}
