package storeinfra

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-photo-vault/query"
	"github.com/goliatone/go-photo-vault/vault"
)

// AlbumStore is the bun-backed vault.AlbumStore. Albums are owner-private so
// there is no visibility clause, only the owner constraint.
type AlbumStore struct {
	db *bun.DB
}

func NewAlbumStore(db *bun.DB) *AlbumStore {
	return &AlbumStore{db: db}
}

func (s *AlbumStore) Create(ctx context.Context, album *vault.Album) (*vault.Album, error) {
	if album.ID == "" {
		album.ID = uuid.NewString()
	}
	if album.CreatedAt.IsZero() {
		album.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(album).Exec(ctx); err != nil {
		return nil, translateError(err, "album")
	}
	return album, nil
}

func (s *AlbumStore) FindOne(ctx context.Context, ownerID, id string) (*vault.Album, error) {
	album := new(vault.Album)
	err := s.db.NewSelect().Model(album).
		Where("a.id = ?", id).
		Where("a.owner_id = ?", ownerID).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err, "album")
	}
	return album, nil
}

func (s *AlbumStore) FindMany(ctx context.Context, ownerID string, desc query.Descriptor) ([]*vault.Album, error) {
	var albums []*vault.Album
	q := s.db.NewSelect().Model(&albums).
		Where("a.owner_id = ?", ownerID)

	q, err := applyDescriptor(q, desc, albumColumns)
	if err != nil {
		return nil, err
	}

	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err, "album")
	}
	return albums, nil
}

func (s *AlbumStore) FindOneAndUpdate(ctx context.Context, ownerID, id string, patch vault.AlbumPatch) (*vault.Album, error) {
	if patch.Name != nil {
		res, err := s.db.NewUpdate().Model((*vault.Album)(nil)).
			Set("name = ?", *patch.Name).
			Where("id = ?", id).
			Where("owner_id = ?", ownerID).
			Exec(ctx)
		if err != nil {
			return nil, translateError(err, "album")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, notFound("album")
		}
	}

	return s.FindOne(ctx, ownerID, id)
}

func (s *AlbumStore) FindOneAndDelete(ctx context.Context, ownerID, id string) (*vault.Album, error) {
	album, err := s.FindOne(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.NewDelete().Model((*vault.Album)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Exec(ctx); err != nil {
		return nil, translateError(err, "album")
	}
	return album, nil
}
