package vault

import (
	"context"

	"github.com/goliatone/go-photo-vault/query"
)

// BlobRef identifies one object held by a BlobStore. ID is the handle used to
// delete the object; URL is the public address baked into persisted records.
type BlobRef struct {
	URL string
	ID  string
}

// BlobStore is the external object store the upload saga writes to.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder string) (BlobRef, error)
	Delete(ctx context.Context, id string) error
}

// PhotoPatch is a partial update. Nil fields are left untouched.
type PhotoPatch struct {
	Title       *string
	Description *string
	Visibility  *Visibility
	AlbumID     *string
}

// AlbumPatch is a partial update. Nil fields are left untouched.
type AlbumPatch struct {
	Name *string
}

// UserPatch is a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Username *string
}

// PhotoStore persists photos. FindOne and FindMany take a publicOnly flag:
// when set, records not marked public must be reported absent rather than
// forbidden, so callers cannot distinguish hidden from missing.
type PhotoStore interface {
	Create(ctx context.Context, photo *Photo) (*Photo, error)
	FindOne(ctx context.Context, ownerID, id string, publicOnly bool) (*Photo, error)
	FindMany(ctx context.Context, ownerID string, publicOnly bool, desc query.Descriptor) ([]*Photo, error)
	FindOneAndUpdate(ctx context.Context, ownerID, id string, patch PhotoPatch) (*Photo, error)
	FindOneAndDelete(ctx context.Context, ownerID, id string) (*Photo, error)
}

// AlbumStore persists albums. Albums have no public scope; every operation is
// owner-bound.
type AlbumStore interface {
	Create(ctx context.Context, album *Album) (*Album, error)
	FindOne(ctx context.Context, ownerID, id string) (*Album, error)
	FindMany(ctx context.Context, ownerID string, desc query.Descriptor) ([]*Album, error)
	FindOneAndUpdate(ctx context.Context, ownerID, id string, patch AlbumPatch) (*Album, error)
	FindOneAndDelete(ctx context.Context, ownerID, id string) (*Album, error)
}

// UserStore persists accounts. FindByEmail is the authentication lookup and
// returns the stored hash with the record.
type UserStore interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindOne(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindMany(ctx context.Context, desc query.Descriptor) ([]*User, error)
	FindOneAndUpdate(ctx context.Context, id string, patch UserPatch) (*User, error)
	FindOneAndDelete(ctx context.Context, id string) (*User, error)
}
