package vault

import (
	"time"

	"github.com/uptrace/bun"
)

// Visibility controls whether a photo is readable outside its owner's scope.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the two recognized values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Roles carried by users. The store ports never see roles; the single use is
// gating destructive administrative operations at the service boundary.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Photo is an owned media resource. URL and BlobID reference the external
// blob written by the upload saga; AlbumID is a weak reference with no
// ownership semantics.
type Photo struct {
	bun.BaseModel `bun:"table:photos,alias:p"`

	ID          string     `bun:"id,pk" json:"id"`
	OwnerID     string     `bun:"owner_id,notnull" json:"ownerId"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description,omitempty"`
	Visibility  Visibility `bun:"visibility,notnull" json:"visibility"`
	URL         string     `bun:"url" json:"url"`
	BlobID      string     `bun:"blob_id" json:"-"`
	AlbumID     string     `bun:"album_id,nullzero" json:"albumId,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"createdAt"`
}

// Album groups photos. Name is unique per owner, not store-wide.
type Album struct {
	bun.BaseModel `bun:"table:albums,alias:a"`

	ID        string    `bun:"id,pk" json:"id"`
	OwnerID   string    `bun:"owner_id,notnull,unique:albums_owner_name" json:"ownerId"`
	Name      string    `bun:"name,notnull,unique:albums_owner_name" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// User is the account record. PasswordHash is produced by the explicit
// pre-write hash transform and never leaves the store layer serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-" msgpack:"-"`
	Role         string    `bun:"role,notnull" json:"role"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
}
