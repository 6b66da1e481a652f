package storeinfra

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-photo-vault/vault"
)

// EnsureSchema creates the tables and indexes when they do not exist. The
// unique groups on the models produce the per-owner album name constraint and
// the email and username constraints.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*vault.User)(nil),
		(*vault.Album)(nil),
		(*vault.Photo)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return translateError(err, "schema")
		}
	}

	indexes := []struct {
		name    string
		model   interface{}
		columns []string
	}{
		{"idx_photos_owner_created", (*vault.Photo)(nil), []string{"owner_id", "created_at"}},
		{"idx_albums_owner", (*vault.Album)(nil), []string{"owner_id"}},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			IfNotExists().
			Column(idx.columns...).
			Exec(ctx); err != nil {
			return translateError(err, "schema")
		}
	}
	return nil
}
