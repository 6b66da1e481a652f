package storeinfra

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-photo-vault/query"
	"github.com/goliatone/go-photo-vault/vault"
)

// UserStore is the bun-backed vault.UserStore.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *vault.User) (*vault.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, translateError(err, "user")
	}
	return user, nil
}

func (s *UserStore) FindOne(ctx context.Context, id string) (*vault.User, error) {
	user := new(vault.User)
	err := s.db.NewSelect().Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err, "user")
	}
	return user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*vault.User, error) {
	user := new(vault.User)
	err := s.db.NewSelect().Model(user).
		Where("u.email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err, "user")
	}
	return user, nil
}

func (s *UserStore) FindMany(ctx context.Context, desc query.Descriptor) ([]*vault.User, error) {
	var users []*vault.User
	q, err := applyDescriptor(s.db.NewSelect().Model(&users), desc, userColumns)
	if err != nil {
		return nil, err
	}

	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err, "user")
	}
	return users, nil
}

func (s *UserStore) FindOneAndUpdate(ctx context.Context, id string, patch vault.UserPatch) (*vault.User, error) {
	q := s.db.NewUpdate().Model((*vault.User)(nil)).
		Where("id = ?", id)

	touched := false
	if patch.Name != nil {
		q = q.Set("name = ?", *patch.Name)
		touched = true
	}
	if patch.Email != nil {
		q = q.Set("email = ?", *patch.Email)
		touched = true
	}
	if patch.Username != nil {
		q = q.Set("username = ?", *patch.Username)
		touched = true
	}

	if touched {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, translateError(err, "user")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, notFound("user")
		}
	}

	return s.FindOne(ctx, id)
}

func (s *UserStore) FindOneAndDelete(ctx context.Context, id string) (*vault.User, error) {
	user, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.NewDelete().Model((*vault.User)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, translateError(err, "user")
	}
	return user, nil
}
