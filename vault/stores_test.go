package vault_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/query"
	"github.com/goliatone/go-photo-vault/vault"
)

// In-memory store fakes. They implement just enough of the port contracts for
// the service tests: owner and visibility filtering, insertion-order listing,
// per-owner album name uniqueness. Query filters and sorting are covered by
// the store integration tests, not here.

type fakePhotoStore struct {
	seq    int
	photos map[string]*vault.Photo

	createErr error
	findCalls int
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: map[string]*vault.Photo{}}
}

func (f *fakePhotoStore) Create(_ context.Context, photo *vault.Photo) (*vault.Photo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	clone := *photo
	clone.ID = fmt.Sprintf("photo-%d", f.seq)
	f.photos[clone.ID] = &clone
	return &clone, nil
}

func (f *fakePhotoStore) FindOne(_ context.Context, ownerID, id string, publicOnly bool) (*vault.Photo, error) {
	f.findCalls++
	photo, ok := f.photos[id]
	if !ok || photo.OwnerID != ownerID {
		return nil, errors.Newf(errors.CodeNotFound, "photo %s not found", id)
	}
	if publicOnly && photo.Visibility != vault.VisibilityPublic {
		return nil, errors.Newf(errors.CodeNotFound, "photo %s not found", id)
	}
	clone := *photo
	return &clone, nil
}

func (f *fakePhotoStore) FindMany(_ context.Context, ownerID string, publicOnly bool, _ query.Descriptor) ([]*vault.Photo, error) {
	f.findCalls++
	var out []*vault.Photo
	for _, photo := range f.photos {
		if photo.OwnerID != ownerID {
			continue
		}
		if publicOnly && photo.Visibility != vault.VisibilityPublic {
			continue
		}
		clone := *photo
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePhotoStore) FindOneAndUpdate(ctx context.Context, ownerID, id string, patch vault.PhotoPatch) (*vault.Photo, error) {
	photo, ok := f.photos[id]
	if !ok || photo.OwnerID != ownerID {
		return nil, errors.Newf(errors.CodeNotFound, "photo %s not found", id)
	}
	if patch.Title != nil {
		photo.Title = *patch.Title
	}
	if patch.Description != nil {
		photo.Description = *patch.Description
	}
	if patch.Visibility != nil {
		photo.Visibility = *patch.Visibility
	}
	if patch.AlbumID != nil {
		photo.AlbumID = *patch.AlbumID
	}
	clone := *photo
	return &clone, nil
}

func (f *fakePhotoStore) FindOneAndDelete(ctx context.Context, ownerID, id string) (*vault.Photo, error) {
	photo, ok := f.photos[id]
	if !ok || photo.OwnerID != ownerID {
		return nil, errors.Newf(errors.CodeNotFound, "photo %s not found", id)
	}
	delete(f.photos, id)
	return photo, nil
}

type fakeAlbumStore struct {
	seq    int
	albums map[string]*vault.Album
}

func newFakeAlbumStore() *fakeAlbumStore {
	return &fakeAlbumStore{albums: map[string]*vault.Album{}}
}

func (f *fakeAlbumStore) Create(_ context.Context, album *vault.Album) (*vault.Album, error) {
	for _, existing := range f.albums {
		if existing.OwnerID == album.OwnerID && existing.Name == album.Name {
			return nil, errors.Newf(errors.CodeAlreadyExists, "album %q already exists", album.Name)
		}
	}
	f.seq++
	clone := *album
	clone.ID = fmt.Sprintf("album-%d", f.seq)
	f.albums[clone.ID] = &clone
	return &clone, nil
}

func (f *fakeAlbumStore) FindOne(_ context.Context, ownerID, id string) (*vault.Album, error) {
	album, ok := f.albums[id]
	if !ok || album.OwnerID != ownerID {
		return nil, errors.Newf(errors.CodeNotFound, "album %s not found", id)
	}
	clone := *album
	return &clone, nil
}

func (f *fakeAlbumStore) FindMany(_ context.Context, ownerID string, _ query.Descriptor) ([]*vault.Album, error) {
	var out []*vault.Album
	for _, album := range f.albums {
		if album.OwnerID != ownerID {
			continue
		}
		clone := *album
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAlbumStore) FindOneAndUpdate(ctx context.Context, ownerID, id string, patch vault.AlbumPatch) (*vault.Album, error) {
	album, ok := f.albums[id]
	if !ok || album.OwnerID != ownerID {
		return nil, errors.Newf(errors.CodeNotFound, "album %s not found", id)
	}
	if patch.Name != nil {
		album.Name = *patch.Name
	}
	clone := *album
	return &clone, nil
}

func (f *fakeAlbumStore) FindOneAndDelete(ctx context.Context, ownerID, id string) (*vault.Album, error) {
	album, ok := f.albums[id]
	if !ok || album.OwnerID != ownerID {
		return nil, errors.Newf(errors.CodeNotFound, "album %s not found", id)
	}
	delete(f.albums, id)
	return album, nil
}

type fakeUserStore struct {
	seq   int
	users map[string]*vault.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*vault.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *vault.User) (*vault.User, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, errors.Newf(errors.CodeAlreadyExists, "email %q already registered", user.Email)
		}
		if existing.Username == user.Username {
			return nil, errors.Newf(errors.CodeAlreadyExists, "username %q already taken", user.Username)
		}
	}
	f.seq++
	clone := *user
	clone.ID = fmt.Sprintf("user-%d", f.seq)
	f.users[clone.ID] = &clone
	return &clone, nil
}

func (f *fakeUserStore) FindOne(_ context.Context, id string) (*vault.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "user %s not found", id)
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*vault.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.Newf(errors.CodeNotFound, "user with email %s not found", email)
}

func (f *fakeUserStore) FindMany(_ context.Context, _ query.Descriptor) ([]*vault.User, error) {
	var out []*vault.User
	for _, user := range f.users {
		clone := *user
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserStore) FindOneAndUpdate(ctx context.Context, id string, patch vault.UserPatch) (*vault.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "user %s not found", id)
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) FindOneAndDelete(ctx context.Context, id string) (*vault.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "user %s not found", id)
	}
	delete(f.users, id)
	return user, nil
}
