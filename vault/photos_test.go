package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/cache"
	"github.com/goliatone/go-photo-vault/pkg/testsupport"
	"github.com/goliatone/go-photo-vault/query"
	"github.com/goliatone/go-photo-vault/vault"
)

type photoFixture struct {
	service *vault.PhotoService
	photos  *fakePhotoStore
	albums  *fakeAlbumStore
	blobs   *testsupport.MemoryBlobStore
	cache   *testsupport.MemoryCache
}

func newPhotoFixture() *photoFixture {
	f := &photoFixture{
		photos: newFakePhotoStore(),
		albums: newFakeAlbumStore(),
		blobs:  testsupport.NewMemoryBlobStore(),
		cache:  testsupport.NewMemoryCache(),
	}
	codec := cache.NewMsgpackCodec()
	inv := vault.NewInvalidator(f.cache, nil)
	f.service = vault.NewPhotoService(f.photos, f.albums, f.blobs, f.cache, codec, inv, nil, 0)
	return f
}

func (f *photoFixture) upload(t *testing.T, owner, title string, vis vault.Visibility) *vault.Photo {
	t.Helper()
	photo, err := f.service.Upload(context.Background(), owner, vault.UploadPhotoInput{
		Title:      title,
		Visibility: vis,
		Data:       []byte("jpeg bytes"),
	})
	if err != nil {
		t.Fatalf("Upload(%q) error = %v", title, err)
	}
	return photo
}

func TestPhotoService_ListCachesResult(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	f.upload(t, "alice", "sunset", vault.VisibilityPublic)

	first, err := f.service.List(ctx, "alice", "", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	callsAfterFirst := f.photos.findCalls

	second, err := f.service.List(ctx, "alice", "", nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if f.photos.findCalls != callsAfterFirst {
		t.Errorf("second List() hit the store, calls = %d", f.photos.findCalls)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
}

func TestPhotoService_OwnerAndPublicViewsDoNotShareEntries(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	f.upload(t, "alice", "sunset", vault.VisibilityPublic)
	f.upload(t, "alice", "diary", vault.VisibilityPrivate)

	own, err := f.service.List(ctx, "alice", "alice", nil)
	if err != nil {
		t.Fatalf("owner List() error = %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("owner sees %d photos, want 2", len(own))
	}

	// Same owner, same query, different requester. A shared cache entry
	// would leak the private photo here.
	public, err := f.service.List(ctx, "bob", "alice", nil)
	if err != nil {
		t.Fatalf("public List() error = %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("non-owner sees %d photos, want 1", len(public))
	}
	if public[0].Visibility != vault.VisibilityPublic {
		t.Errorf("non-owner received %q photo", public[0].Visibility)
	}
}

func TestPhotoService_GetPrivateAsNonOwnerIsNotFound(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	photo := f.upload(t, "alice", "diary", vault.VisibilityPrivate)

	if _, err := f.service.Get(ctx, "alice", "", photo.ID); err != nil {
		t.Fatalf("owner Get() error = %v", err)
	}

	_, err := f.service.Get(ctx, "bob", "alice", photo.ID)
	if errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("non-owner Get() error = %v, want not found", err)
	}
}

func TestPhotoService_MutationsInvalidateAllListVariants(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	photo := f.upload(t, "alice", "sunset", vault.VisibilityPublic)

	// Populate list entries under several distinct queries plus the item
	// entry, then mutate. Every alice entry must be gone.
	queries := []map[string]string{
		nil,
		{"page": "1", "limit": "10"},
		{"visibility": "public", "sort": "title"},
	}
	for _, params := range queries {
		if _, err := f.service.List(ctx, "alice", "", params); err != nil {
			t.Fatalf("List(%v) error = %v", params, err)
		}
	}
	if _, err := f.service.Get(ctx, "alice", "", photo.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if f.cache.Len() != 4 {
		t.Fatalf("cache primed with %d entries, want 4", f.cache.Len())
	}

	title := "dusk"
	if _, err := f.service.Update(ctx, "alice", photo.ID, vault.PhotoPatch{Title: &title}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if f.cache.Len() != 0 {
		t.Errorf("%d stale entries survived the mutation", f.cache.Len())
	}

	got, err := f.service.Get(ctx, "alice", "", photo.ID)
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if got.Title != "dusk" {
		t.Errorf("Title = %q after invalidation, want %q", got.Title, "dusk")
	}
}

func TestPhotoService_InvalidationIsScopedToOwner(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	f.upload(t, "alice", "sunset", vault.VisibilityPublic)
	bobPhoto := f.upload(t, "bob", "mountain", vault.VisibilityPublic)

	if _, err := f.service.List(ctx, "alice", "", nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := f.service.List(ctx, "bob", "", nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if err := f.service.Delete(ctx, "bob", bobPhoto.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	aliceKey := vault.PhotoKeyspace().ListKey("alice", cache.ScopeOwner, emptyFingerprint(t))
	if !f.cache.Has(aliceKey) {
		t.Errorf("bob's mutation evicted alice's entry %q", aliceKey)
	}
}

func TestPhotoService_DeleteRemovesBlob(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	photo := f.upload(t, "alice", "sunset", vault.VisibilityPublic)

	if err := f.service.Delete(ctx, "alice", photo.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if f.blobs.Stored(photo.BlobID) {
		t.Errorf("blob %q survived photo deletion", photo.BlobID)
	}
}

func TestPhotoService_DeleteSucceedsWhenBlobDeleteFails(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	photo := f.upload(t, "alice", "sunset", vault.VisibilityPublic)

	f.blobs.FailDelete = true
	if err := f.service.Delete(ctx, "alice", photo.ID); err != nil {
		t.Errorf("Delete() error = %v, want success despite blob failure", err)
	}
}

func TestPhotoService_UploadRejectsForeignAlbum(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()

	album, err := f.albums.Create(ctx, &vault.Album{OwnerID: "bob", Name: "trips"})
	if err != nil {
		t.Fatalf("album Create() error = %v", err)
	}

	_, err = f.service.Upload(ctx, "alice", vault.UploadPhotoInput{
		Title:   "sunset",
		AlbumID: album.ID,
		Data:    []byte("jpeg bytes"),
	})
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Errorf("Upload() error = %v, want invalid input", err)
	}
	if len(f.blobs.Uploads) != 0 {
		t.Errorf("no blob should be written for a rejected upload, got %v", f.blobs.Uploads)
	}
}

func TestPhotoService_UploadPersistFailureCleansBlob(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()

	f.photos.createErr = errors.New(errors.CodeDatabase, "insert failed")
	_, err := f.service.Upload(ctx, "alice", vault.UploadPhotoInput{
		Title: "sunset",
		Data:  []byte("jpeg bytes"),
	})
	if errors.GetCode(err) != errors.CodeDatabase {
		t.Fatalf("Upload() error = %v, want the persist error", err)
	}
	if len(f.blobs.Uploads) != 1 {
		t.Fatalf("uploads = %v, want one attempt", f.blobs.Uploads)
	}
	if f.blobs.Stored(f.blobs.Uploads[0]) {
		t.Errorf("blob %q should have been compensated away", f.blobs.Uploads[0])
	}
}

func TestPhotoService_CacheOutageDegradesToStore(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	f.upload(t, "alice", "sunset", vault.VisibilityPublic)

	f.cache.FailGet = true
	f.cache.FailSet = true

	photos, err := f.service.List(ctx, "alice", "", nil)
	if err != nil {
		t.Fatalf("List() error = %v, want store fallback", err)
	}
	if len(photos) != 1 {
		t.Errorf("fallback returned %d photos, want 1", len(photos))
	}
}

func TestPhotoService_WriteBackUsesConfiguredTTL(t *testing.T) {
	f := newPhotoFixture()
	ctx := context.Background()
	codec := cache.NewMsgpackCodec()
	inv := vault.NewInvalidator(f.cache, nil)
	svc := vault.NewPhotoService(f.photos, f.albums, f.blobs, f.cache, codec, inv, nil, 5*time.Minute)

	if _, err := svc.List(ctx, "alice", "", nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	ttls := f.cache.WriteTTLs()
	if len(ttls) != 1 || ttls[0] != 5*time.Minute {
		t.Errorf("write-back ttls = %v, want [5m0s]", ttls)
	}
}

func TestPhotoService_ZeroTTLFallsBackToDefault(t *testing.T) {
	f := newPhotoFixture()

	if _, err := f.service.List(context.Background(), "alice", "", nil); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	ttls := f.cache.WriteTTLs()
	if len(ttls) != 1 || ttls[0] != cache.DefaultTTL {
		t.Errorf("write-back ttls = %v, want [%v]", ttls, cache.DefaultTTL)
	}
}

func TestPhotoService_ListRejectsMalformedQuery(t *testing.T) {
	f := newPhotoFixture()

	_, err := f.service.List(context.Background(), "alice", "", map[string]string{"page": "0"})
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Errorf("List() error = %v, want invalid input", err)
	}
}

// emptyFingerprint is the fingerprint of the default query, the one produced
// by a nil params map.
func emptyFingerprint(t *testing.T) string {
	t.Helper()
	desc, err := query.Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	return desc.Fingerprint()
}
