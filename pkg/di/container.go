// Package di wires the configured backends into the domain services. It owns
// the singletons: one cache service, one database handle, one blob store, and
// the three services built on top of them.
package di

import (
	"context"
	"database/sql"
	"io"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/cache"
	"github.com/goliatone/go-photo-vault/internal/blobinfra"
	"github.com/goliatone/go-photo-vault/internal/redisinfra"
	"github.com/goliatone/go-photo-vault/internal/storeinfra"
	"github.com/goliatone/go-photo-vault/pkg/config"
	"github.com/goliatone/go-photo-vault/pkg/logging"
	"github.com/goliatone/go-photo-vault/vault"
)

// Container holds the wired application components.
type Container struct {
	config *config.Config
	logger *zap.Logger

	cacheService cache.CacheService
	db           *bun.DB
	blobs        vault.BlobStore

	photos *vault.PhotoService
	albums *vault.AlbumService
	users  *vault.UserService
}

// NewContainer wires every component from cfg, including the blob store
// connection.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	blobs, err := blobinfra.NewMinioStore(ctx, blobinfra.Config{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		BaseURL:   cfg.Blob.BaseURL,
		UseSSL:    cfg.Blob.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return NewContainerWithBlobStore(ctx, cfg, logger, blobs)
}

// NewContainerWithBlobStore wires every component from cfg around an existing
// blob store. Used when the blob backend is managed elsewhere, and by tests.
func NewContainerWithBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, blobs vault.BlobStore) (*Container, error) {
	return NewContainerWithBackends(ctx, cfg, logger, blobs, nil)
}

// NewContainerWithBackends wires every component from cfg around existing
// blob and cache backends. A nil cacheService is built from cfg.Cache.
func NewContainerWithBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger, blobs vault.BlobStore, cacheService cache.CacheService) (*Container, error) {
	if logger == nil {
		var err error
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "logger cannot be built")
		}
	}

	if cacheService == nil {
		var err error
		cacheService, err = newCacheService(cfg)
		if err != nil {
			return nil, err
		}
	}

	db, err := newDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	codec := cache.NewMsgpackCodec()
	invalidator := vault.NewInvalidator(cacheService, logger)

	photoStore := storeinfra.NewPhotoStore(db)
	albumStore := storeinfra.NewAlbumStore(db)
	userStore := storeinfra.NewUserStore(db)

	return &Container{
		config:       cfg,
		logger:       logger,
		cacheService: cacheService,
		db:           db,
		blobs:        blobs,
		photos:       vault.NewPhotoService(photoStore, albumStore, blobs, cacheService, codec, invalidator, logger, cfg.Cache.TTL),
		albums:       vault.NewAlbumService(albumStore, cacheService, codec, invalidator, logger, cfg.Cache.TTL),
		users:        vault.NewUserService(userStore, cacheService, codec, invalidator, logger, cfg.Cache.TTL),
	}, nil
}

func newCacheService(cfg *config.Config) (cache.CacheService, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return cache.NewMemoryCacheService(cache.Config{
			Capacity:           cfg.Cache.Capacity,
			NumShards:          cfg.Cache.NumShards,
			TTL:                cfg.Cache.TTL,
			EvictionPercentage: cfg.Cache.EvictionPercentage,
		})
	case config.CacheBackendRedis:
		return redisinfra.NewRedisStore(redisinfra.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newDatabase(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		sqldb, err := sql.Open("sqlite3", cfg.Database.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "sqlite cannot be opened")
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case config.DriverPostgres:
		sqldb, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "postgres cannot be opened")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown database driver %q", cfg.Database.Driver)
	}

	if err := storeinfra.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Photos returns the photo service.
func (c *Container) Photos() *vault.PhotoService { return c.photos }

// Albums returns the album service.
func (c *Container) Albums() *vault.AlbumService { return c.albums }

// Users returns the user service.
func (c *Container) Users() *vault.UserService { return c.users }

// CacheService returns the underlying cache service, for advanced use cases.
func (c *Container) CacheService() cache.CacheService { return c.cacheService }

// DB returns the underlying database handle.
func (c *Container) DB() *bun.DB { return c.db }

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config { return c.config }

// Close releases the database and, when the cache backend holds a
// connection, the cache.
func (c *Container) Close() error {
	var firstErr error
	if err := c.db.Close(); err != nil {
		firstErr = err
	}
	if closer, ok := c.cacheService.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
