package vault

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-photo-vault/cache"
)

// Invalidator removes every cache entry that can reference a record after a
// mutation: all list entries under the owner's prefix, regardless of the
// filters or pagination that produced them, plus both scope variants of the
// record's item entry.
//
// Failures are logged and swallowed. A mutation that already committed must
// not be reported as failed because the cache could not be cleaned; stale
// entries age out at their TTL.
type Invalidator struct {
	cache  cache.CacheService
	logger *zap.Logger
}

func NewInvalidator(svc cache.CacheService, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{cache: svc, logger: logger}
}

// Invalidate drops the owner's list entries and, when id is non-empty, the
// record's item entries in both scopes.
func (iv *Invalidator) Invalidate(ctx context.Context, ks cache.Keyspace, owner, id string) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return iv.dropListEntries(gctx, ks, owner)
	})

	if id != "" {
		g.Go(func() error {
			return iv.cache.DeleteKeys(gctx, ks.ItemKeys(owner, id))
		})
	}

	if err := g.Wait(); err != nil {
		iv.logger.Warn("cache invalidation incomplete",
			zap.String("prefix", ks.ListPrefix(owner)),
			zap.String("id", id),
			zap.Error(err))
	}
}

func (iv *Invalidator) dropListEntries(ctx context.Context, ks cache.Keyspace, owner string) error {
	keys, err := iv.cache.FindKeysByPrefix(ctx, ks.ListPrefix(owner))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return iv.cache.DeleteKeys(ctx, keys)
}
