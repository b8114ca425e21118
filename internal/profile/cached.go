package profile

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/plantit/plantit/internal/cache"
	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/observability/logger"
)

// CachedRepository wraps a Repository with a read-through cache.
// Writes go straight to the inner store and invalidate the cached
// entry, so the cache never holds a profile the store does not.
// Concurrent cache fills for the same user are collapsed.
type CachedRepository struct {
	inner Repository
	cache cache.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCached wraps inner with cache c. ttl of 0 means entries do not
// expire until invalidated by a write.
func NewCached(inner Repository, c cache.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, cache: c, ttl: ttl}
}

// Upsert implements Repository: write through, then invalidate.
func (r *CachedRepository) Upsert(ctx context.Context, rec types.ProfileRecord) error {
	if err := r.inner.Upsert(ctx, rec); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, cacheKey(rec.UserID)); err != nil {
		// stale-read risk only; the store already has the truth
		logger.From(ctx).Warn("profile cache invalidation failed",
			logger.Component("profile.cached"),
			logger.UserID(rec.UserID),
			logger.Err(err),
		)
	}
	return nil
}

// Get implements Repository with a read-through fill.
func (r *CachedRepository) Get(ctx context.Context, userID string) (*types.ProfileRecord, error) {
	key := cacheKey(userID)

	if raw, err := r.cache.Get(ctx, key); err == nil {
		var rec types.ProfileRecord
		if json.Unmarshal([]byte(raw), &rec) == nil {
			return &rec, nil
		}
		// corrupt entry, fall through to the store
		_ = r.cache.Delete(ctx, key)
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		rec, err := r.inner.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(rec); err == nil {
			_ = r.cache.Set(ctx, key, string(raw), r.ttl)
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ProfileRecord), nil
}

func cacheKey(userID string) string {
	return "profile:" + userID
}
