package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plantit/plantit/internal/cache"
	"github.com/plantit/plantit/internal/domain/types"
)

type countingRepo struct {
	recs map[string]types.ProfileRecord
	gets int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{recs: make(map[string]types.ProfileRecord)}
}

func (r *countingRepo) Upsert(ctx context.Context, rec types.ProfileRecord) error {
	r.recs[rec.UserID] = rec
	return nil
}

func (r *countingRepo) Get(ctx context.Context, userID string) (*types.ProfileRecord, error) {
	r.gets++
	rec, ok := r.recs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func TestCached_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := newCountingRepo()
	cached := NewCached(inner, cache.NewMemory("t"), 0)

	rec := types.ProfileRecord{UserID: "u1", Email: "a@x.com", AvatarURL: "https://store/u1.jpg"}
	require.NoError(t, cached.Upsert(ctx, rec))

	got, err := cached.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, rec, *got)
	require.Equal(t, 1, inner.gets)

	// second read served from cache
	got, err = cached.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, rec, *got)
	require.Equal(t, 1, inner.gets)
}

func TestCached_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := newCountingRepo()
	cached := NewCached(inner, cache.NewMemory("t"), 0)

	first := types.ProfileRecord{UserID: "u1", Email: "a@x.com"}
	require.NoError(t, cached.Upsert(ctx, first))
	_, err := cached.Get(ctx, "u1")
	require.NoError(t, err)

	second := types.ProfileRecord{UserID: "u1", Email: "b@x.com"}
	require.NoError(t, cached.Upsert(ctx, second))

	got, err := cached.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "b@x.com", got.Email)
}

func TestCached_NotFoundPassesThrough(t *testing.T) {
	cached := NewCached(newCountingRepo(), cache.NewMemory("t"), 0)
	_, err := cached.Get(context.Background(), "ghost")
	require.True(t, errors.Is(err, ErrNotFound))
}
