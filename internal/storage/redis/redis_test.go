package redis

import (
	"context"
	"testing"
	"time"

	"jobportal/internal/models"
	"jobportal/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	repo, err := New(context.Background(), mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	return repo, mr
}

func TestCacheUser_RoundTrip(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	user := models.PublicUser{
		ID:        "u-1",
		FullName:  "Ann Example",
		Email:     "a@x.com",
		Role:      models.RoleRecruiter,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, repo.CacheUser(ctx, user))
	assert.True(t, mr.Exists("user:profile:u-1"))
	assert.Equal(t, time.Minute, mr.TTL("user:profile:u-1"))

	got, err := repo.CachedUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestCachedUser_Miss(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.CachedUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrCacheMiss)
}

func TestCachedUser_Expires(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CacheUser(ctx, models.PublicUser{ID: "u-1"}))
	mr.FastForward(2 * time.Minute)

	_, err := repo.CachedUser(ctx, "u-1")
	assert.ErrorIs(t, err, storage.ErrCacheMiss)
}

func TestInvalidateUser(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CacheUser(ctx, models.PublicUser{ID: "u-1"}))
	require.NoError(t, repo.InvalidateUser(ctx, "u-1"))

	_, err := repo.CachedUser(ctx, "u-1")
	assert.ErrorIs(t, err, storage.ErrCacheMiss)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), addr, "", 0, time.Minute)
	assert.Error(t, err)
}
