package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/infrastructure/db/memory"
)

type countingRepo struct {
	*memory.CredentialStore
	profileReads int
}

func (r *countingRepo) FindProfile(ctx context.Context, username string) (*domain.Credential, error) {
	r.profileReads++
	return r.CredentialStore.FindProfile(ctx, username)
}

func newCache(t *testing.T) (*ProfileCache, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingRepo{CredentialStore: memory.NewCredentialStore()}
	_, err := repo.Create(context.Background(), &domain.Credential{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$04$secret-hash",
		IsActive:       true,
	})
	require.NoError(t, err)

	return NewProfileCache(repo, client, time.Minute, zerolog.Nop()), repo, mr
}

func TestProfileCache_ReadThrough(t *testing.T) {
	cache, repo, mr := newCache(t)
	ctx := context.Background()

	first, err := cache.FindProfile(ctx, "alice")
	require.NoError(t, err)
	second, err := cache.FindProfile(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.profileReads)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsActive)

	raw, err := mr.Get("profile:alice")
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-hash")
	assert.Equal(t, time.Minute, mr.TTL("profile:alice"))
}

func TestProfileCache_Expiry(t *testing.T) {
	cache, repo, mr := newCache(t)
	ctx := context.Background()

	_, err := cache.FindProfile(ctx, "alice")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cache.FindProfile(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.profileReads)
}

func TestProfileCache_SaveEvicts(t *testing.T) {
	cache, _, mr := newCache(t)
	ctx := context.Background()

	_, err := cache.FindProfile(ctx, "alice")
	require.NoError(t, err)
	require.True(t, mr.Exists("profile:alice"))

	require.NoError(t, cache.SaveHashedPassword(ctx, "alice", "$2a$04$rotated"))
	assert.False(t, mr.Exists("profile:alice"))

	hash, err := cache.FindHashedPassword(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$04$rotated", hash)
}

func TestProfileCache_SaveFailureKeepsEntry(t *testing.T) {
	cache, _, mr := newCache(t)
	ctx := context.Background()

	_, err := cache.FindProfile(ctx, "alice")
	require.NoError(t, err)

	err = cache.SaveHashedPassword(ctx, "ghost", "$2a$04$x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, mr.Exists("profile:alice"))
}

func TestProfileCache_NotFoundIsNotCached(t *testing.T) {
	cache, _, mr := newCache(t)

	_, err := cache.FindProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("profile:ghost"))
}

func TestProfileCache_FallsBackWhenRedisDown(t *testing.T) {
	cache, repo, mr := newCache(t)
	mr.Close()

	profile, err := cache.FindProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1, repo.profileReads)
	assert.Error(t, cache.Ping(context.Background()))
}
