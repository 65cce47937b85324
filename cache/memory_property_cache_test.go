package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/pilab-dev/shadow-social/cache"
	"github.com/pilab-dev/shadow-social/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validData(expiresIn time.Duration) *domain.FacebookOAuthData {
	return &domain.FacebookOAuthData{
		ID:          "42",
		Name:        "Jane",
		AccessToken: "tok",
		ExpiresAt:   time.Now().UTC().Add(expiresIn).Truncate(time.Second),
		Scope:       []string{"email"},
	}
}

func TestTTLFor(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	data := &domain.FacebookOAuthData{ExpiresAt: now.Add(2 * time.Hour)}

	assert.Equal(t, time.Hour, cache.TTLFor(data, now, time.Hour))
	assert.Equal(t, 2*time.Hour, cache.TTLFor(data, now, 0))
	assert.Equal(t, 30*time.Minute, cache.TTLFor(data, now.Add(90*time.Minute), time.Hour))
	assert.LessOrEqual(t, cache.TTLFor(data, now.Add(3*time.Hour), time.Hour), time.Duration(0))
}

func TestHashKey(t *testing.T) {
	assert.Len(t, cache.HashKey("1234:facebook"), 64)
	assert.Equal(t, cache.HashKey("a"), cache.HashKey("a"))
	assert.NotEqual(t, cache.HashKey("a"), cache.HashKey("b"))
}

func TestMemoryPropertyCache_SetGetDelete(t *testing.T) {
	c := cache.NewMemoryPropertyCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	data := validData(24 * time.Hour)
	require.NoError(t, c.Set(ctx, "1234:facebook", data))
	assert.Equal(t, 1, c.Len())

	got, ok := c.Get(ctx, "1234:facebook")
	require.True(t, ok)
	assert.Equal(t, data, got)
	assert.NotSame(t, data, got)

	require.NoError(t, c.Delete(ctx, "1234:facebook"))
	_, ok = c.Get(ctx, "1234:facebook")
	assert.False(t, ok)
}

func TestMemoryPropertyCache_ExpiredNotCached(t *testing.T) {
	c := cache.NewMemoryPropertyCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", validData(time.Hour)))
	require.NoError(t, c.Set(ctx, "k", validData(-time.Hour)))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryPropertyCache_ExpiresWithToken(t *testing.T) {
	c := cache.NewMemoryPropertyCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	data := validData(0)
	data.ExpiresAt = time.Now().Add(50 * time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", data))

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMemoryStateStore(t *testing.T) {
	s := cache.NewMemoryStateStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "state-1", "1234:facebook")

	entry, err := s.Consume(ctx, "state-1")
	require.NoError(t, err)
	assert.Equal(t, "1234:facebook", entry.PropertyKey)
	assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Minute)

	_, err = s.Consume(ctx, "state-1")
	assert.ErrorIs(t, err, cache.ErrStateNotFound)

	_, err = s.Consume(ctx, "unknown")
	assert.ErrorIs(t, err, cache.ErrStateNotFound)
}

func TestMemoryStateStore_Expiry(t *testing.T) {
	s := cache.NewMemoryStateStore(30 * time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "state-1", "k")
	time.Sleep(100 * time.Millisecond)

	_, err := s.Consume(ctx, "state-1")
	assert.ErrorIs(t, err, cache.ErrStateNotFound)
}
