package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	cacheredis "github.com/pilab-dev/shadow-social/cache/redis"
	"github.com/pilab-dev/shadow-social/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration tests: TEST_REDIS_ADDR not set.")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestPropertyCache_Integration(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	prefix := fmt.Sprintf("test-%d", time.Now().UnixNano())

	c := cacheredis.NewPropertyCache(client, prefix, time.Hour)

	data := &domain.FacebookOAuthData{
		ID:          "42",
		Name:        "Jane",
		AccessToken: "tok",
		ExpiresAt:   time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second),
		Scope:       []string{"email", "pages_show_list"},
		BusinessPages: []domain.FacebookBusinessPageData{
			{ID: "p1", Name: "Bakery", AccessToken: "pt1"},
		},
	}

	require.NoError(t, c.Set(ctx, "1234:facebook", data))

	got, ok := c.Get(ctx, "1234:facebook")
	require.True(t, ok)
	assert.Equal(t, data, got)

	keys, err := client.Keys(ctx, prefix+":property:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)

	ttl, err := client.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.Greater(t, ttl, 50*time.Minute)

	require.NoError(t, c.Delete(ctx, "1234:facebook"))
	_, ok = c.Get(ctx, "1234:facebook")
	assert.False(t, ok)
}

func TestPropertyCache_ExpiredTokenRemovesEntry(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	c := cacheredis.NewPropertyCache(client, fmt.Sprintf("test-%d", time.Now().UnixNano()), time.Hour)

	data := &domain.FacebookOAuthData{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, c.Set(ctx, "k", data))

	data.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, c.Set(ctx, "k", data))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestPropertyCache_UnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	c := cacheredis.NewPropertyCache(client, "test", time.Hour)

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)

	err := c.Set(context.Background(), "k", &domain.FacebookOAuthData{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)})
	assert.Error(t, err)
}
