package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pilab-dev/shadow-social/domain"
	"github.com/rs/zerolog/log"
)

// MemoryPropertyCache implements domain.PropertyValueCache using ttlcache.
// Values are kept serialized so callers never share a record instance.
type MemoryPropertyCache struct {
	cache  *ttlcache.Cache[string, string]
	maxTTL time.Duration
}

// NewMemoryPropertyCache creates an in-memory cache with automatic cleanup.
// Entries live until the token expires, at most maxTTL.
func NewMemoryPropertyCache(maxTTL time.Duration) *MemoryPropertyCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](maxTTL),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)

	go cache.Start()

	return &MemoryPropertyCache{
		cache:  cache,
		maxTTL: maxTTL,
	}
}

// Set implements domain.PropertyValueCache.
func (c *MemoryPropertyCache) Set(ctx context.Context, key string, data *domain.FacebookOAuthData) error {
	ttl := TTLFor(data, time.Now(), c.maxTTL)
	if ttl <= 0 {
		c.cache.Delete(HashKey(key))
		return nil
	}

	value, err := data.Serialize()
	if err != nil {
		return err
	}

	c.cache.Set(HashKey(key), value, ttl)
	log.Ctx(ctx).Debug().Str("property", key).Dur("ttl", ttl).Msg("property value cached")

	return nil
}

// Get implements domain.PropertyValueCache.
func (c *MemoryPropertyCache) Get(ctx context.Context, key string) (*domain.FacebookOAuthData, bool) {
	item := c.cache.Get(HashKey(key))
	if item == nil {
		return nil, false
	}

	data, err := domain.DeserializeFacebookOAuthData(item.Value())
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("property", key).Msg("dropping undecodable cached property value")
		c.cache.Delete(HashKey(key))

		return nil, false
	}

	return data, true
}

// Delete implements domain.PropertyValueCache.
func (c *MemoryPropertyCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(HashKey(key))

	return nil
}

// Len returns the number of cached values.
func (c *MemoryPropertyCache) Len() int {
	return c.cache.Len()
}

// Close stops the cleanup goroutine.
func (c *MemoryPropertyCache) Close() error {
	c.cache.Stop()

	return nil
}

var _ domain.PropertyValueCache = (*MemoryPropertyCache)(nil)
