package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pilab-dev/shadow-social/cache"
	"github.com/pilab-dev/shadow-social/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PropertyCache implements domain.PropertyValueCache using Redis. Values are
// stored as the serialized property text.
type PropertyCache struct {
	client redis.UniversalClient
	prefix string
	maxTTL time.Duration
}

// NewPropertyCache creates a new [PropertyCache] instance.
func NewPropertyCache(client redis.UniversalClient, prefix string, maxTTL time.Duration) *PropertyCache {
	return &PropertyCache{
		client: client,
		prefix: prefix,
		maxTTL: maxTTL,
	}
}

func (r *PropertyCache) redisKey(key string) string {
	return fmt.Sprintf("%s:property:%s", r.prefix, cache.HashKey(key))
}

// Set stores data until its token expires, at most maxTTL.
func (r *PropertyCache) Set(ctx context.Context, key string, data *domain.FacebookOAuthData) error {
	ttl := cache.TTLFor(data, time.Now(), r.maxTTL)
	if ttl <= 0 {
		return r.Delete(ctx, key)
	}

	value, err := data.Serialize()
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.redisKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set property value in Redis: %w", err)
	}

	return nil
}

// Get retrieves a cached value. Errors are logged and reported as a miss.
func (r *PropertyCache) Get(ctx context.Context, key string) (*domain.FacebookOAuthData, bool) {
	value, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Ctx(ctx).Warn().Err(err).Str("property", key).Msg("redis property cache read failed")
		}

		return nil, false
	}

	data, err := domain.DeserializeFacebookOAuthData(value)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("property", key).Msg("dropping undecodable cached property value")
		_ = r.Delete(ctx, key)

		return nil, false
	}

	return data, true
}

// Delete removes a cached value.
func (r *PropertyCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete property value from Redis: %w", err)
	}

	return nil
}

var _ domain.PropertyValueCache = (*PropertyCache)(nil)
