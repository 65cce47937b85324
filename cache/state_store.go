package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var ErrStateNotFound = errors.New("oauth state not found or expired")

// StateEntry ties an OAuth state parameter to the property being
// authenticated.
type StateEntry struct {
	PropertyKey string
	CreatedAt   time.Time
}

// MemoryStateStore keeps pending OAuth states. A state can be consumed once.
type MemoryStateStore struct {
	cache *ttlcache.Cache[string, StateEntry]
}

// NewMemoryStateStore creates a state store whose entries expire after ttl.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, StateEntry](ttl),
		ttlcache.WithDisableTouchOnHit[string, StateEntry](),
	)

	go cache.Start()

	return &MemoryStateStore{cache: cache}
}

// Put registers state for propertyKey.
func (s *MemoryStateStore) Put(_ context.Context, state, propertyKey string) {
	s.cache.Set(HashKey(state), StateEntry{
		PropertyKey: propertyKey,
		CreatedAt:   time.Now().UTC(),
	}, ttlcache.DefaultTTL)
}

// Consume returns and removes the entry for state.
func (s *MemoryStateStore) Consume(_ context.Context, state string) (StateEntry, error) {
	item, found := s.cache.GetAndDelete(HashKey(state))
	if !found || item == nil || item.IsExpired() {
		return StateEntry{}, ErrStateNotFound
	}

	return item.Value(), nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStateStore) Close() error {
	s.cache.Stop()

	return nil
}
