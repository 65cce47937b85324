package cache

import (
	"time"

	"github.com/pilab-dev/shadow-social/domain"
)

// TTLFor returns how long data may be cached at now: until the access token
// expires, capped at maxTTL. A non-positive result means the value must not
// be cached.
func TTLFor(data *domain.FacebookOAuthData, now time.Time, maxTTL time.Duration) time.Duration {
	ttl := data.ExpiresIn(now)
	if maxTTL > 0 && ttl > maxTTL {
		ttl = maxTTL
	}

	return ttl
}
