package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	anonKeyPrefix = "anon:"
	anonTTL       = time.Hour
)

// LinkCache caches resolved targets of anonymous links. Anonymous links
// skip all visit tracking, so serving them from cache never loses a
// counter bump or a click row. Owned links must not be cached.
type LinkCache struct {
	rdb *redis.Client
}

// NewLinkCache wraps a redis client for anonymous-link resolution.
func NewLinkCache(rdb *redis.Client) *LinkCache {
	return &LinkCache{rdb: rdb}
}

// GetURL returns the cached target for slug, or false on miss or error.
// Cache errors degrade to a miss; the caller falls back to the store.
func (c *LinkCache) GetURL(ctx context.Context, slug string) (string, bool) {
	target, err := c.rdb.Get(ctx, anonKeyPrefix+slug).Result()
	if err != nil {
		return "", false
	}
	return target, true
}

// SetURL stores the target for slug with a bounded TTL. Best-effort.
func (c *LinkCache) SetURL(ctx context.Context, slug, target string) {
	c.rdb.Set(ctx, anonKeyPrefix+slug, target, anonTTL)
}
