package menu

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/menumesa/backend/pkg/redis"
)

const (
	publicMenuKeyPrefix = "public_menu:"
	publicMenuTTL       = 5 * time.Minute
)

// Cache caches rendered public menus in Redis, keyed by restaurant slug.
// Every menu or profile mutation invalidates the tenant's entry.
type Cache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCache creates a public-menu cache. A nil redis client disables caching.
func NewCache(rdb *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, logger: logger}
}

// Get returns the cached public menu for slug, unmarshalled into out.
// The bool reports a cache hit.
func (c *Cache) Get(ctx context.Context, slug string, out interface{}) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, publicMenuKeyPrefix+slug).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("public menu cache get failed", zap.Error(err), zap.String("slug", slug))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("public menu cache entry corrupt", zap.Error(err), zap.String("slug", slug))
		return false
	}
	return true
}

// Set stores the rendered public menu for slug.
func (c *Cache) Set(ctx context.Context, slug string, v interface{}) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, publicMenuKeyPrefix+slug, raw, publicMenuTTL).Err(); err != nil {
		c.logger.Warn("public menu cache set failed", zap.Error(err), zap.String("slug", slug))
	}
}

// Invalidate drops the cached menu for slug.
func (c *Cache) Invalidate(ctx context.Context, slug string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, publicMenuKeyPrefix+slug).Err(); err != nil {
		c.logger.Warn("public menu cache invalidate failed", zap.Error(err), zap.String("slug", slug))
	}
}
