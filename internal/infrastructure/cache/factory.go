package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	"go.uber.org/zap"
)

// NewFeaturedCache returns a Redis-backed featured cache when client is set,
// falling back to an in-memory cache otherwise
func NewFeaturedCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) catalogapp.FeaturedCache {
	if client != nil {
		return NewRedisFeaturedCache(client, DefaultFeaturedKey, ttl)
	}

	if logger != nil {
		logger.Warn("Redis not configured, using in-memory featured cache",
			zap.String("note", "cache invalidation is not shared across instances"))
	}
	return NewInMemoryFeaturedCache(ttl)
}
