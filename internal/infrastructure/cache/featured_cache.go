package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	catalogapp "github.com/shopcart/backend/internal/application/catalog"
)

// DefaultFeaturedKey is the Redis key holding the featured product list
const DefaultFeaturedKey = "shopcart:catalog:featured"

var _ catalogapp.FeaturedCache = (*RedisFeaturedCache)(nil)

// RedisFeaturedCache stores the featured product list in Redis as JSON.
// It is shared by every server instance, so invalidation is global.
type RedisFeaturedCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisFeaturedCache creates a featured cache with an existing Redis client
func NewRedisFeaturedCache(client redis.UniversalClient, key string, ttl time.Duration) *RedisFeaturedCache {
	if key == "" {
		key = DefaultFeaturedKey
	}
	return &RedisFeaturedCache{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Get returns the cached list, ok is false on a miss
func (c *RedisFeaturedCache) Get(ctx context.Context) ([]catalogapp.ProductResponse, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read featured cache: %w", err)
	}

	var products []catalogapp.ProductResponse
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("failed to decode featured cache: %w", err)
	}
	return products, true, nil
}

// Set stores the list for the configured TTL
func (c *RedisFeaturedCache) Set(ctx context.Context, products []catalogapp.ProductResponse) error {
	if products == nil {
		products = []catalogapp.ProductResponse{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode featured cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write featured cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached list
func (c *RedisFeaturedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate featured cache: %w", err)
	}
	return nil
}
