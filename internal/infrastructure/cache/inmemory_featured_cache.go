package cache

import (
	"context"
	"sync"
	"time"

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
)

var _ catalogapp.FeaturedCache = (*InMemoryFeaturedCache)(nil)

// InMemoryFeaturedCache keeps the featured product list in process memory.
// WARNING: each instance holds its own copy, so invalidation is not shared
// across replicas. Use RedisFeaturedCache for multi-instance deployments.
type InMemoryFeaturedCache struct {
	mu        sync.RWMutex
	products  []catalogapp.ProductResponse
	expiresAt time.Time
	present   bool
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemoryFeaturedCache creates an in-memory featured cache. A ttl of zero
// keeps entries until invalidated.
func NewInMemoryFeaturedCache(ttl time.Duration) *InMemoryFeaturedCache {
	return &InMemoryFeaturedCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached list, ok is false on a miss
func (c *InMemoryFeaturedCache) Get(_ context.Context) ([]catalogapp.ProductResponse, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.present || c.isExpired() {
		return nil, false, nil
	}

	products := make([]catalogapp.ProductResponse, len(c.products))
	copy(products, c.products)
	return products, true, nil
}

// Set stores the list
func (c *InMemoryFeaturedCache) Set(_ context.Context, products []catalogapp.ProductResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = make([]catalogapp.ProductResponse, len(products))
	copy(c.products, products)
	c.present = true
	if c.ttl > 0 {
		c.expiresAt = c.now().Add(c.ttl)
	}
	return nil
}

// Invalidate drops the cached list
func (c *InMemoryFeaturedCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = nil
	c.present = false
	return nil
}

func (c *InMemoryFeaturedCache) isExpired() bool {
	return c.ttl > 0 && c.now().After(c.expiresAt)
}
