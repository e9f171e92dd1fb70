package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFeaturedCacheInvalidator(t *testing.T) {
	ctx := context.Background()
	category := newTestCategory(t)
	product := newTestProduct(t, category.ID, 5)

	t.Run("subscribes to product and category events", func(t *testing.T) {
		handler := NewFeaturedCacheInvalidator(new(MockFeaturedCache), nil)
		types := handler.EventTypes()

		assert.Contains(t, types, catalog.EventTypeProductCreated)
		assert.Contains(t, types, catalog.EventTypeProductDeleted)
		assert.Contains(t, types, catalog.EventTypeCategoryDeleted)
		assert.NotContains(t, types, catalog.EventTypeCategoryCreated)
	})

	t.Run("invalidates cache", func(t *testing.T) {
		cache := new(MockFeaturedCache)
		cache.On("Invalidate", ctx).Return(nil)
		handler := NewFeaturedCacheInvalidator(cache, zap.NewNop())

		require.NoError(t, handler.Handle(ctx, catalog.NewProductUpdatedEvent(product)))
		cache.AssertExpectations(t)
	})

	t.Run("returns invalidation failure", func(t *testing.T) {
		cache := new(MockFeaturedCache)
		cache.On("Invalidate", ctx).Return(errors.New("redis down"))
		handler := NewFeaturedCacheInvalidator(cache, zap.NewNop())

		assert.Error(t, handler.Handle(ctx, catalog.NewProductDeletedEvent(product)))
	})
}

func TestStockAlertHandler(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	handler := NewStockAlertHandler(zap.New(core))

	product := newTestProduct(t, uuid.New(), 3)

	require.NoError(t, handler.Handle(ctx, catalog.NewProductStockChangedEvent(product, 40)))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "product stock is low", logs.All()[0].Message)

	product.Quantity = 80
	require.NoError(t, handler.Handle(ctx, catalog.NewProductStockChangedEvent(product, 3)))
	assert.Equal(t, 1, logs.Len())
}
