package catalog

import (
	"context"

	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeaturedCacheInvalidator drops the cached featured list whenever a product
// changes or a category (and with it its products) is deleted
type FeaturedCacheInvalidator struct {
	cache  FeaturedCache
	logger *zap.Logger
}

// NewFeaturedCacheInvalidator creates a new FeaturedCacheInvalidator
func NewFeaturedCacheInvalidator(cache FeaturedCache, logger *zap.Logger) *FeaturedCacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeaturedCacheInvalidator{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *FeaturedCacheInvalidator) EventTypes() []string {
	types := make([]string, 0, len(catalog.ProductEventTypes)+2)
	types = append(types, catalog.ProductEventTypes...)
	return append(types, catalog.EventTypeCategoryUpdated, catalog.EventTypeCategoryDeleted)
}

// Handle invalidates the featured cache
func (h *FeaturedCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate featured cache",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// StockAlertHandler logs products whose stock drops to a low or empty level
type StockAlertHandler struct {
	logger *zap.Logger
}

// NewStockAlertHandler creates a new StockAlertHandler
func NewStockAlertHandler(logger *zap.Logger) *StockAlertHandler {
	return &StockAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductStockChanged}
}

// Handle logs a warning when stock falls below the low-stock threshold
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*catalog.ProductStockChangedEvent)
	if !ok {
		return nil
	}
	if changed.NewQuantity >= changed.OldQuantity || changed.StockStatus == catalog.StockStatusInStock {
		return nil
	}

	h.logger.Warn("product stock is low",
		zap.String("product_id", changed.ProductID.String()),
		zap.String("sku", changed.SKU),
		zap.Int("old_quantity", changed.OldQuantity),
		zap.Int("new_quantity", changed.NewQuantity),
		zap.String("stock_status", string(changed.StockStatus)),
	)
	return nil
}
