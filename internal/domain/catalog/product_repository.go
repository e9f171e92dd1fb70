package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/shared"
)

// Product filter keys understood by ProductRepository.FindAll and Count
const (
	FilterName       = "name"        // case-insensitive substring of the name
	FilterCategoryID = "category_id" // uuid.UUID
	FilterMinPrice   = "min_price"   // decimal.Decimal, inclusive
	FilterMaxPrice   = "max_price"   // decimal.Decimal, inclusive
	FilterIsFeatured = "is_featured" // bool
	FilterInStock    = "in_stock"    // bool: true means quantity > 0, false means quantity = 0
	FilterIsActive   = "is_active"   // bool
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate finds a product and locks its row until the surrounding
	// transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter. Filter.Search matches
	// name, description and category name.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindFeatured finds the newest active featured products
	FindFeatured(ctx context.Context, limit int) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock updates a product only if its stored version is the one it was loaded with
	SaveWithLock(ctx context.Context, product *Product) error

	// Delete deletes a product together with the cart items referencing it
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountActiveByCategories counts active products per category
	CountActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	// ExistsBySKU checks if another product already uses the SKU
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
}
