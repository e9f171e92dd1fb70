package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByIDs finds multiple categories by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error)

	// FindAll finds all categories matching the filter. Filter.Search matches
	// name and description.
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// SaveWithLock updates a category only if its stored version is the one it was loaded with
	SaveWithLock(ctx context.Context, category *Category) error

	// Delete deletes a category, its products and the cart items referencing them
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts categories matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByName checks if another category already uses the name
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}
