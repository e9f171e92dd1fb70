package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUserID finds the user's cart with its items
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// GetOrCreate returns the user's cart, creating an empty one on first access
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// GetOrCreateForUpdate is GetOrCreate with the cart row locked until the
	// surrounding transaction ends
	GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save persists the cart and makes its stored items match cart.Items.
	// Fails with a concurrency conflict if the cart changed since it was loaded.
	Save(ctx context.Context, cart *Cart) error
}
