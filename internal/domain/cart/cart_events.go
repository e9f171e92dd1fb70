package cart

import (
	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCart = "Cart"

// Event type constants
const (
	EventTypeCartItemAdded           = "CartItemAdded"
	EventTypeCartItemQuantityChanged = "CartItemQuantityChanged"
	EventTypeCartItemRemoved         = "CartItemRemoved"
	EventTypeCartCleared             = "CartCleared"
)

// CartItemAddedEvent is published when a product is first put in a cart
type CartItemAddedEvent struct {
	shared.BaseDomainEvent
	CartID    uuid.UUID `json:"cart_id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// NewCartItemAddedEvent creates a new CartItemAddedEvent
func NewCartItemAddedEvent(cart *Cart, item *CartItem) *CartItemAddedEvent {
	return &CartItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemAdded, AggregateTypeCart, cart.ID),
		CartID:          cart.ID,
		UserID:          cart.UserID,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
	}
}

// CartItemQuantityChangedEvent is published when an item's quantity changes
type CartItemQuantityChangedEvent struct {
	shared.BaseDomainEvent
	CartID      uuid.UUID `json:"cart_id"`
	UserID      uuid.UUID `json:"user_id"`
	ItemID      uuid.UUID `json:"item_id"`
	ProductID   uuid.UUID `json:"product_id"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
}

// NewCartItemQuantityChangedEvent creates a new CartItemQuantityChangedEvent
func NewCartItemQuantityChangedEvent(cart *Cart, item *CartItem, oldQuantity int) *CartItemQuantityChangedEvent {
	return &CartItemQuantityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemQuantityChanged, AggregateTypeCart, cart.ID),
		CartID:          cart.ID,
		UserID:          cart.UserID,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
		OldQuantity:     oldQuantity,
		NewQuantity:     item.Quantity,
	}
}

// CartItemRemovedEvent is published when an item is removed from a cart
type CartItemRemovedEvent struct {
	shared.BaseDomainEvent
	CartID    uuid.UUID `json:"cart_id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// NewCartItemRemovedEvent creates a new CartItemRemovedEvent
func NewCartItemRemovedEvent(cart *Cart, item *CartItem) *CartItemRemovedEvent {
	return &CartItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartItemRemoved, AggregateTypeCart, cart.ID),
		CartID:          cart.ID,
		UserID:          cart.UserID,
		ItemID:          item.ID,
		ProductID:       item.ProductID,
	}
}

// CartClearedEvent is published when every item is removed from a cart
type CartClearedEvent struct {
	shared.BaseDomainEvent
	CartID       uuid.UUID `json:"cart_id"`
	UserID       uuid.UUID `json:"user_id"`
	RemovedItems int       `json:"removed_items"`
}

// NewCartClearedEvent creates a new CartClearedEvent
func NewCartClearedEvent(cart *Cart, removedItems int) *CartClearedEvent {
	return &CartClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCleared, AggregateTypeCart, cart.ID),
		CartID:          cart.ID,
		UserID:          cart.UserID,
		RemovedItems:    removedItems,
	}
}
