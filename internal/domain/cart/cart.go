package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
)

// Cart holds the items a user intends to buy. Each user owns at most one cart.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Items  []CartItem
}

// CartItem is one product line in a cart
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// NewCart creates an empty cart for the user
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]CartItem, 0),
	}, nil
}

// FindItem returns the item with the given ID
func (c *Cart) FindItem(itemID uuid.UUID) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// FindItemByProduct returns the item holding the given product
func (c *Cart) FindItemByProduct(productID uuid.UUID) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// AddItem adds quantity units of the product. Adding a product already in the
// cart merges into the existing item. Nothing changes when the resulting
// quantity would exceed the product's stock.
func (c *Cart) AddItem(product *catalog.Product, quantity int) (*CartItem, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if err := validateItemQuantity(quantity); err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Product not found")
	}

	if item, ok := c.FindItemByProduct(product.ID); ok {
		if !product.CanSupply(item.Quantity + quantity) {
			return nil, shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Cannot add %d more items. Only %d available.", quantity, max(product.Quantity-item.Quantity, 0)))
		}
		oldQuantity := item.Quantity
		item.Quantity += quantity
		item.UpdatedAt = time.Now()
		c.touch()
		c.AddDomainEvent(NewCartItemQuantityChangedEvent(c, item, oldQuantity))
		return item, nil
	}

	if !product.CanSupply(quantity) {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Only %d items available.", product.Quantity))
	}

	item := CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  product.ID,
		Quantity:   quantity,
	}
	c.Items = append(c.Items, item)
	c.touch()

	added := &c.Items[len(c.Items)-1]
	c.AddDomainEvent(NewCartItemAddedEvent(c, added))

	return added, nil
}

// UpdateItemQuantity sets the quantity of an item. The product must be the
// one the item references.
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, product *catalog.Product, quantity int) (*CartItem, error) {
	if err := validateItemQuantity(quantity); err != nil {
		return nil, err
	}

	item, ok := c.FindItem(itemID)
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Cart item not found")
	}
	if product == nil || product.ID != item.ProductID {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product does not match cart item")
	}
	if !product.CanSupply(quantity) {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Only %d items available.", product.Quantity))
	}

	oldQuantity := item.Quantity
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	c.touch()
	c.AddDomainEvent(NewCartItemQuantityChangedEvent(c, item, oldQuantity))

	return item, nil
}

// RemoveItem deletes one item from the cart
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			removed := c.Items[i]
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			c.AddDomainEvent(NewCartItemRemovedEvent(c, &removed))
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Cart item not found")
}

// Clear deletes every item from the cart
func (c *Cart) Clear() {
	removed := len(c.Items)
	c.Items = make([]CartItem, 0)
	c.touch()
	if removed > 0 {
		c.AddDomainEvent(NewCartClearedEvent(c, removed))
	}
}

// TotalItems returns the sum of item quantities
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// ProductIDs returns the distinct products held in the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// TotalPrice sums quantity times price over the items. Items whose product is
// missing from prices count as zero.
func (c *Cart) TotalPrice(prices map[uuid.UUID]valueobject.Money) valueobject.Money {
	total := valueobject.ZeroMoney()
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice(prices[item.ProductID]))
	}
	return total
}

// TotalPrice returns quantity times the unit price
func (i *CartItem) TotalPrice(unitPrice valueobject.Money) valueobject.Money {
	return unitPrice.MultiplyByInt(int64(i.Quantity))
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateItemQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	return nil
}
