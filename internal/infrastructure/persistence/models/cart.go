package models

import (
	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/cart"
)

// CartModel is the persistence model for the Cart aggregate.
type CartModel struct {
	AggregateModel
	UserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_carts_user_id"`
	Items  []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart aggregate.
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		UserID: m.UserID,
		Items:  make([]cart.CartItem, len(m.Items)),
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	for i := range m.Items {
		c.Items[i] = m.Items[i].ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Cart aggregate.
// Items are not copied; the repository writes them separately.
func (m *CartModel) FromDomain(c *cart.Cart) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
}

// CartModelFromDomain creates a new persistence model from a domain Cart aggregate.
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}

// CartItemModel is the persistence model for a cart line.
type CartItemModel struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:2;index"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain CartItem.
func (m *CartItemModel) ToDomain() cart.CartItem {
	return cart.CartItem{
		BaseEntity: m.BaseModel.ToDomain(),
		CartID:     m.CartID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
	}
}

// CartItemModelFromDomain creates a new persistence model from a domain CartItem.
func CartItemModelFromDomain(item cart.CartItem) *CartItemModel {
	m := &CartItemModel{
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	m.FromDomainBaseEntity(item.BaseEntity)
	return m
}
