package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, quantity int, price float64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(catalog.ProductDetails{
		Name:       "Desk Lamp",
		Price:      valueobject.NewMoney(decimal.NewFromFloat(price)),
		CategoryID: uuid.New(),
		Quantity:   quantity,
		IsActive:   true,
	})
	require.NoError(t, err)
	return product
}

func newTestCart(t *testing.T) *Cart {
	t.Helper()
	cart, err := NewCart(uuid.New())
	require.NoError(t, err)
	return cart
}

func TestNewCart(t *testing.T) {
	t.Run("creates empty cart", func(t *testing.T) {
		userID := uuid.New()
		cart, err := NewCart(userID)
		require.NoError(t, err)
		assert.Equal(t, userID, cart.UserID)
		assert.Empty(t, cart.Items)
		assert.Equal(t, 0, cart.TotalItems())
		assert.Equal(t, 1, cart.GetVersion())
	})

	t.Run("requires a user", func(t *testing.T) {
		_, err := NewCart(uuid.Nil)
		require.Error(t, err)
	})
}

func TestCartAddItem(t *testing.T) {
	t.Run("adding to an empty cart creates one item", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 5, 10)

		item, err := cart.AddItem(product, 3)
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, product.ID, item.ProductID)
		assert.Equal(t, cart.ID, item.CartID)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, 3, cart.TotalItems())
		assert.Equal(t, 2, cart.GetVersion())

		events := cart.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCartItemAdded, events[0].EventType())
	})

	t.Run("adding the same product merges quantities", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 10, 10)

		first, err := cart.AddItem(product, 2)
		require.NoError(t, err)
		second, err := cart.AddItem(product, 3)
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 5, cart.Items[0].Quantity)
	})

	t.Run("merge above stock is rejected and nothing changes", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 5, 10)

		_, err := cart.AddItem(product, 3)
		require.NoError(t, err)
		version := cart.GetVersion()

		_, err = cart.AddItem(product, 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "Cannot add 3 more items. Only 2 available.", err.Error())

		assert.Equal(t, 3, cart.Items[0].Quantity)
		assert.Equal(t, 3, cart.TotalItems())
		assert.Equal(t, version, cart.GetVersion())
	})

	t.Run("new item above stock is rejected", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 2, 10)

		_, err := cart.AddItem(product, 3)
		require.Error(t, err)
		assert.Equal(t, "Only 2 items available.", err.Error())
		assert.Empty(t, cart.Items)
	})

	t.Run("quantity equal to stock is accepted", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 4, 10)

		_, err := cart.AddItem(product, 4)
		require.NoError(t, err)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		cart := newTestCart(t)
		_, err := cart.AddItem(newTestProduct(t, 4, 10), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 1")
	})

	t.Run("inactive product is not found", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 4, 10)
		product.IsActive = false

		_, err := cart.AddItem(product, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCartUpdateItemQuantity(t *testing.T) {
	t.Run("updates quantity within stock", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 10, 10)
		item, err := cart.AddItem(product, 1)
		require.NoError(t, err)

		updated, err := cart.UpdateItemQuantity(item.ID, product, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, updated.Quantity)
		assert.Equal(t, 7, cart.TotalItems())
	})

	t.Run("quantity above stock leaves item unchanged", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 5, 10)
		item, err := cart.AddItem(product, 2)
		require.NoError(t, err)

		_, err = cart.UpdateItemQuantity(item.ID, product, 6)
		require.Error(t, err)
		assert.Equal(t, "Only 5 items available.", err.Error())
		assert.Equal(t, 2, cart.Items[0].Quantity)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		cart := newTestCart(t)
		_, err := cart.UpdateItemQuantity(uuid.New(), newTestProduct(t, 5, 10), 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 5, 10)
		item, err := cart.AddItem(product, 2)
		require.NoError(t, err)

		_, err = cart.UpdateItemQuantity(item.ID, product, 0)
		require.Error(t, err)
		assert.Equal(t, 2, cart.Items[0].Quantity)
	})

	t.Run("mismatched product is rejected", func(t *testing.T) {
		cart := newTestCart(t)
		product := newTestProduct(t, 5, 10)
		item, err := cart.AddItem(product, 2)
		require.NoError(t, err)

		_, err = cart.UpdateItemQuantity(item.ID, newTestProduct(t, 5, 10), 1)
		require.Error(t, err)
	})
}

func TestCartRemoveItem(t *testing.T) {
	cart := newTestCart(t)
	lamp := newTestProduct(t, 5, 10)
	chair := newTestProduct(t, 5, 40)

	lampItem, err := cart.AddItem(lamp, 1)
	require.NoError(t, err)
	lampItemID := lampItem.ID
	_, err = cart.AddItem(chair, 2)
	require.NoError(t, err)

	require.NoError(t, cart.RemoveItem(lampItemID))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, chair.ID, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	t.Run("removing a missing item is not found", func(t *testing.T) {
		err := cart.RemoveItem(lampItemID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCartClear(t *testing.T) {
	cart := newTestCart(t)
	_, err := cart.AddItem(newTestProduct(t, 5, 10), 1)
	require.NoError(t, err)
	_, err = cart.AddItem(newTestProduct(t, 5, 10), 2)
	require.NoError(t, err)
	cart.ClearDomainEvents()

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems())
	events := cart.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].(*CartClearedEvent).RemovedItems)

	t.Run("clearing an empty cart publishes nothing", func(t *testing.T) {
		cart.ClearDomainEvents()
		cart.Clear()
		assert.Empty(t, cart.GetDomainEvents())
	})
}

func TestCartTotalPrice(t *testing.T) {
	cart := newTestCart(t)
	lamp := newTestProduct(t, 10, 12.5)
	chair := newTestProduct(t, 10, 40)

	_, err := cart.AddItem(lamp, 2)
	require.NoError(t, err)
	_, err = cart.AddItem(chair, 1)
	require.NoError(t, err)

	prices := map[uuid.UUID]valueobject.Money{
		lamp.ID:  lamp.Price,
		chair.ID: chair.Price,
	}
	assert.Equal(t, "65.00", cart.TotalPrice(prices).String())
	assert.True(t, cart.TotalPrice(nil).IsZero())
	assert.ElementsMatch(t, []uuid.UUID{lamp.ID, chair.ID}, cart.ProductIDs())

	item, ok := cart.FindItemByProduct(lamp.ID)
	require.True(t, ok)
	assert.True(t, item.TotalPrice(lamp.Price).Equals(valueobject.NewMoneyFromInt(25)))
}
