package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appcatalog "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// CartService handles cart operations for the authenticated user.
// Every mutation reads, checks and writes inside one transaction, locking the
// cart row before the product row.
type CartService struct {
	cartRepo       cart.CartRepository
	productRepo    catalog.ProductRepository
	txScope        TransactionScope
	presenter      *appcatalog.ProductPresenter
	eventPublisher shared.EventPublisher
}

// NewCartService creates a new CartService. A nil txScope runs mutations
// without a transaction.
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	txScope TransactionScope,
	presenter *appcatalog.ProductPresenter,
) *CartService {
	if txScope == nil {
		txScope = NewNoOpTransactionScope(cartRepo, productRepo)
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		txScope:     txScope,
		presenter:   presenter,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CartService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetCart returns the user's cart, creating it on first access
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return s.present(ctx, c)
}

// AddItem adds a product to the user's cart, merging with an existing item
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartResponse, error) {
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_item",
		attribute.String("product_id", input.ProductID.String()),
		attribute.Int("quantity", quantity),
	)
	var updated *cart.Cart
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CartRepo().GetOrCreateForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, input.ProductID)
		if err != nil {
			return productLookupError(err)
		}
		if _, err := c.AddItem(product, quantity); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)
	return s.present(ctx, updated)
}

// UpdateItem sets the quantity of an item in the user's cart
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "update_item",
		attribute.String("item_id", itemID.String()),
		attribute.Int("quantity", quantity),
	)
	var updated *cart.Cart
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CartRepo().GetOrCreateForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		item, ok := c.FindItem(itemID)
		if !ok {
			return shared.NewDomainError(shared.CodeNotFound, "Cart item not found")
		}
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return productLookupError(err)
		}
		if _, err := c.UpdateItemQuantity(itemID, product, quantity); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)
	return s.present(ctx, updated)
}

// RemoveItem deletes one item from the user's cart
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	var updated *cart.Cart
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CartRepo().GetOrCreateForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := c.RemoveItem(itemID); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)
	return s.present(ctx, updated)
}

// ClearCart deletes every item from the user's cart
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	var updated *cart.Cart
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CartRepo().GetOrCreateForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		c.Clear()
		if err := repos.CartRepo().Save(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, updated)
	return s.present(ctx, updated)
}

// present builds the cart response with current product data and totals
func (s *CartService) present(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	response := &CartResponse{
		ID:         c.ID,
		Items:      make([]CartItemResponse, 0, len(c.Items)),
		TotalItems: c.TotalItems(),
		TotalPrice: decimal.Zero,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if len(c.Items) == 0 {
		return response, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	presented, err := s.presenter.Present(ctx, products)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*appcatalog.ProductResponse, len(presented))
	for i := range presented {
		byID[presented[i].ID] = &presented[i]
	}
	prices := make(map[uuid.UUID]valueobject.Money, len(products))
	for i := range products {
		prices[products[i].ID] = products[i].Price
	}

	for i := range c.Items {
		item := &c.Items[i]
		response.Items = append(response.Items, CartItemResponse{
			ID:         item.ID,
			Product:    byID[item.ProductID],
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice(prices[item.ProductID]).Amount(),
			CreatedAt:  item.CreatedAt,
			UpdatedAt:  item.UpdatedAt,
		})
	}
	response.TotalPrice = c.TotalPrice(prices).Amount()
	return response, nil
}

// publishDomainEvents publishes and clears the cart's pending events
func (s *CartService) publishDomainEvents(ctx context.Context, c *cart.Cart) {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

func productLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, "Product not found")
	}
	return err
}
