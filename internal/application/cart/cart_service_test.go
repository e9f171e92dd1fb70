package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	appcatalog "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// memoryCartRepository keeps carts in memory and hands out copies, so that a
// failed mutation never leaks into stored state
type memoryCartRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]cart.Cart
	saves int
}

func newMemoryCartRepository() *memoryCartRepository {
	return &memoryCartRepository{carts: make(map[uuid.UUID]cart.Cart)}
}

func (r *memoryCartRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyCart(stored), nil
}

func (r *memoryCartRepository) GetOrCreate(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[userID]
	if !ok {
		created, err := cart.NewCart(userID)
		if err != nil {
			return nil, err
		}
		stored = *created
		r.carts[userID] = stored
	}
	return copyCart(stored), nil
}

func (r *memoryCartRepository) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	return r.GetOrCreate(ctx, userID)
}

func (r *memoryCartRepository) Save(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.carts[c.UserID] = *copyCart(*c)
	return nil
}

func copyCart(c cart.Cart) *cart.Cart {
	items := make([]cart.CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	c.ClearDomainEvents()
	return &c
}

// memoryProductRepository serves a fixed set of products
type memoryProductRepository struct {
	catalog.ProductRepository
	products map[uuid.UUID]*catalog.Product
}

func (r *memoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *memoryProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryProductRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (r *memoryProductRepository) CountActiveByCategories(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	for _, product := range r.products {
		if product.IsActive {
			counts[product.CategoryID]++
		}
	}
	return counts, nil
}

// memoryCategoryRepository serves a single category
type memoryCategoryRepository struct {
	catalog.CategoryRepository
	category *catalog.Category
}

func (r *memoryCategoryRepository) FindByIDs(_ context.Context, _ []uuid.UUID) ([]catalog.Category, error) {
	return []catalog.Category{*r.category}, nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type cartFixture struct {
	carts    *memoryCartRepository
	products *memoryProductRepository
	service  *CartService
	category *catalog.Category
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	category, err := catalog.NewCategory(catalog.CategoryDetails{Name: "Toys", IsActive: true})
	require.NoError(t, err)

	f := &cartFixture{
		carts:    newMemoryCartRepository(),
		products: &memoryProductRepository{products: make(map[uuid.UUID]*catalog.Product)},
		category: category,
	}
	presenter := appcatalog.NewProductPresenter(f.products, &memoryCategoryRepository{category: category}, nil)
	f.service = NewCartService(f.carts, f.products, nil, presenter)
	return f
}

func (f *cartFixture) addProduct(t *testing.T, name string, price float64, quantity int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(catalog.ProductDetails{
		Name:       name,
		Price:      valueobject.NewMoney(decimal.NewFromFloat(price)),
		CategoryID: f.category.ID,
		Quantity:   quantity,
		IsActive:   true,
	})
	require.NoError(t, err)
	f.products.products[product.ID] = product
	return product
}

func quantity(q int) *int { return &q }

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	domainErr, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCartService_GetCart_CreatesEmptyCart(t *testing.T) {
	f := newCartFixture(t)
	userID := uuid.New()

	first, err := f.service.GetCart(context.Background(), userID)
	require.NoError(t, err)
	second, err := f.service.GetCart(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, first.Items)
	assert.Equal(t, 0, first.TotalItems)
	assert.True(t, first.TotalPrice.IsZero())
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("adds one item with the requested quantity", func(t *testing.T) {
		f := newCartFixture(t)
		product := f.addProduct(t, "Kite", 12.50, 10)
		userID := uuid.New()

		result, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: quantity(2)})

		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, 2, result.Items[0].Quantity)
		assert.Equal(t, product.ID, result.Items[0].Product.ID)
		assert.True(t, decimal.NewFromInt(25).Equal(result.Items[0].TotalPrice))
		assert.Equal(t, 2, result.TotalItems)
		assert.True(t, decimal.NewFromInt(25).Equal(result.TotalPrice))
	})

	t.Run("defaults quantity to one", func(t *testing.T) {
		f := newCartFixture(t)
		product := f.addProduct(t, "Yo-yo", 3, 10)

		result, err := f.service.AddItem(ctx, uuid.New(), AddItemInput{ProductID: product.ID})

		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalItems)
	})

	t.Run("merges repeated adds and rejects overflow without change", func(t *testing.T) {
		f := newCartFixture(t)
		product := f.addProduct(t, "Puzzle", 8, 5)
		userID := uuid.New()

		result, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: quantity(3)})
		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalItems)

		_, err = f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: quantity(3)})
		assertDomainCode(t, err, shared.CodeInsufficientStock)
		assert.Equal(t, "Cannot add 3 more items. Only 2 available.", err.Error())

		current, err := f.service.GetCart(ctx, userID)
		require.NoError(t, err)
		require.Len(t, current.Items, 1)
		assert.Equal(t, 3, current.Items[0].Quantity)

		result, err = f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: quantity(2)})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, 5, result.Items[0].Quantity)
	})

	t.Run("rejects new item above stock", func(t *testing.T) {
		f := newCartFixture(t)
		product := f.addProduct(t, "Robot", 40, 2)

		_, err := f.service.AddItem(ctx, uuid.New(), AddItemInput{ProductID: product.ID, Quantity: quantity(3)})

		assertDomainCode(t, err, shared.CodeInsufficientStock)
		assert.Equal(t, "Only 2 items available.", err.Error())
	})

	t.Run("rejects unknown and inactive products", func(t *testing.T) {
		f := newCartFixture(t)
		inactive := f.addProduct(t, "Retired", 1, 10)
		inactive.IsActive = false

		_, err := f.service.AddItem(ctx, uuid.New(), AddItemInput{ProductID: uuid.New()})
		assertDomainCode(t, err, shared.CodeNotFound)

		_, err = f.service.AddItem(ctx, uuid.New(), AddItemInput{ProductID: inactive.ID})
		assertDomainCode(t, err, shared.CodeNotFound)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		f := newCartFixture(t)
		product := f.addProduct(t, "Ball", 1, 10)

		_, err := f.service.AddItem(ctx, uuid.New(), AddItemInput{ProductID: product.ID, Quantity: quantity(0)})

		assertDomainCode(t, err, "INVALID_QUANTITY")
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Drone", 99, 4)
	userID := uuid.New()

	added, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: quantity(1)})
	require.NoError(t, err)
	itemID := added.Items[0].ID

	t.Run("rejects quantity above stock and keeps stored value", func(t *testing.T) {
		_, err := f.service.UpdateItem(ctx, userID, itemID, 5)

		assertDomainCode(t, err, shared.CodeInsufficientStock)
		assert.Equal(t, "Only 4 items available.", err.Error())

		current, err := f.service.GetCart(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, current.Items[0].Quantity)
	})

	t.Run("sets quantity", func(t *testing.T) {
		result, err := f.service.UpdateItem(ctx, userID, itemID, 4)

		require.NoError(t, err)
		assert.Equal(t, 4, result.Items[0].Quantity)
		assert.True(t, decimal.NewFromInt(396).Equal(result.TotalPrice))
	})

	t.Run("does not reach into another user's cart", func(t *testing.T) {
		_, err := f.service.UpdateItem(ctx, uuid.New(), itemID, 1)

		assertDomainCode(t, err, shared.CodeNotFound)
	})
}

func TestCartService_RemoveItem_LeavesSiblings(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	first := f.addProduct(t, "Blocks", 5, 10)
	second := f.addProduct(t, "Train", 15, 10)
	userID := uuid.New()

	_, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: first.ID, Quantity: quantity(2)})
	require.NoError(t, err)
	added, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: second.ID, Quantity: quantity(1)})
	require.NoError(t, err)

	var removeID uuid.UUID
	for _, item := range added.Items {
		if item.ProductID == first.ID {
			removeID = item.ID
		}
	}

	result, err := f.service.RemoveItem(ctx, userID, removeID)

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, second.ID, result.Items[0].ProductID)
	assert.Equal(t, 1, result.TotalItems)

	_, err = f.service.RemoveItem(ctx, userID, removeID)
	assertDomainCode(t, err, shared.CodeNotFound)
}

func TestCartService_ClearCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Doll", 20, 10)
	userID := uuid.New()

	_, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: quantity(3)})
	require.NoError(t, err)

	result, err := f.service.ClearCart(ctx, userID)

	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalItems)
	assert.True(t, result.TotalPrice.IsZero())

	empty, err := f.service.ClearCart(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestCartService_PublishesEventsAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Marbles", 2, 10)
	publisher := new(MockEventPublisher)
	f.service.SetEventPublisher(publisher)

	publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == cart.EventTypeCartItemAdded
	})).Return(errors.New("bus unavailable"))

	_, err := f.service.AddItem(ctx, uuid.New(), AddItemInput{ProductID: product.ID})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

type failingScope struct{}

func (failingScope) Execute(_ context.Context, _ func(TransactionalRepositories) error) error {
	return shared.ErrConcurrencyConflict
}

func TestCartService_TransactionFailure(t *testing.T) {
	f := newCartFixture(t)
	presenter := appcatalog.NewProductPresenter(f.products, &memoryCategoryRepository{category: f.category}, nil)
	service := NewCartService(f.carts, f.products, failingScope{}, presenter)

	_, err := service.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: uuid.New()})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 0, f.carts.saves)
}

func TestCartService_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	f := newCartFixture(t)
	product := f.addProduct(t, "Kite", 12, 2)
	ctx := context.Background()
	userID := uuid.New()

	result, err := f.service.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	_, err = f.service.UpdateItem(ctx, userID, result.Items[0].ID, 5)
	assertDomainCode(t, err, shared.CodeInsufficientStock)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "cart.add_item", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("product_id", product.ID.String()))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "cart.update_item", spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.Int("quantity", 5))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "Only 2 items available.", spans[1].Status().Description)
}
