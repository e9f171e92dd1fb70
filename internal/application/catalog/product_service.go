package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// DefaultFeaturedLimit is the number of featured products returned
const DefaultFeaturedLimit = 8

var productOrderingFields = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	images         ImageStorage
	processor      ImageProcessor
	presenter      *ProductPresenter
	featuredCache  FeaturedCache
	featuredLimit  int
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// ProductServiceOption configures optional ProductService collaborators
type ProductServiceOption func(*ProductService)

// WithFeaturedCache caches the featured product list
func WithFeaturedCache(cache FeaturedCache) ProductServiceOption {
	return func(s *ProductService) {
		s.featuredCache = cache
	}
}

// WithFeaturedLimit sets how many featured products are returned
func WithFeaturedLimit(limit int) ProductServiceOption {
	return func(s *ProductService) {
		if limit > 0 {
			s.featuredLimit = limit
		}
	}
}

// WithProductEventPublisher publishes product domain events after each write
func WithProductEventPublisher(publisher shared.EventPublisher) ProductServiceOption {
	return func(s *ProductService) {
		s.eventPublisher = publisher
	}
}

// WithProductLogger sets the logger used for best-effort failures
func WithProductLogger(logger *zap.Logger) ProductServiceOption {
	return func(s *ProductService) {
		s.logger = logger
	}
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	images ImageStorage,
	processor ImageProcessor,
	opts ...ProductServiceOption,
) *ProductService {
	s := &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		images:        images,
		processor:     processor,
		presenter:     NewProductPresenter(productRepo, categoryRepo, images),
		featuredLimit: DefaultFeaturedLimit,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Presenter returns the presenter used to build product responses
func (s *ProductService) Presenter() *ProductPresenter {
	return s.presenter
}

// List returns a page of products matching the filter. Only active products
// are listed.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	orderBy, orderDir := parseOrdering(filter.Ordering, productOrderingFields, "created_at", "desc")

	domainFilter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   strings.TrimSpace(filter.Search),
		Filters: map[string]interface{}{
			catalog.FilterIsActive: true,
		},
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		domainFilter.Filters[catalog.FilterName] = name
	}
	if filter.CategoryID != nil {
		domainFilter.Filters[catalog.FilterCategoryID] = *filter.CategoryID
	}
	if filter.MinPrice != nil {
		domainFilter.Filters[catalog.FilterMinPrice] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters[catalog.FilterMaxPrice] = *filter.MaxPrice
	}
	if filter.IsFeatured != nil {
		domainFilter.Filters[catalog.FilterIsFeatured] = *filter.IsFeatured
	}
	if filter.InStock != nil {
		domainFilter.Filters[catalog.FilterInStock] = *filter.InStock
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	responses, err := s.presenter.Present(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// Search returns every active product matching the query, newest first
func (s *ProductService) Search(ctx context.Context, filter ProductSearchFilter) ([]ProductResponse, error) {
	domainFilter := shared.Filter{
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(filter.Query),
		Filters: map[string]interface{}{
			catalog.FilterIsActive: true,
		},
	}
	if filter.CategoryID != nil {
		domainFilter.Filters[catalog.FilterCategoryID] = *filter.CategoryID
	}
	if filter.MinPrice != nil {
		domainFilter.Filters[catalog.FilterMinPrice] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters[catalog.FilterMaxPrice] = *filter.MaxPrice
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return s.presenter.Present(ctx, products)
}

// Featured returns the newest active featured products
func (s *ProductService) Featured(ctx context.Context) ([]ProductResponse, error) {
	if s.featuredCache != nil {
		cached, ok, err := s.featuredCache.Get(ctx)
		if err != nil {
			s.logger.Warn("featured cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	products, err := s.productRepo.FindFeatured(ctx, s.featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}
	responses, err := s.presenter.Present(ctx, products)
	if err != nil {
		return nil, err
	}

	if s.featuredCache != nil {
		if err := s.featuredCache.Set(ctx, responses); err != nil {
			s.logger.Warn("featured cache write failed", zap.Error(err))
		}
	}
	return responses, nil
}

// GetByID returns a product whether or not it is active
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}
	return s.presenter.PresentOne(ctx, product)
}

// Create creates a new product and stores its image, if any
func (s *ProductService) Create(ctx context.Context, input ProductInput, image *ImageUpload) (*ProductResponse, error) {
	details := catalog.ProductDetails{IsActive: true}
	applyProductInput(&details, input)

	if err := s.ensureCategory(ctx, details.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, details.SKU, nil); err != nil {
		return nil, err
	}

	processed, err := s.processImage(image)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(details)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, skuConflictError(err)
	}

	if processed != nil {
		if err := s.attachImage(ctx, product, processed); err != nil {
			// The row is already committed, so its events still go out.
			s.publishDomainEvents(ctx, product)
			return nil, err
		}
	}

	s.publishDomainEvents(ctx, product)
	return s.presenter.PresentOne(ctx, product)
}

// Update changes the product's attributes. Nil input fields keep their current
// values, so the same call serves full and partial updates.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input ProductInput, image *ImageUpload) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}

	details := product.Details()
	applyProductInput(&details, input)

	if details.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, details.CategoryID); err != nil {
			return nil, err
		}
	}
	if details.SKU != "" && details.SKU != product.SKU {
		if err := s.ensureUniqueSKU(ctx, details.SKU, &product.ID); err != nil {
			return nil, err
		}
	}

	processed, err := s.processImage(image)
	if err != nil {
		return nil, err
	}

	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, skuConflictError(err)
	}

	if processed != nil {
		if err := s.attachImage(ctx, product, processed); err != nil {
			// The row is already committed, so its events still go out.
			s.publishDomainEvents(ctx, product)
			return nil, err
		}
	}

	s.publishDomainEvents(ctx, product)
	return s.presenter.PresentOne(ctx, product)
}

// Delete deletes a product, its cart items and its image
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return productLookupError(err)
	}

	product.MarkDeleted()
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return productLookupError(err)
	}

	if product.HasImage() {
		s.deleteImage(ctx, product.Image)
	}

	s.publishDomainEvents(ctx, product)
	return nil
}

// processImage runs an upload through the image processor
func (s *ProductService) processImage(image *ImageUpload) ([]byte, error) {
	if image == nil {
		return nil, nil
	}
	if s.processor == nil || s.images == nil {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image uploads are not supported")
	}
	processed, err := s.processor.Process(image.Data)
	if errors.Is(err, ErrImageTooLarge) {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image dimensions are too large")
	}
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMAGE",
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return processed, nil
}

// attachImage uploads a processed image for a persisted product, records its
// key and removes the image it replaces
func (s *ProductService) attachImage(ctx context.Context, product *catalog.Product, data []byte) error {
	key := fmt.Sprintf("products/%s/%s.jpg", product.ID, uuid.New())
	if err := s.images.Upload(ctx, key, data, "image/jpeg"); err != nil {
		return fmt.Errorf("failed to store product image: %w", err)
	}

	previous := product.SetImage(key)
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		s.deleteImage(ctx, key)
		return fmt.Errorf("failed to record product image: %w", err)
	}

	if previous != "" {
		s.deleteImage(ctx, previous)
	}
	return nil
}

func (s *ProductService) deleteImage(ctx context.Context, key string) {
	if err := s.images.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete image", zap.String("key", key), zap.Error(err))
	}
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) ensureUniqueSKU(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	if sku == "" {
		return nil
	}
	exists, err := s.productRepo.ExistsBySKU(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
	}
	return nil
}

// publishDomainEvents publishes and clears the product's pending events
func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publish events (errors are logged by the event bus, not propagated)
	_ = s.eventPublisher.Publish(ctx, events...)
}

func applyProductInput(details *catalog.ProductDetails, input ProductInput) {
	if input.Name != nil {
		details.Name = *input.Name
	}
	if input.Description != nil {
		details.Description = *input.Description
	}
	if input.Price != nil {
		details.Price = valueobject.NewMoney(*input.Price)
	}
	if input.CategoryID != nil {
		details.CategoryID = *input.CategoryID
	}
	if input.Quantity != nil {
		details.Quantity = *input.Quantity
	}
	if input.SKU != nil {
		details.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.IsActive != nil {
		details.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		details.IsFeatured = *input.IsFeatured
	}
}

func productLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, "Product not found")
	}
	return err
}

func skuConflictError(err error) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
	}
	return err
}
