package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var categoryOrderingFields = map[string]bool{
	"name":       true,
	"created_at": true,
}

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo   catalog.CategoryRepository
	productRepo    catalog.ProductRepository
	images         ImageStorage
	processor      ImageProcessor
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	images ImageStorage,
	processor ImageProcessor,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		images:       images,
		processor:    processor,
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for best-effort failures
func (s *CategoryService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// List returns a page of active categories with their active product counts
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	orderBy, orderDir := parseOrdering(filter.Ordering, categoryOrderingFields, "name", "asc")

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

	categories, err := s.categoryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	total, err := s.categoryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	ids := make([]uuid.UUID, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	counts, err := s.productCounts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i], counts[categories[i].ID], s.imageURL())
	}
	return responses, total, nil
}

// GetByID returns a category whether or not it is active
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryLookupError(err)
	}
	return s.present(ctx, category)
}

// Create creates a new category and stores its image, if any
func (s *CategoryService) Create(ctx context.Context, input CategoryInput, image *ImageUpload) (*CategoryResponse, error) {
	details := catalog.CategoryDetails{IsActive: true}
	applyCategoryInput(&details, input)

	if err := s.ensureUniqueName(ctx, details.Name, nil); err != nil {
		return nil, err
	}

	format, err := s.inspectImage(image)
	if err != nil {
		return nil, err
	}

	category, err := catalog.NewCategory(details)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, nameConflictError(err)
	}

	if image != nil {
		if err := s.attachImage(ctx, category, image.Data, format); err != nil {
			return nil, err
		}
	}

	s.publishDomainEvents(ctx, category)
	return s.present(ctx, category)
}

// Update changes the category's attributes. Nil input fields keep their
// current values.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input CategoryInput, image *ImageUpload) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryLookupError(err)
	}

	details := category.Details()
	applyCategoryInput(&details, input)

	if !strings.EqualFold(strings.TrimSpace(details.Name), category.Name) {
		if err := s.ensureUniqueName(ctx, details.Name, &category.ID); err != nil {
			return nil, err
		}
	}

	format, err := s.inspectImage(image)
	if err != nil {
		return nil, err
	}

	if err := category.Update(details); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.SaveWithLock(ctx, category); err != nil {
		return nil, nameConflictError(err)
	}

	if image != nil {
		if err := s.attachImage(ctx, category, image.Data, format); err != nil {
			return nil, err
		}
	}

	s.publishDomainEvents(ctx, category)
	return s.present(ctx, category)
}

// Delete deletes a category together with its products and their cart items
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return categoryLookupError(err)
	}

	products, err := s.productRepo.FindAll(ctx, shared.Filter{
		Filters: map[string]interface{}{catalog.FilterCategoryID: id},
	})
	if err != nil {
		return fmt.Errorf("failed to load category products: %w", err)
	}

	category.MarkDeleted()
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return categoryLookupError(err)
	}

	if category.Image != "" {
		s.deleteImage(ctx, category.Image)
	}
	for _, product := range products {
		if product.HasImage() {
			s.deleteImage(ctx, product.Image)
		}
	}

	s.publishDomainEvents(ctx, category)
	return nil
}

func (s *CategoryService) present(ctx context.Context, category *catalog.Category) (*CategoryResponse, error) {
	counts, err := s.productCounts(ctx, []uuid.UUID{category.ID})
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category, counts[category.ID], s.imageURL())
	return &response, nil
}

func (s *CategoryService) productCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	counts, err := s.productRepo.CountActiveByCategories(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	return counts, nil
}

// inspectImage checks that an upload decodes as an image and returns its format
func (s *CategoryService) inspectImage(image *ImageUpload) (string, error) {
	if image == nil {
		return "", nil
	}
	if s.processor == nil || s.images == nil {
		return "", shared.NewDomainError("INVALID_IMAGE", "Image uploads are not supported")
	}
	format, err := s.processor.Inspect(image.Data)
	if errors.Is(err, ErrImageTooLarge) {
		return "", shared.NewDomainError("INVALID_IMAGE", "Image dimensions are too large")
	}
	if err != nil {
		return "", shared.NewDomainError("INVALID_IMAGE",
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return format, nil
}

func (s *CategoryService) attachImage(ctx context.Context, category *catalog.Category, data []byte, format string) error {
	key := fmt.Sprintf("categories/%s/%s%s", category.ID, uuid.New(), imageExtension(format))
	if err := s.images.Upload(ctx, key, data, "image/"+format); err != nil {
		return fmt.Errorf("failed to store category image: %w", err)
	}

	previous := category.SetImage(key)
	if err := s.categoryRepo.SaveWithLock(ctx, category); err != nil {
		s.deleteImage(ctx, key)
		return fmt.Errorf("failed to record category image: %w", err)
	}

	if previous != "" {
		s.deleteImage(ctx, previous)
	}
	return nil
}

func (s *CategoryService) deleteImage(ctx context.Context, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete image", zap.String("key", key), zap.Error(err))
	}
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	exists, err := s.categoryRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Category with this name already exists")
	}
	return nil
}

func (s *CategoryService) imageURL() func(string) string {
	if s.images == nil {
		return nil
	}
	return s.images.URL
}

// publishDomainEvents publishes and clears the category's pending events
func (s *CategoryService) publishDomainEvents(ctx context.Context, category *catalog.Category) {
	events := category.GetDomainEvents()
	category.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

func applyCategoryInput(details *catalog.CategoryDetails, input CategoryInput) {
	if input.Name != nil {
		details.Name = *input.Name
	}
	if input.Description != nil {
		details.Description = *input.Description
	}
	if input.IsActive != nil {
		details.IsActive = *input.IsActive
	}
}

func imageExtension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ""
	default:
		return "." + format
	}
}

func categoryLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeNotFound, "Category not found")
	}
	return err
}

func nameConflictError(err error) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Category with this name already exists")
	}
	return err
}
