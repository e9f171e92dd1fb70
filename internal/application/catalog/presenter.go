package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
)

// ProductPresenter builds API responses for products, loading the category
// and its active product count that every product response embeds
type ProductPresenter struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	images       ImageStorage
}

// NewProductPresenter creates a new ProductPresenter. images may be nil, in
// which case image fields hold the raw storage key.
func NewProductPresenter(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	images ImageStorage,
) *ProductPresenter {
	return &ProductPresenter{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
	}
}

// Present converts products to responses, preserving their order
func (p *ProductPresenter) Present(ctx context.Context, products []catalog.Product) ([]ProductResponse, error) {
	categoryIDs := make([]uuid.UUID, 0, len(products))
	seen := make(map[uuid.UUID]bool, len(products))
	for _, product := range products {
		if !seen[product.CategoryID] {
			seen[product.CategoryID] = true
			categoryIDs = append(categoryIDs, product.CategoryID)
		}
	}

	categories, err := p.Categories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i], categories[products[i].CategoryID], p.imageURL())
	}
	return responses, nil
}

// PresentOne converts a single product to a response
func (p *ProductPresenter) PresentOne(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	responses, err := p.Present(ctx, []catalog.Product{*product})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// Categories loads category responses with active product counts keyed by ID
func (p *ProductPresenter) Categories(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*CategoryResponse, error) {
	result := make(map[uuid.UUID]*CategoryResponse, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	categories, err := p.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	counts, err := p.productRepo.CountActiveByCategories(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	for i := range categories {
		response := ToCategoryResponse(&categories[i], counts[categories[i].ID], p.imageURL())
		result[categories[i].ID] = &response
	}
	return result, nil
}

func (p *ProductPresenter) imageURL() func(string) string {
	if p.images == nil {
		return nil
	}
	return p.images.URL
}
