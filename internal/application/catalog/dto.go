package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

const (
	// DefaultPageSize is used when a list request does not name a page size
	DefaultPageSize = 20
	// MaxPageSize caps the page size of list requests
	MaxPageSize = 100
)

// ProductInput carries product attributes from a create or update request.
// Nil fields are left unchanged (or take their defaults on create).
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *uuid.UUID
	Quantity    *int
	SKU         *string
	IsActive    *bool
	IsFeatured  *bool
}

// CategoryInput carries category attributes from a create or update request
type CategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// ImageUpload is an uploaded image file
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Name       string
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsFeatured *bool
	InStock    *bool
	Search     string
	Ordering   string // name, price or created_at, "-" prefix for descending
	Page       int
	PageSize   int
}

// ProductSearchFilter represents the parameters of the unpaginated product search
type ProductSearchFilter struct {
	Query      string
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// CategoryListFilter represents filter options for the category list
type CategoryListFilter struct {
	Search   string
	Ordering string // name or created_at, "-" prefix for descending
	Page     int
	PageSize int
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID            uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Image         *string   `json:"image"`
	IsActive      bool      `json:"is_active"`
	ProductsCount int64     `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID         `json:"id" swaggertype:"string" format:"uuid"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price" swaggertype:"string" example:"19.99"`
	Category    *CategoryResponse `json:"category"`
	CategoryID  uuid.UUID         `json:"category_id" swaggertype:"string" format:"uuid"`
	Quantity    int               `json:"quantity"`
	Image       *string           `json:"image"`
	SKU         string            `json:"sku"`
	IsActive    bool              `json:"is_active"`
	IsFeatured  bool              `json:"is_featured"`
	StockStatus string            `json:"stock_status"`
	IsInStock   bool              `json:"is_in_stock"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Version     int               `json:"version"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category, productsCount int64, imageURL func(string) string) CategoryResponse {
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Image:         resolveImage(c.Image, imageURL),
		IsActive:      c.IsActive,
		ProductsCount: productsCount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	}
}

// ToProductResponse converts a domain Product to ProductResponse.
// category may be nil when it could not be loaded.
func ToProductResponse(p *catalog.Product, category *CategoryResponse, imageURL func(string) string) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount(),
		Category:    category,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		Image:       resolveImage(p.Image, imageURL),
		SKU:         p.SKU,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
		StockStatus: string(p.StockStatus()),
		IsInStock:   p.IsInStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

func resolveImage(key string, imageURL func(string) string) *string {
	if key == "" {
		return nil
	}
	url := key
	if imageURL != nil {
		url = imageURL(key)
	}
	return &url
}

// parseOrdering splits an ordering expression such as "-price" into a field
// and direction. Fields outside allowed yield the fallback.
func parseOrdering(ordering string, allowed map[string]bool, fallbackField, fallbackDir string) (string, string) {
	ordering = strings.TrimSpace(ordering)
	dir := "asc"
	if strings.HasPrefix(ordering, "-") {
		dir = "desc"
		ordering = ordering[1:]
	}
	if !allowed[ordering] {
		return fallbackField, fallbackDir
	}
	return ordering, dir
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
