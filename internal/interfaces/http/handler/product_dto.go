package handler

import (
	"encoding/json"

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopcart/backend/internal/interfaces/http/dto"
)

// ProductRequest is the body of a product create or full update. The body may
// be JSON or multipart/form-data with the image in the "image" field.
// @Description Request body for creating or replacing a product
type ProductRequest struct {
	Name        *string      `json:"name" form:"name" binding:"required,max=200" example:"Wireless Mouse"`
	Description *string      `json:"description" form:"description" binding:"required" example:"Ergonomic 2.4GHz mouse"`
	Price       *json.Number `json:"price" form:"price" binding:"required,decimal" swaggertype:"string" example:"19.99"`
	CategoryID  *string      `json:"category_id" form:"category_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Category    *string      `json:"category" form:"category" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity    *int         `json:"quantity" form:"quantity" example:"25"`
	SKU         *string      `json:"sku" form:"sku" binding:"omitempty,max=100" example:"MOUSE-001"`
	IsActive    *bool        `json:"is_active" form:"is_active" example:"true"`
	IsFeatured  *bool        `json:"is_featured" form:"is_featured" example:"false"`
}

// PatchProductRequest is the body of a partial product update
// @Description Request body for partially updating a product
type PatchProductRequest struct {
	Name        *string      `json:"name" form:"name" binding:"omitempty,max=200" example:"Wireless Mouse"`
	Description *string      `json:"description" form:"description" example:"Ergonomic 2.4GHz mouse"`
	Price       *json.Number `json:"price" form:"price" binding:"omitempty,decimal" swaggertype:"string" example:"17.99"`
	CategoryID  *string      `json:"category_id" form:"category_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Category    *string      `json:"category" form:"category" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity    *int         `json:"quantity" form:"quantity" example:"30"`
	SKU         *string      `json:"sku" form:"sku" binding:"omitempty,max=100" example:"MOUSE-001"`
	IsActive    *bool        `json:"is_active" form:"is_active" example:"true"`
	IsFeatured  *bool        `json:"is_featured" form:"is_featured" example:"true"`
}

// toInput converts the request to the application input
func (r PatchProductRequest) toInput() (catalogapp.ProductInput, error) {
	price, err := toDecimalPtr(r.Price)
	if err != nil {
		return catalogapp.ProductInput{}, err
	}
	categoryID := r.CategoryID
	if categoryID == nil {
		categoryID = r.Category
	}
	return catalogapp.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		CategoryID:  parseUUIDPtr(categoryID),
		Quantity:    r.Quantity,
		SKU:         r.SKU,
		IsActive:    r.IsActive,
		IsFeatured:  r.IsFeatured,
	}, nil
}

// toInput converts the request to the application input
func (r ProductRequest) toInput() (catalogapp.ProductInput, error) {
	return PatchProductRequest(r).toInput()
}

// ProductListQuery holds the product list query parameters
type ProductListQuery struct {
	Name       string `form:"name" binding:"max=200"`
	Category   string `form:"category" binding:"omitempty,uuid"`
	MinPrice   string `form:"min_price" binding:"omitempty,decimal"`
	MaxPrice   string `form:"max_price" binding:"omitempty,decimal"`
	IsFeatured string `form:"is_featured" binding:"omitempty,boolean"`
	InStock    string `form:"in_stock" binding:"omitempty,boolean"`
	Search     string `form:"search"`
	Ordering   string `form:"ordering"`
	dto.PageRequest
}

// toFilter converts the query to the application filter
func (q ProductListQuery) toFilter() catalogapp.ProductListFilter {
	return catalogapp.ProductListFilter{
		Name:       q.Name,
		CategoryID: parseUUIDPtr(&q.Category),
		MinPrice:   parseDecimalQuery(q.MinPrice),
		MaxPrice:   parseDecimalQuery(q.MaxPrice),
		IsFeatured: parseBoolQuery(q.IsFeatured),
		InStock:    parseBoolQuery(q.InStock),
		Search:     q.Search,
		Ordering:   q.Ordering,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
}

// ProductSearchQuery holds the product search query parameters
type ProductSearchQuery struct {
	Query    string `form:"q"`
	Category string `form:"category" binding:"omitempty,uuid"`
	MinPrice string `form:"min_price" binding:"omitempty,decimal"`
	MaxPrice string `form:"max_price" binding:"omitempty,decimal"`
}

// toFilter converts the query to the application filter
func (q ProductSearchQuery) toFilter() catalogapp.ProductSearchFilter {
	return catalogapp.ProductSearchFilter{
		Query:      q.Query,
		CategoryID: parseUUIDPtr(&q.Category),
		MinPrice:   parseDecimalQuery(q.MinPrice),
		MaxPrice:   parseDecimalQuery(q.MaxPrice),
	}
}
