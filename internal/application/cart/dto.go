package cart

import (
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopspring/decimal"
)

// AddItemInput is the request to add a product to the caller's cart
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  *int // defaults to 1
}

// CartItemResponse represents one cart line in API responses
type CartItemResponse struct {
	ID         uuid.UUID                   `json:"id" swaggertype:"string" format:"uuid"`
	Product    *appcatalog.ProductResponse `json:"product"`
	ProductID  uuid.UUID                   `json:"product_id" swaggertype:"string" format:"uuid"`
	Quantity   int                         `json:"quantity"`
	TotalPrice decimal.Decimal             `json:"total_price" swaggertype:"string" example:"19.99"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID         uuid.UUID          `json:"id" swaggertype:"string" format:"uuid"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price" swaggertype:"string" example:"19.99"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
