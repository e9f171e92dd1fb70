package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StockStatus is the human readable stock level of a product
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "Out of Stock"
	StockStatusLowStock   StockStatus = "Low Stock"
	StockStatusInStock    StockStatus = "In Stock"
)

const (
	// LowStockThreshold is the quantity below which stock is reported as low
	LowStockThreshold = 10

	MaxProductNameLength = 200
	MaxSKULength         = 100

	skuPrefix         = "PRD"
	skuFragmentLength = 10
)

// Product represents a sellable item in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Price       valueobject.Money
	CategoryID  uuid.UUID
	Quantity    int
	Image       string // object storage key, empty when no image is attached
	SKU         string
	IsActive    bool
	IsFeatured  bool
}

// ProductDetails holds the editable attributes of a product
type ProductDetails struct {
	Name        string
	Description string
	Price       valueobject.Money
	CategoryID  uuid.UUID
	Quantity    int
	SKU         string
	IsActive    bool
	IsFeatured  bool
}

// NewProduct creates a new product. A blank SKU is derived from the
// product's ID and name.
func NewProduct(details ProductDetails) (*Product, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	product.apply(details)
	if product.SKU == "" {
		product.SKU = GenerateSKU(product.ID, product.Name)
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces the editable attributes of the product.
// A blank SKU is derived again from the ID and the new name.
func (p *Product) Update(details ProductDetails) error {
	if err := details.validate(); err != nil {
		return err
	}

	oldPrice := p.Price
	oldQuantity := p.Quantity

	p.apply(details)
	if p.SKU == "" {
		p.SKU = GenerateSKU(p.ID, p.Name)
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if !oldPrice.Equals(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}
	if oldQuantity != p.Quantity {
		p.AddDomainEvent(NewProductStockChangedEvent(p, oldQuantity))
	}

	return nil
}

// Details returns the product's current editable attributes
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		SKU:         p.SKU,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
	}
}

// SetImage attaches an image by its storage key and returns the key it replaced
func (p *Product) SetImage(key string) string {
	previous := p.Image
	p.Image = key
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return previous
}

// MarkDeleted records the deletion of the product
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// HasImage returns true if an image is attached
func (p *Product) HasImage() bool {
	return p.Image != ""
}

// IsInStock returns true if at least one unit is available
func (p *Product) IsInStock() bool {
	return p.Quantity > 0
}

// StockStatus reports the stock level of the product
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Quantity <= 0:
		return StockStatusOutOfStock
	case p.Quantity < LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// CanSupply returns true if quantity units can be taken from stock
func (p *Product) CanSupply(quantity int) bool {
	return quantity <= p.Quantity
}

// GenerateSKU derives a SKU of the form PRD-{id}-{FRAGMENT}, where FRAGMENT is
// the first ten characters of the name upper-cased with spaces removed.
func GenerateSKU(id uuid.UUID, name string) string {
	fragment := name
	if utf8.RuneCountInString(fragment) > skuFragmentLength {
		fragment = string([]rune(fragment)[:skuFragmentLength])
	}
	fragment = cases.Upper(language.Und).String(fragment)
	fragment = strings.ReplaceAll(fragment, " ", "")

	return fmt.Sprintf("%s-%s-%s", skuPrefix, id.String(), fragment)
}

func (p *Product) apply(details ProductDetails) {
	p.Name = strings.TrimSpace(details.Name)
	p.Description = details.Description
	p.Price = details.Price
	p.CategoryID = details.CategoryID
	p.Quantity = details.Quantity
	p.SKU = strings.TrimSpace(details.SKU)
	p.IsActive = details.IsActive
	p.IsFeatured = details.IsFeatured
}

func (d ProductDetails) validate() error {
	if err := validateProductName(d.Name); err != nil {
		return err
	}
	if err := validatePrice(d.Price); err != nil {
		return err
	}
	if err := validateQuantity(d.Quantity); err != nil {
		return err
	}
	if d.CategoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.SKU)) > MaxSKULength {
		return shared.NewDomainError("INVALID_SKU", fmt.Sprintf("SKU cannot exceed %d characters", MaxSKULength))
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return shared.NewDomainError("INVALID_NAME", fmt.Sprintf("Product name cannot exceed %d characters", MaxProductNameLength))
	}
	return nil
}

func validatePrice(price valueobject.Money) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than 0")
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return nil
}
