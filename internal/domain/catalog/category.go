package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopcart/backend/internal/domain/shared"
)

// MaxCategoryNameLength is the maximum length of a category name
const MaxCategoryNameLength = 100

// Category groups products in the catalog
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Image       string // object storage key, empty when no image is attached
	IsActive    bool
}

// CategoryDetails holds the editable attributes of a category
type CategoryDetails struct {
	Name        string
	Description string
	IsActive    bool
}

// NewCategory creates a new category
func NewCategory(details CategoryDetails) (*Category, error) {
	if err := validateCategoryName(details.Name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(details.Name),
		Description:       details.Description,
		IsActive:          details.IsActive,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update replaces the editable attributes of the category
func (c *Category) Update(details CategoryDetails) error {
	if err := validateCategoryName(details.Name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(details.Name)
	c.Description = details.Description
	c.IsActive = details.IsActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// Details returns the category's current editable attributes
func (c *Category) Details() CategoryDetails {
	return CategoryDetails{
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

// SetImage attaches an image by its storage key and returns the key it replaced
func (c *Category) SetImage(key string) string {
	previous := c.Image
	c.Image = key
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return previous
}

// MarkDeleted records the deletion of the category
func (c *Category) MarkDeleted() {
	c.AddDomainEvent(NewCategoryDeletedEvent(c))
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return shared.NewDomainError("INVALID_NAME", fmt.Sprintf("Category name cannot exceed %d characters", MaxCategoryNameLength))
	}
	return nil
}
