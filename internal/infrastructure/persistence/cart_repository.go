package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUserID finds the user's cart with its items
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	return r.load(ctx, userID, false)
}

// GetOrCreate returns the user's cart, creating an empty one on first access
func (r *GormCartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if err := r.insertIfMissing(ctx, userID); err != nil {
		return nil, err
	}
	return r.load(ctx, userID, false)
}

// GetOrCreateForUpdate is GetOrCreate with the cart row locked (PostgreSQL only)
func (r *GormCartRepository) GetOrCreateForUpdate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if err := r.insertIfMissing(ctx, userID); err != nil {
		return nil, err
	}
	return r.load(ctx, userID, isPostgres(r.db))
}

// Save persists the cart header with a version check and makes the stored
// items match cart.Items
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CartModel{}).
			Where("id = ? AND version = ?", c.ID, c.Version-1).
			Updates(map[string]any{
				"version":    c.Version,
				"updated_at": c.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		keep := make([]uuid.UUID, 0, len(c.Items))
		for _, item := range c.Items {
			keep = append(keep, item.ID)
		}
		staleItems := tx.Where("cart_id = ?", c.ID)
		if len(keep) > 0 {
			staleItems = staleItems.Where("id NOT IN ?", keep)
		}
		if err := staleItems.Delete(&models.CartItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}

		for _, item := range c.Items {
			model := models.CartItemModelFromDomain(item)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
			}).Create(model).Error; err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// insertIfMissing creates an empty cart row unless the user already has one
func (r *GormCartRepository) insertIfMissing(ctx context.Context, userID uuid.UUID) error {
	newCart, err := cart.NewCart(userID)
	if err != nil {
		return err
	}
	model := models.CartModelFromDomain(newCart)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(model).Error
}

// load reads the cart row, optionally locking it, and then its items oldest first
func (r *GormCartRepository) load(ctx context.Context, userID uuid.UUID, forUpdate bool) (*cart.Cart, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model models.CartModel
	if err := query.Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", model.ID).
		Order("created_at ASC").
		Find(&model.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	return model.ToDomain(), nil
}

// Ensure GormCartRepository implements CartRepository
var _ cart.CartRepository = (*GormCartRepository)(nil)
