package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/identity"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockGormDB opens a postgres-dialect GORM DB over a sqlmock connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// newSQLiteDatabase opens a migrated in-memory SQLite database
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		SQLitePath:  ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedCategory stores an active category with a random name
func seedCategory(t *testing.T, db *gorm.DB) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(catalog.CategoryDetails{
		Name:     gofakeit.ProductCategory() + " " + gofakeit.LetterN(6),
		IsActive: true,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db).Save(context.Background(), category))
	return category
}

// seedProduct stores an active product in category, adjusted by mutate before saving
func seedProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, mutate func(*catalog.ProductDetails)) *catalog.Product {
	t.Helper()
	details := catalog.ProductDetails{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(8),
		Price:       valueobject.NewMoney(decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2)),
		CategoryID:  categoryID,
		Quantity:    gofakeit.IntRange(10, 100),
		IsActive:    true,
	}
	if mutate != nil {
		mutate(&details)
	}
	product, err := catalog.NewProduct(details)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}

// seedUser stores an active shopper
func seedUser(t *testing.T, db *gorm.DB) *identity.User {
	t.Helper()
	user, err := identity.NewUser(gofakeit.Username()+gofakeit.LetterN(4), gofakeit.Email(), "secret123")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), user))
	return user
}
