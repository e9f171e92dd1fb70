//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appcart "github.com/shopcart/backend/internal/application/cart"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/migration"
	"github.com/shopcart/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a PostgreSQL container and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shopcart_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.NewFromFS(migrations.FS, dsn, zap.NewNop())
	require.NoError(t, err)
	status, err := m.Up()
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.Equal(t, uint(3), status.Version)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestCartLocking_Postgres(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	category := seedCategory(t, db)
	product := seedProduct(t, db, category.ID, func(d *catalog.ProductDetails) { d.Quantity = 5 })
	user := seedUser(t, db)

	scope := NewGormTransactionScope(db)
	addOne := func() error {
		return scope.Execute(ctx, func(repos appcart.TransactionalRepositories) error {
			c, err := repos.CartRepo().GetOrCreateForUpdate(ctx, user.ID)
			if err != nil {
				return err
			}
			p, err := repos.ProductRepo().FindByIDForUpdate(ctx, product.ID)
			if err != nil {
				return err
			}
			if _, err := c.AddItem(p, 1); err != nil {
				return err
			}
			return repos.CartRepo().Save(ctx, c)
		})
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := addOne()
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, workers-5, rejected)

	c, err := NewGormCartRepository(db).FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}
