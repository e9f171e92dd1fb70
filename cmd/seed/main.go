// Command seed creates staff accounts and demo catalog data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	identityapp "github.com/shopcart/backend/internal/application/identity"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/auth"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/infrastructure/imaging"
	"github.com/shopcart/backend/internal/infrastructure/logger"
	"github.com/shopcart/backend/internal/infrastructure/persistence"
	"github.com/shopcart/backend/internal/infrastructure/storage"
)

func main() {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Shopcart data seeding tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(adminCommand(), catalogCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

// env holds the connections shared by the seed commands
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *persistence.Database
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(logger.FromAppConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.log.Error("Error closing database", zap.Error(err))
	}
	_ = e.log.Sync()
}

func adminCommand() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create a staff user allowed to manage the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			authService := identityapp.NewAuthService(
				persistence.NewGormUserRepository(e.db.DB),
				auth.NewJWTService(e.cfg.JWT),
				nil,
				e.log,
			)
			user, err := authService.CreateAdmin(cmd.Context(), identityapp.CreateAdminInput{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created staff user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "username of the staff user")
	cmd.Flags().StringVar(&email, "email", "admin@shopcart.local", "email of the staff user")
	cmd.Flags().StringVar(&password, "password", "", "password of the staff user (at least 8 characters)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func catalogCommand() *cobra.Command {
	var (
		categories int
		products   int
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Create demo categories and products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if categories < 1 || products < 0 {
				return errors.New("--categories must be positive and --products cannot be negative")
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			images, err := storage.New(ctx, &e.cfg.Storage, e.log)
			if err != nil {
				return err
			}
			processor := imaging.NewProcessor(
				imaging.WithMaxDimension(e.cfg.Catalog.ImageMaxDimension),
				imaging.WithQuality(e.cfg.Catalog.ImageQuality),
				imaging.WithMaxPixels(e.cfg.Catalog.ImageMaxPixels),
			)
			productRepo := persistence.NewGormProductRepository(e.db.DB)
			categoryRepo := persistence.NewGormCategoryRepository(e.db.DB)
			seeder := &catalogSeeder{
				faker:      gofakeit.New(seed),
				categories: catalogapp.NewCategoryService(categoryRepo, productRepo, images, processor),
				products:   catalogapp.NewProductService(productRepo, categoryRepo, images, processor),
			}

			created, err := seeder.run(ctx, categories, products)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d categories and %d products\n", created.categories, created.products)
			return err
		},
	}
	cmd.Flags().IntVar(&categories, "categories", 5, "number of categories to create")
	cmd.Flags().IntVar(&products, "products", 20, "number of products per category")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 picks a random one")
	return cmd
}

type seedCounts struct {
	categories int
	products   int
}

type catalogSeeder struct {
	faker      *gofakeit.Faker
	categories *catalogapp.CategoryService
	products   *catalogapp.ProductService
}

func (s *catalogSeeder) run(ctx context.Context, categories, productsPerCategory int) (seedCounts, error) {
	var counts seedCounts
	for i := 0; i < categories; i++ {
		name := s.faker.ProductCategory() + " " + s.faker.LetterN(4)
		description := s.faker.Sentence(12)
		category, err := s.categories.Create(ctx, catalogapp.CategoryInput{
			Name:        &name,
			Description: &description,
		}, nil)
		if errors.Is(err, shared.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return counts, fmt.Errorf("create category %q: %w", name, err)
		}
		counts.categories++

		for j := 0; j < productsPerCategory; j++ {
			if err := s.createProduct(ctx, category.ID); err != nil {
				return counts, err
			}
			counts.products++
		}
	}
	return counts, nil
}

func (s *catalogSeeder) createProduct(ctx context.Context, categoryID uuid.UUID) error {
	name := s.faker.ProductName()
	description := s.faker.ProductDescription()
	price := decimal.NewFromFloat(s.faker.Price(1, 500)).Round(2)
	quantity := s.faker.IntRange(0, 60)
	featured := s.faker.Number(1, 10) == 1

	_, err := s.products.Create(ctx, catalogapp.ProductInput{
		Name:        &name,
		Description: &description,
		Price:       &price,
		CategoryID:  &categoryID,
		Quantity:    &quantity,
		IsFeatured:  &featured,
	}, nil)
	if err != nil {
		return fmt.Errorf("create product %q: %w", name, err)
	}
	return nil
}
