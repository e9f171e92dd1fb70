package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	cartapp "github.com/shopcart/backend/internal/application/cart"
	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	identityapp "github.com/shopcart/backend/internal/application/identity"
	"github.com/shopcart/backend/internal/domain/identity"
	"github.com/shopcart/backend/internal/infrastructure/auth"
	"github.com/shopcart/backend/internal/infrastructure/cache"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/infrastructure/event"
	"github.com/shopcart/backend/internal/infrastructure/imaging"
	"github.com/shopcart/backend/internal/infrastructure/logger"
	"github.com/shopcart/backend/internal/infrastructure/persistence"
	"github.com/shopcart/backend/internal/infrastructure/storage"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
	"github.com/shopcart/backend/internal/interfaces/http/handler"
	"github.com/shopcart/backend/internal/interfaces/http/middleware"
	"github.com/shopcart/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/shopcart/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate go run github.com/swaggo/swag/v2/cmd/swag@v2.0.0-rc5 init --dir .,../../internal --generalInfo main.go --output ../../docs --outputTypes go

const version = "1.0.0"

//	@title			Shopcart Backend API
//	@version		1.0
//	@description	Storefront API: product catalog, categories, search and per-user shopping carts
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/shopcart/backend
//	@contact.email	support@shopcart.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Shopcart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	metrics := telemetry.NewMetrics()

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	if err := db.DB.Use(telemetry.NewDBInstrumentation(telemetry.DBInstrumentationConfig{
		Tracing:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, metrics, log)); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	// Redis backs the token blacklist and the featured product cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient, "")
	} else {
		log.Warn("Redis not configured, token revocation is kept in memory")
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	featuredCache := cache.NewFeaturedCache(redisClient, cfg.Catalog.FeaturedCacheTTL, log)

	// Image storage and processing
	images, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	processor := telemetry.InstrumentImageProcessor(imaging.NewProcessor(
		imaging.WithMaxDimension(cfg.Catalog.ImageMaxDimension),
		imaging.WithQuality(cfg.Catalog.ImageQuality),
		imaging.WithMaxPixels(cfg.Catalog.ImageMaxPixels),
	), metrics)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo, categoryRepo, images, processor,
		catalogapp.WithFeaturedCache(featuredCache),
		catalogapp.WithFeaturedLimit(cfg.Catalog.FeaturedLimit),
		catalogapp.WithProductEventPublisher(eventBus),
		catalogapp.WithProductLogger(log),
	)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, images, processor)
	categoryService.SetEventPublisher(eventBus)
	categoryService.SetLogger(log)

	cartService := cartapp.NewCartService(cartRepo, productRepo,
		persistence.NewGormTransactionScope(db.DB), productService.Presenter())
	cartService.SetEventPublisher(eventBus)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)

	// Register event handlers
	eventBus.Subscribe(catalogapp.NewFeaturedCacheInvalidator(featuredCache, log))
	eventBus.Subscribe(catalogapp.NewStockAlertHandler(log))
	eventBus.Subscribe(metrics)

	if cfg.Kafka.Enabled {
		kafkaPublisher := event.NewKafkaPublisher(cfg.Kafka, log)
		kafkaPublisher.Start()
		eventBus.Subscribe(kafkaPublisher)
		defer func() {
			closeCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			if err := kafkaPublisher.Close(closeCtx); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		log.Info("Kafka publisher started",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Server span per request
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. Metrics - Prometheus request metrics
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Metrics.Enabled {
		engine.Use(middleware.HTTPMetrics(metrics))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(ctx)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	guards := router.Guards{
		Authenticate: jwtMiddleware,
		ManageCatalog: middleware.RequirePermission(middleware.PermissionConfig{Logger: log},
			identity.PermissionCatalogManage),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		go authLimiter.Run(ctx)
		guards.Throttle = middleware.RateLimit(authLimiter)
	}

	// Health checks
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// Endpoints outside API versioning
	engine.GET("/health", systemHandler.Health)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	if cfg.Storage.Driver == config.StorageDriverLocal && strings.HasPrefix(cfg.Storage.BaseURL, "/") {
		engine.Static(cfg.Storage.BaseURL, cfg.Storage.LocalPath)
	}

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, router.Handlers{
		Product:  handler.NewProductHandler(productService, cfg.Catalog.MaxImageSize),
		Category: handler.NewCategoryHandler(categoryService, cfg.Catalog.MaxImageSize),
		Cart:     handler.NewCartHandler(cartService),
		Auth:     handler.NewAuthHandler(authService),
		System:   systemHandler,
	}, guards).Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	cancel()

	log.Info("Server exited gracefully")
}
