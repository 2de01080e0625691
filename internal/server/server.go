package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shop-catalog/internal/config"
	"shop-catalog/internal/database"
	custommiddleware "shop-catalog/internal/middleware"
	"shop-catalog/internal/notify"
	"shop-catalog/internal/repository"
	"shop-catalog/internal/service"
	"shop-catalog/internal/storage"
	"shop-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewRedisClient connects to redis and verifies it answers a ping
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewServer wires repositories, services and handlers onto a chi router.
// redisClient may be nil, in which case rate limiting and purchase events are off.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) (*Server, error) {
	router := chi.NewRouter()

	router.Use(custommiddleware.BaseStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger.Named("http")))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORS(cfg.Server))

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	var publisher notify.Publisher = notify.NopPublisher{}
	if redisClient != nil {
		limits := cfg.RateLimit
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: limits.Requests,
			Window:            limits.Window,
			KeyPrefix:         "ratelimit:addr",
		}, logger))

		userLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: limits.Requests,
			Window:            limits.Window,
			KeyPrefix:         "ratelimit:user",
		}, logger)
		authenticate := authMiddleware
		authMiddleware = func(next http.Handler) http.Handler {
			return authenticate(userLimit(next))
		}

		publisher = notify.NewRedisPublisher(redisClient, cfg.Catalog.PurchaseChannel, logger)
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	files, err := storage.NewLocalFileStore(cfg.Storage.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open image store: %w", err)
	}

	// Initialize repositories
	sqlDB := db.DB()
	productRepo := repository.NewProductRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	brandRepo := repository.NewBrandRepository(sqlDB)
	imageRepo := repository.NewImageRepository(sqlDB)
	userRepo := repository.NewUserRepository(sqlDB)

	// Initialize services
	pages := service.Pagination{
		DefaultLimit: cfg.Catalog.DefaultPageSize,
		MaxLimit:     cfg.Catalog.MaxPageSize,
	}
	rules := service.NewRules(categoryRepo, brandRepo, productRepo, imageRepo, files)

	productService := service.NewProductService(productRepo, rules, publisher, pages, logger)
	categoryService := service.NewCategoryService(categoryRepo, pages, logger)
	brandService := service.NewBrandService(brandRepo, pages, logger)
	imageService := service.NewImageService(imageRepo, rules, files, pages, logger)
	userService := service.NewUserService(userRepo)

	// Register routes
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCategoryHandler(categoryService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewBrandHandler(brandService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewImageHandler(imageService, cfg.Storage.MaxUploadBytes, logger).RegisterRoutes(router, authMiddleware)
	transport.NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
