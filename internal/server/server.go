package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"gearbox/internal/analytics"
	"gearbox/internal/config"
	custommiddleware "gearbox/internal/middleware"
	"gearbox/internal/repository"
	"gearbox/internal/service"
	"gearbox/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	analyticsClient := analytics.NewClient(cfg.Analytics, logger)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsClient, logger)

	// Shared-secret gate for internal endpoints
	internalAuth := custommiddleware.InternalAuthMiddleware(cfg.Internal.APIKey, logger)

	// Rate limiting for the public API
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:api",
	}, logger)

	// Register routes
	router.Route("/api", func(api chi.Router) {
		api.Use(rateLimit)
		catalogHandler.RegisterRoutes(api)
		analyticsHandler.RegisterRoutes(api, internalAuth)
	})

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

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
