package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"app/internal/api/v1/handler"
	"app/internal/cache"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *sql.DB, *cache.Cache, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Open DB connection (connection pooling)
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if cfg.Environment == "development" {
		dsn += "?sslmode=disable"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open db connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, nil, nil, fmt.Errorf("ping db: %w", err)
	}
	logger.Info().Msg("Database connection successful")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 2. Connect to Redis (OAuth state storage)
	redisCache, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Msg("Redis connection successful")

	// 3. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 4. Initialize the Gemini client and the image provider registry
	gemini, err := service.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create gemini client: %w", err)
	}

	nvidia := service.NewNvidiaProvider()
	stability := service.NewStabilityProvider()
	registry := service.NewProviderRegistry()
	registry.Register("dall-e-3", service.NewOpenAIProvider())
	registry.Register("nvidia-sdxl", nvidia)
	registry.Register("sd3", stability)
	registry.Register("stable-diffusion", stability)
	registry.Register("midjourney", service.NewMidjourneyProvider())

	// 5. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(db)
	contentRepo := repository.NewContentRepo(db)
	featureRepo := repository.NewFeatureRepo(db)

	authSvc := service.NewAuthService(userRepo, contentRepo, cfg.JWTSecret)
	dispatchSvc := service.NewDispatchService(userRepo, contentRepo, registry, gemini, nvidia, stability, logger)
	linkedinSvc := service.NewLinkedInService(cfg, userRepo, contentRepo, redisCache, logger)
	adminSvc := service.NewAdminService(userRepo, contentRepo, featureRepo)
	stripeSvc := service.NewStripeService(cfg, userRepo, logger)

	authHandler := handler.NewAuthHandler(authSvc, validate, logger)
	geminiHandler := handler.NewGeminiHandler(dispatchSvc, validate, logger)
	imageHandler := handler.NewImageHandler(dispatchSvc, validate, logger)
	linkedinHandler := handler.NewLinkedInHandler(linkedinSvc, validate, logger)
	adminHandler := handler.NewAdminHandler(adminSvc, validate, logger)
	billingHandler := handler.NewBillingHandler(stripeSvc, logger)

	// 6. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	// 7. Create ServeMux router with the /api prefix
	apiMux := http.NewServeMux()
	authHandler.RegisterRoutes(apiMux, authMiddleware)
	geminiHandler.RegisterRoutes(apiMux, authMiddleware)
	imageHandler.RegisterRoutes(apiMux, authMiddleware)
	linkedinHandler.RegisterRoutes(apiMux, authMiddleware)
	adminHandler.RegisterRoutes(apiMux, authMiddleware, middleware.AdminMiddleware)
	billingHandler.RegisterRoutes(apiMux, authMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), db, redisCache, nil
}
