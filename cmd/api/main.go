package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/background"
	"github.com/wrenchbase/wrenchbase/internal/config"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/handlers"
	middlewareCustom "github.com/wrenchbase/wrenchbase/internal/middleware"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/repositories"
	"github.com/wrenchbase/wrenchbase/internal/routes"
	"github.com/wrenchbase/wrenchbase/internal/search"
	"github.com/wrenchbase/wrenchbase/internal/services"
	pkgauth "github.com/wrenchbase/wrenchbase/pkg/auth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize session store
	redisClient, err := database.NewRedis(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	requestRepo := repositories.NewLocationRequestRepository(db)
	locationRepo := repositories.NewMechanicLocationRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	// Initialize session manager
	sessionManager := auth.NewSessionManager(redisClient, cfg.Auth.SessionSecret, cfg.Auth.SessionLifetime)

	// Place search provider
	searchClient := search.NewClient(&cfg.Search, logger)

	// Decision emails are optional; the inbox notification is always the
	// authoritative record.
	var emailService services.EmailService
	if cfg.Email.Enabled {
		emailService, err = services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		emailService = services.NoopEmailService{}
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionManager, logger)
	userService := services.NewUserService(userRepo, notificationRepo, sessionManager, logger)
	reviewService := services.NewReviewService(reviewRepo, userRepo, logger)
	locationService := services.NewLocationService(
		requestRepo,
		locationRepo,
		notificationRepo,
		userRepo,
		searchClient,
		emailService,
		db,
		logger,
	)

	// Initialize handlers
	secureCookies := cfg.Server.Env == "production"
	authHandler := handlers.NewAuthHandler(authService, secureCookies)
	profileHandler := handlers.NewProfileHandler(userService)
	userHandler := handlers.NewUserHandler(userService, reviewService)
	mechanicHandler := handlers.NewMechanicHandler(locationService, userService, reviewService)
	adminHandler := handlers.NewAdminHandler(locationService, userService)

	// Bootstrap first admin user if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootCtx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootCancel()

	// Notification pruning task
	cleanupManager := background.NewCleanupManager(
		notificationRepo,
		logger,
		cfg.Auth.CleanupInterval,
		cfg.Auth.NotificationRetention,
	)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, sessionManager, authHandler, profileHandler, userHandler, mechanicHandler, adminHandler)

	// Health check with database and session store
	router.Get("/health", healthHandler(db, redisClient))

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type healthResponse struct {
	Status       string             `json:"status"`
	Database     string             `json:"database"`
	Redis        string             `json:"redis"`
	DatabasePool database.PoolStats `json:"database_pool"`
}

func healthHandler(db *database.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus, redisStatus := "up", "up"
		if err := db.HealthCheck(ctx); err != nil {
			dbStatus = "down"
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}

		status := "healthy"
		code := http.StatusOK
		if dbStatus == "down" || redisStatus == "down" {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(healthResponse{
			Status:       status,
			Database:     dbStatus,
			Redis:        redisStatus,
			DatabasePool: db.Stats(),
		})
	}
}

// ensureAdminUser creates the first admin account if ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD are set. Admin accounts cannot be
// self-registered.
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminUsername := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_USERNAME")))
	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		logger.Info("admin bootstrap env not set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
		FullName:     "Administrator",
		ProfileData:  map[string]any{},
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created", slog.String("username", adminUsername))
	return nil
}
