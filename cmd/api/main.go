package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pixele/identity/internal/auth"
	"github.com/pixele/identity/internal/background"
	"github.com/pixele/identity/internal/config"
	"github.com/pixele/identity/internal/database"
	"github.com/pixele/identity/internal/handlers"
	"github.com/pixele/identity/internal/identity"
	middlewareCustom "github.com/pixele/identity/internal/middleware"
	"github.com/pixele/identity/internal/models"
	"github.com/pixele/identity/internal/repositories"
	"github.com/pixele/identity/internal/routes"
	"github.com/pixele/identity/internal/services"
	pkghttp "github.com/pixele/identity/pkg/http"
	pkglogger "github.com/pixele/identity/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Secrets Manager overlay for deployed environments
	if cfg.Secrets.AuthSecretID != "" || cfg.Secrets.DBSecretID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Cognito.Region))
		if err != nil {
			cancel()
			logger.Error("failed to load AWS configuration", slog.Any("error", err))
			os.Exit(1)
		}
		if err := cfg.ApplySecrets(ctx, secretsmanager.NewFromConfig(awsCfg)); err != nil {
			cancel()
			logger.Error("failed to apply secrets", slog.Any("error", err))
			os.Exit(1)
		}
		cancel()
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
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

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Identity provider client
	providerCtx, providerCancel := context.WithTimeout(context.Background(), 10*time.Second)
	provider, err := identity.NewClient(providerCtx, cfg.Cognito, logger)
	providerCancel()
	if err != nil {
		logger.Error("failed to initialize identity provider client", slog.Any("error", err))
		os.Exit(1)
	}

	// Lockout policy and repositories
	policy := models.LockoutPolicy{
		Threshold: cfg.Auth.LockoutThreshold,
		Duration:  cfg.Auth.LockoutDuration,
	}
	loginRecordRepo := repositories.NewLoginRecordRepository(db, policy)
	userRepo := repositories.NewUserRepository(db)

	// Background cleanup of stale login records
	cleanupManager := background.NewCleanupManager(loginRecordRepo, logger, cfg.Auth.CleanupInterval, cfg.Auth.CleanupAge)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Services
	loginService := services.NewLoginService(provider, loginRecordRepo, policy, logger, auditLogger)
	registrationService := services.NewRegistrationService(provider, userRepo, logger, auditLogger)
	verificationService := services.NewVerificationService(provider, userRepo, logger, auditLogger)
	passwordResetService := services.NewPasswordResetService(provider, logger, auditLogger)
	sessionService := services.NewSessionService(provider, logger)

	// Handlers
	cookieConfig := auth.CookieConfig{
		Domain: cfg.Server.CookieDomain,
		Secure: cfg.Server.Env == "production",
	}
	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}}

	userHandler := handlers.NewUserHandler(registrationService, verificationService, logger)
	authHandler := handlers.NewAuthHandler(loginService, sessionService, cookieConfig, ipConfig, logger)
	resetHandler := handlers.NewPasswordResetHandler(passwordResetService, logger)

	// CORS
	corsConfig := middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, userHandler, authHandler, resetHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

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
