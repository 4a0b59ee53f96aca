package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Raymond9734/acme-dashboard-backend/internal/auth"
	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/config"
	"github.com/Raymond9734/acme-dashboard-backend/internal/db"
	"github.com/Raymond9734/acme-dashboard-backend/internal/handler"
	"github.com/Raymond9734/acme-dashboard-backend/internal/repository"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
	"github.com/Raymond9734/acme-dashboard-backend/internal/storage"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting dashboard API server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	// Page cache, disabled without REDIS_URL
	var cacheClient cache.Client
	var healthCache cache.Client
	if cfg.Cache.RedisURL != "" {
		cacheClient, err = cache.NewRedisClient(cache.RedisConfig{
			URL:       cfg.Cache.RedisURL,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       cfg.Cache.TTL,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		healthCache = cacheClient
	} else {
		cacheClient = cache.NewNopClient()
		logger.Warn("REDIS_URL not set, page cache disabled")
	}
	defer cacheClient.Close()

	// Customer image storage
	images, err := newImageStore(ctx, &cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize image storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(database.DB)
	invoiceRepo := repository.NewInvoiceRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)

	// Initialize auth
	sessions := auth.NewSessionManager(cfg.Auth)
	provider := auth.NewCredentialsProvider(userRepo)

	// Initialize services
	perPage := cfg.Pagination.ItemsPerPage
	invoiceSvc := service.NewInvoiceService(invoiceRepo, cacheClient, perPage, logger)
	customerSvc := service.NewCustomerService(customerRepo, images, cacheClient, perPage, logger)
	authSvc := service.NewAuthService(provider, sessions, logger)

	// Setup router
	router := handler.NewRouter(handler.Handlers{
		Health:    handler.NewHealthHandler(database, healthCache, logger),
		Auth:      handler.NewAuthHandler(authSvc, cfg.Auth.SecureCookie, logger),
		Invoices:  handler.NewInvoiceHandler(invoiceSvc, cacheClient, logger),
		Customers: handler.NewCustomerHandler(customerSvc, cacheClient, logger),
		Sessions:  sessions,
	}, cfg.API.AllowedOrigins, logger)

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}

func newImageStore(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (storage.ImageStore, error) {
	if cfg.Driver != "s3" {
		logger.Info("using stub image storage")
		return storage.NewStubImageStore(), nil
	}

	store, err := storage.NewS3ImageStore(ctx, cfg, storage.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("using S3 image storage", slog.String("bucket", store.Bucket()))
	return store, nil
}
