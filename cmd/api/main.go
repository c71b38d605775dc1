package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saniteetti/internal/cart"
	"saniteetti/internal/catalog"
	"saniteetti/internal/config"
	"saniteetti/internal/database"
	"saniteetti/internal/handler"
	"saniteetti/internal/notify"
	"saniteetti/internal/repository"
	"saniteetti/internal/router"
	"saniteetti/internal/service"
	"saniteetti/internal/storage"
	"saniteetti/internal/storefront"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Storefront sessions idle longer than sessionIdleTimeout are dropped.
const (
	sessionIdleTimeout = 12 * time.Hour
	sessionSweepPeriod = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // Load .env file if it exists

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting saniteetti API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog blobs: local directory, optionally fronted by S3
	blobs := newBlobStore(ctx, cfg, logger)
	catalogStore, err := catalog.NewStore(ctx, blobs, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	orderRepo, closeRepo, err := newOrderRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	var notifier notify.Notifier = notify.NewMailer(cfg.Mail, logger)
	if !cfg.Mail.Configured() {
		logger.Warn().Msg("SMTP_USER / SMTP_PASS missing, order e-mails will fail")
	}
	var queue *notify.Queue
	if cfg.Notify.Mode == config.NotifyModeAsync {
		queue = notify.NewQueue(notifier, cfg.Notify.MaxRetries, logger)
		notifier = queue
	}

	pricing := cart.Pricing{FreeShippingThreshold: cfg.Shipping.FreeThreshold, FlatFee: cfg.Shipping.FlatFee}
	sessions := storefront.NewRegistry(pricing, logger)
	go sweepSessions(ctx, sessions, logger)

	orderService := service.NewOrderService(orderRepo, notifier, cfg.Notify.ShippedEmailPolicy, logger)
	catalogService := service.NewCatalogService(catalogStore, sessions, logger)

	productHandler := handler.NewProductHandler(catalogService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	storefrontHandler := handler.NewStorefrontHandler(sessions, catalogStore, orderService, logger)

	mux := router.New(productHandler, orderHandler, storefrontHandler, cfg.Auth, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("order_store", cfg.Storage.OrderStore).
			Str("notify_mode", cfg.Notify.Mode).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		if queue != nil {
			if err := queue.Close(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("pending notifications dropped")
			}
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) storage.BlobStore {
	local := storage.NewFileStore(cfg.Storage.CatalogDir, logger)
	if !cfg.S3.Enabled {
		logger.Info().Str("dir", cfg.Storage.CatalogDir).Msg("using local file system for catalog (S3 disabled)")
		return local
	}

	remote, err := storage.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 store, falling back to local file system only")
		return local
	}
	return storage.NewFallbackStore(remote, local, logger)
}

func newOrderRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.OrderRepository, func(), error) {
	if cfg.Storage.OrderStore != config.OrderStorePostgres {
		repo, err := repository.NewFileOrderRepository(cfg.Storage.OrdersFile, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open order file: %w", err)
		}
		return repo, func() {}, nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}
	return repository.NewPostgresOrderRepository(pool, logger), pool.Close, nil
}

func sweepSessions(ctx context.Context, sessions *storefront.Registry, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Expire(sessionIdleTimeout); n > 0 {
				logger.Info().Int("expired", n).Int("active", sessions.Len()).Msg("expired idle storefront sessions")
			}
		}
	}
}
