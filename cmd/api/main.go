package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodhub/internal/cache"
	"foodhub/internal/config"
	"foodhub/internal/database"
	"foodhub/internal/events"
	"foodhub/internal/handler"
	"foodhub/internal/repository"
	"foodhub/internal/router"
	"foodhub/internal/service"

	"github.com/joho/godotenv"
)

// requestTimeout bounds a single HTTP request, including its transaction.
const requestTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "foodhub-api")
	logger.Info().Msg("starting foodhub API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	orderCache := cache.NewNopOrderCache()
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		orderCache = cache.NewRedisOrderCache(rdb, cfg.Redis.TTL(), logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("order cache enabled")
	}

	publisher, err := events.New(ctx, cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Repositories
	itemRepo := repository.NewItemRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	ledger := repository.NewStockLedger(pool, logger)

	// Services
	opts := service.Options{
		TxTimeout:      cfg.Orders.TxTimeout(),
		MaxBasketLines: cfg.Orders.MaxBasketLines,
		Producer:       cfg.Events.Producer,
	}
	itemService := service.NewItemService(itemRepo, logger)
	availabilityService := service.NewAvailabilityService(ledger, opts, logger)
	orderService := service.NewOrderService(orderRepo, ledger, publisher, orderCache, opts, logger)
	inventoryService := service.NewInventoryService(orderRepo, ledger, publisher, opts, logger)

	mux := router.New(router.Handlers{
		Items:     handler.NewItemHandler(itemService, logger),
		Orders:    handler.NewOrderHandler(orderService, availabilityService, logger),
		Inventory: handler.NewInventoryHandler(inventoryService, logger),
	}, cfg.Auth.APIKey, requestTimeout, logger)

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
