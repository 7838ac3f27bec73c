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

	"storefront/internal/clientstate"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	if cfg.Server.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	contentRepo := repository.NewContentRepository(pool, logger)

	processor := newProcessor(cfg.Payment, logger)

	// Client state lives in Redis when enabled, otherwise in process memory
	store, closeStore, err := newStateStore(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize client state store: %w", err)
	}
	defer closeStore()
	state := clientstate.NewContainer(store, cfg.Store.RecentlyViewedLimit, logger)

	hub := notify.NewHub(logger)
	defer hub.Close()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	checkoutService := service.NewCheckoutService(txr, productRepo, userRepo, orderRepo, processor, hub,
		service.CheckoutConfig{
			Currency:       cfg.Payment.Currency,
			SuccessURL:     cfg.Payment.SuccessURL,
			CancelURL:      cfg.Payment.CancelURL,
			DemoMode:       !cfg.Payment.Enabled(),
			DemoStockLevel: cfg.Store.DemoStockLevel,
		}, logger)
	orderService := service.NewOrderService(txr, orderRepo, productRepo, processor, hub, logger)
	accountService := service.NewAccountService(txr, userRepo, orderRepo, logger)
	customerService := service.NewCustomerService(userRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	contentService := service.NewContentService(contentRepo, logger)

	// Initialize router
	engine := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Account:  handler.NewAccountHandler(accountService, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Customer: handler.NewCustomerHandler(customerService, logger),
		Content:  handler.NewContentHandler(contentService, logger),
		State:    handler.NewStateHandler(state, productService, logger),
		Feed:     handler.NewFeedHandler(hub, logger),
	}, router.Auth{
		AdminAPIKey:    cfg.Auth.APIKey,
		IdentitySecret: cfg.Identity.JWTSecret,
		IdentityIssuer: cfg.Identity.Issuer,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("demo_mode", !cfg.Payment.Enabled()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
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

		// Live feed connections are hijacked and not tracked by Shutdown.
		hub.Close()

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

// newProcessor picks Stripe when a secret key is configured, otherwise the demo processor.
func newProcessor(cfg config.PaymentConfig, logger zerolog.Logger) payment.Processor {
	if !cfg.Enabled() {
		logger.Warn().Msg("no payment processor configured, checkout runs in demo mode")
		return payment.NewDemo()
	}
	return payment.NewStripe(payment.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	}, logger)
}

func newStateStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (clientstate.Store, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-memory client state store (Redis disabled)")
		return clientstate.NewMemoryStore(), func() {}, nil
	}

	store, err := clientstate.NewRedisStore(ctx, cfg.URL, cfg.StateTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Dur("ttl", cfg.StateTTL).Msg("using Redis client state store")
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close Redis client")
		}
	}, nil
}
