package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodmart/internal/auth"
	"foodmart/internal/awsclient"
	"foodmart/internal/config"
	"foodmart/internal/coupon"
	"foodmart/internal/database"
	"foodmart/internal/events"
	"foodmart/internal/handler"
	"foodmart/internal/payment"
	"foodmart/internal/repository"
	"foodmart/internal/router"
	"foodmart/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
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
	logger.Info().Msg("starting foodmart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.Database.ConnectionString(), logger); err != nil {
			// The store may come up later; run `foodmart migrate up` then.
			logger.Error().Err(err).Msg("automatic migration failed")
		}
	}

	// Initialize database connection pool. An unreachable store leaves the
	// server running in degraded mode.
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	publisher, err := newPublisher(ctx, cfg.AWS, logger)
	if err != nil {
		return err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	restaurantRepo := repository.NewRestaurantRepository(pool, logger)
	menuRepo := repository.NewMenuRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	signer := payment.NewSigner(cfg.Payment.WebhookSecret)
	if signer == nil {
		logger.Info().Msg("payment webhook secret not set, orders are cash on delivery")
	}

	couponValidator := coupon.NewValidator(couponRepo, time.Now, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, logger)
	restaurantService := service.NewRestaurantService(restaurantRepo, logger)
	menuService := service.NewMenuService(menuRepo, restaurantRepo, logger)
	orderService := service.NewOrderService(orderRepo, restaurantRepo, menuRepo, couponValidator, publisher, signer != nil, logger)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, restaurantRepo, logger)
	deliveryService := service.NewDeliveryService(userRepo, orderRepo, logger)
	adminService := service.NewAdminService(userRepo, restaurantRepo, orderRepo, publisher, logger)
	paymentService := service.NewPaymentService(orderRepo, signer, publisher, logger)

	// Initialize HTTP handlers
	validate := handler.NewValidator()
	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(pool, logger),
		Auth:       handler.NewAuthHandler(authService, validate, logger),
		Restaurant: handler.NewRestaurantHandler(restaurantService, validate, logger),
		Menu:       handler.NewMenuHandler(menuService, validate, logger),
		Order:      handler.NewOrderHandler(orderService, validate, logger),
		Review:     handler.NewReviewHandler(reviewService, validate, logger),
		Delivery:   handler.NewDeliveryHandler(deliveryService, logger),
		Admin:      handler.NewAdminHandler(adminService, validate, logger),
		Payment:    handler.NewPaymentHandler(paymentService, validate, logger),
	}

	// Initialize router
	mux := router.New(handlers, tokens, userRepo, cfg.Server.AllowedOrigins, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
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
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
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

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPublisher returns an SQS publisher when a queue is configured and a
// no-op publisher otherwise.
func newPublisher(ctx context.Context, cfg config.AWSConfig, logger zerolog.Logger) (events.Publisher, error) {
	if cfg.SQSQueueURL == "" {
		logger.Info().Msg("order events disabled (no SQS queue configured)")
		return events.Nop{}, nil
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Region, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info().Str("queue_url", cfg.SQSQueueURL).Msg("publishing order events to SQS")
	return events.NewSQSPublisher(awsclient.NewSQS(awsCfg), cfg.SQSQueueURL, logger), nil
}
