package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rosswilson/skylark/internal"
	"github.com/rosswilson/skylark/internal/billing"
	"github.com/rosswilson/skylark/internal/cookie"
	"github.com/rosswilson/skylark/internal/handler/storefront"
	"github.com/rosswilson/skylark/internal/handler/webhook"
	"github.com/rosswilson/skylark/internal/middleware"
	"github.com/rosswilson/skylark/internal/postgres"
	"github.com/rosswilson/skylark/internal/router"
	"github.com/rosswilson/skylark/internal/routes"
	"github.com/rosswilson/skylark/internal/service"
	"github.com/rosswilson/skylark/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for the application
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	orderStore := postgres.NewOrderStore(pool)
	sessionStore := postgres.NewSessionStore(pool, 7*24*time.Hour)
	profileStore := postgres.NewProfileStore(pool)
	productStore := postgres.NewProductStore(pool)

	// Reap expired cart sessions in the background. Reads already filter on
	// expiry; the sweep reclaims storage.
	go postgres.ReapSessions(ctx, sessionStore, time.Hour, logger)

	// Initialize billing provider. Mock mode substitutes an in-memory
	// provider so no gateway credentials are needed.
	var billingProvider billing.Provider
	if cfg.Checkout.MockMode {
		logger.Warn("Checkout mock mode enabled; payment gateway is bypassed")
		billingProvider = billing.NewMockProvider()
	} else {
		logger.Info("Initializing Stripe billing provider...")
		stripeConfig := billing.StripeConfig{
			APIKey:        cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		}
		provider, err := billing.NewStripeProvider(stripeConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe provider: %w", err)
		}
		logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())
		billingProvider = provider
	}

	// Initialize business metrics
	telemetry.Business = telemetry.NewBusinessMetrics("skylark")

	// Initialize services
	cartService := service.NewCartService(sessionStore, productStore, logger)

	checkoutService, err := service.NewCheckoutService(
		orderStore,
		cartService,
		profileStore,
		billingProvider,
		logger,
		service.CheckoutConfig{
			BaseURL:                  cfg.BaseURL,
			Currency:                 cfg.Checkout.Currency,
			AllowedShippingCountries: cfg.Checkout.ShippingCountries,
			DefaultCountry:           cfg.Checkout.DefaultCountry,
			MockMode:                 cfg.Checkout.MockMode,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize checkout service: %w", err)
	}
	logger.Info("Checkout service initialized")

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	cookies := cookie.NewConfig(cfg.Env == "prod")

	storefrontDeps := routes.StorefrontDeps{
		ProductsHandler: storefront.NewProductsHandler(productStore),
		CartHandler:     storefront.NewCartHandler(cartService, cookies),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService, orderStore, cookies),
		OrdersHandler:   storefront.NewOrdersHandler(orderStore, profileStore),
	}

	stripeWebhookHandler := webhook.NewStripeHandler(billingProvider, checkoutService, logger, webhook.StripeWebhookConfig{
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	webhookDeps := routes.WebhookDeps{
		StripeHandler: stripeWebhookHandler.HandleWebhook,
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	metrics := middleware.NewMetrics("skylark")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
