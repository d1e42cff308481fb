package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/checkout"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/inventory"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/outbox"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/receipt"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/reconciliation"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/metrics"
	timeProvider "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/config"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/job"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(logger.ParseLevel(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var prom *metrics.PrometheusMetrics
	var appMetrics coreport.Metrics = metrics.NoopMetrics{}
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheusMetrics()
		appMetrics = prom
	}

	// Storage
	store, err := setupStore(ctx, cfg, appLogger, tp, appMetrics)
	if err != nil {
		appLogger.Error("Failed to initialize storage", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer store.close()

	idGenerator, err := idgen.NewGenerator(cfg.Server.NodeID)
	if err != nil {
		appLogger.Error("Failed to create id generator", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	caches, err := setupCaches(ctx, cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to initialize cache", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer caches.close()

	publisher, err := setupPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize event publisher", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = publisher.Close() }()

	gateway := setupGateway(cfg, tp, appLogger, appMetrics)

	// Use cases
	ledger := inventory.NewLedger(store.uow, tp, appLogger)
	receipts := receipt.NewBuilder(store.uow, caches.receipts, cfg.Redis.ReceiptTTL, appLogger)
	events := outbox.NewRecorder(store.uow, idGenerator, tp, cfg.Kafka.Topic)

	engine := checkout.NewEngine(
		store.uow,
		ledger,
		receipts,
		gateway,
		events,
		idGenerator,
		tp,
		appLogger,
		appMetrics,
		checkout.Config{
			Currency:        cfg.Checkout.Currency,
			CallbackBaseURL: cfg.Checkout.CallbackBaseURL,
			NotesMaxLength:  cfg.Checkout.NotesMaxLength,
		},
	)

	resolver := reconciliation.NewResolver(
		store.uow,
		ledger,
		receipts,
		gateway,
		events,
		tp,
		appLogger,
		appMetrics,
		reconciliation.Config{
			PendingAge:            cfg.Reconciliation.PendingAge,
			ExpireAfter:           cfg.Reconciliation.ExpireAfter,
			BatchSize:             cfg.Reconciliation.BatchSize,
			VerifyReferenceAmount: cfg.Reconciliation.VerifyReferenceAmount,
		},
	)

	// Background jobs
	relay := job.NewOutboxRelay(store.uow, publisher, tp, appLogger, job.RelayConfig{
		Interval:   cfg.Kafka.RelayInterval,
		BatchSize:  cfg.Kafka.BatchSize,
		MaxRetries: cfg.Kafka.MaxRetries,
	})
	go relay.Start(ctx)
	defer relay.Stop()

	if cfg.Reconciliation.Enabled && gateway != nil {
		sweeper := job.NewPendingSweeper(resolver, caches.locker, tp, appLogger, job.SweeperConfig{
			Interval: cfg.Reconciliation.SweepInterval,
			LockTTL:  cfg.Reconciliation.LockTTL,
		})
		go sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	// HTTP
	handlers := routes.Handlers{
		Checkout:    handler.NewCheckoutHandler(engine, checkout.NewIdempotencyHandler(caches.idempotency, cfg.Redis.IdempotencyTTL, appLogger), appLogger),
		Callback:    handler.NewCallbackHandler(resolver, cfg.Checkout.DashboardURL, appLogger),
		Receipt:     handler.NewReceiptHandler(receipts),
		Transaction: handler.NewTransactionHandler(engine, resolver, appLogger),
		Item:        handler.NewItemHandler(ledger),
		Health:      handler.NewHealthHandler(store.pinger, appLogger),
	}
	if prom != nil {
		handlers.Metrics = prom.Handler()
	}

	opts := routes.Options{
		Auth: middleware.AuthConfig{
			Enabled:          cfg.Auth.Enabled,
			Secret:           cfg.Auth.JWTSecret,
			Issuer:           cfg.Auth.Issuer,
			DefaultCashierID: cfg.Auth.DefaultCashierID,
		},
		MetricsPath: cfg.Metrics.Path,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}, tp)
	}

	router := gin.New()
	var httpMetrics coreport.Metrics
	if prom != nil {
		httpMetrics = prom
	}
	routes.SetupMiddlewares(router, appLogger, tp, httpMetrics, cfg.Server.AllowedOrigins)
	routes.SetupRoutes(router, handlers, opts, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":             server.Addr,
			"env":              cfg.Environment,
			"database_driver":  cfg.Database.Driver,
			"gateway_enabled":  gateway != nil,
			"redis_enabled":    cfg.Redis.Enabled,
			"kafka_enabled":    cfg.Kafka.Enabled,
			"auth_enabled":     cfg.Auth.Enabled,
			"metrics_enabled":  cfg.Metrics.Enabled,
			"sweeper_interval": cfg.Reconciliation.SweepInterval.String(),
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}
	if cfg.Server.NodeID < 0 || cfg.Server.NodeID > 1023 {
		return fmt.Errorf("invalid server.nodeId %d, must be between 0 and 1023", cfg.Server.NodeID)
	}

	switch cfg.Database.Driver {
	case "memory":
	case "postgres", "":
		if cfg.Database.Host == "" {
			missingConfigs = append(missingConfigs, "database.host (or POS_DB_HOST environment variable)")
		}
		if cfg.Database.Port == "" {
			missingConfigs = append(missingConfigs, "database.port (or POS_DB_PORT environment variable)")
		}
		if cfg.Database.Username == "" {
			missingConfigs = append(missingConfigs, "database.username (or POS_DB_USERNAME environment variable)")
		}
		if cfg.Database.Password == "" {
			missingConfigs = append(missingConfigs, "database.password (or POS_DB_PASSWORD environment variable)")
		}
		if cfg.Database.Database == "" {
			missingConfigs = append(missingConfigs, "database.database (or POS_DB_NAME environment variable)")
		}
		if cfg.Database.QueryTimeout == 0 {
			missingConfigs = append(missingConfigs, "database.queryTimeout")
		}
	default:
		return fmt.Errorf("invalid database.driver %q, must be postgres or memory", cfg.Database.Driver)
	}

	if cfg.Checkout.DashboardURL == "" {
		missingConfigs = append(missingConfigs, "checkout.dashboardUrl")
	}
	if cfg.Gateway.Configured() && cfg.Checkout.CallbackBaseURL == "" {
		missingConfigs = append(missingConfigs, "checkout.callbackBaseUrl")
	}
	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		missingConfigs = append(missingConfigs, "redis.addr")
	}
	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			missingConfigs = append(missingConfigs, "kafka.brokers")
		}
		if cfg.Kafka.Topic == "" {
			missingConfigs = append(missingConfigs, "kafka.topic")
		}
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		missingConfigs = append(missingConfigs, "auth.jwtSecret (or POS_AUTH_JWT_SECRET environment variable)")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerSecond <= 0 {
		missingConfigs = append(missingConfigs, "rateLimit.requestsPerSecond")
	}

	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production {
		if warnings := productionWarnings(cfg); len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}

// productionWarnings lists settings that are legal but unsafe in production
func productionWarnings(cfg *config.Config) []string {
	var warnings []string

	sslMode := strings.ToLower(cfg.Database.SSLMode)
	if cfg.Database.Driver != "memory" && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
		warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
	}
	if cfg.Database.Driver == "memory" {
		warnings = append(warnings, "database.driver 'memory' loses all sales on restart")
	}
	if !cfg.Auth.Enabled {
		warnings = append(warnings, "auth.enabled is false; any caller can ring up sales")
	}
	if !cfg.Gateway.Configured() {
		warnings = append(warnings, "gateway credentials are missing; gateway checkouts will be rejected")
	}
	if cfg.Server.ReadTimeout < 5*time.Second {
		warnings = append(warnings, "server.readTimeout is too low for production")
	}
	if cfg.Server.WriteTimeout < 5*time.Second {
		warnings = append(warnings, "server.writeTimeout is too low for production")
	}
	return warnings
}
