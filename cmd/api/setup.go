package main

import (
	"context"
	"fmt"

	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/gateway"
	messagingport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/gateway/maya"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/repository/memory"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/config"

	"github.com/redis/go-redis/v9"
)

// storage bundles the unit of work with its health check and shutdown
type storage struct {
	uow    persistence.UnitOfWork
	pinger handler.Pinger
	close  func()
}

// setupStore opens postgres, or an in-process store when the memory driver is selected
func setupStore(ctx context.Context, cfg *config.Config, logger coreport.Logger, tp coreport.TimeProvider, metrics coreport.Metrics) (*storage, error) {
	dbConfig := database.CreateConfigFromViperConfig(cfg)
	if err := dbConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var s *storage
	if dbConfig.Driver == database.DriverMemory {
		logger.Warn("Using in-memory storage, data will not survive a restart", nil)
		store := memory.NewStore(tp, logger)
		s = &storage{uow: store, pinger: store, close: func() {}}
	} else {
		manager := database.NewManager(dbConfig, logger, tp, metrics)
		if _, err := manager.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}

		if cfg.Database.AutoMigrate {
			if err := manager.Migrate(ctx); err != nil {
				_ = manager.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		uow := manager.CreateUnitOfWork()
		s = &storage{
			uow:    uow,
			pinger: uow,
			close: func() {
				if err := manager.Close(); err != nil {
					logger.Error("Failed to close database connection", map[string]any{"error": err.Error()})
				}
			},
		}
	}

	if cfg.Database.SeedCatalog {
		seeded, err := migration.SeedCatalog(ctx, s.uow.GetItemRepository(ctx), logger)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		logger.Info("Catalog seeded", map[string]any{"items": seeded})
	}

	return s, nil
}

// caches bundles the receipt cache, idempotency store and sweep lock
type caches struct {
	receipts    cacheport.ReceiptCache
	idempotency cacheport.IdempotencyStore
	locker      cacheport.Locker
	close       func()
}

// setupCaches connects to Redis when enabled. Without Redis receipts are read
// from the database and keys and locks live in process memory.
func setupCaches(ctx context.Context, cfg *config.Config, logger coreport.Logger, tp coreport.TimeProvider) (*caches, error) {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, using in-process idempotency and locks", nil)
		return &caches{
			receipts:    cache.NoopReceiptCache{},
			idempotency: cache.NewMemoryIdempotencyStore(tp),
			locker:      cache.NewMemoryLocker(tp),
			close:       func() {},
		}, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to Redis", map[string]any{"addr": cfg.Redis.Addr})
	return &caches{
		receipts:    cache.NewRedisReceiptCache(client),
		idempotency: cache.NewRedisIdempotencyStore(client),
		locker:      cache.NewRedisLocker(client),
		close:       closeRedis(client, logger),
	}, nil
}

func closeRedis(client *redis.Client, logger coreport.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close Redis client", map[string]any{"error": err.Error()})
		}
	}
}

// setupPublisher returns a Kafka producer when enabled, otherwise events are only logged
func setupPublisher(cfg *config.Config, logger coreport.Logger) (messagingport.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return messaging.NewLogPublisher(logger), nil
	}
	publisher, err := messaging.NewKafkaPublisher(messaging.KafkaConfig{
		Brokers:    cfg.Kafka.Brokers,
		ClientID:   cfg.Kafka.ClientID,
		MaxRetries: cfg.Kafka.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

// setupGateway returns nil when credentials are missing so gateway checkouts are rejected
func setupGateway(cfg *config.Config, tp coreport.TimeProvider, logger coreport.Logger, metrics coreport.Metrics) gatewayport.PaymentGateway {
	if !cfg.Gateway.Configured() {
		logger.Warn("Payment gateway not configured", map[string]any{"provider": cfg.Gateway.Provider})
		return nil
	}

	client, err := maya.NewClient(maya.Config{
		PublicKey: cfg.Gateway.PublicKey,
		SecretKey: cfg.Gateway.SecretKey,
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
	}, tp, logger, metrics)
	if err != nil {
		logger.Warn("Payment gateway disabled", map[string]any{"error": err.Error()})
		return nil
	}
	return client
}
