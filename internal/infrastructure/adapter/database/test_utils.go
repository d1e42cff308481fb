package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	timeprovider "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestDBManager provides utilities for integration tests against postgres
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to the database named by TEST_DB_* variables and
// skips the test when TEST_DB_HOST is unset
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv("TEST_DB_HOST")
	if !ok || host == "" {
		t.Skip("TEST_DB_HOST not set; skipping postgres integration test")
	}

	timeProvider := timeprovider.NewRealTimeProvider()
	config := &Config{
		Driver:          DriverPostgres,
		Host:            host,
		Port:            getEnvIntOrDefault("TEST_DB_PORT", 5432),
		Username:        getEnvOrDefault("TEST_DB_USERNAME", "postgres"),
		Password:        getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		Database:        getEnvOrDefault("TEST_DB_DATABASE", "pos_checkout_test"),
		SSLMode:         getEnvOrDefault("TEST_DB_SSL_MODE", "disable"),
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "silent",
		RetryAttempts:   1,
		RetryDelay:      1,
		IsolationLevel:  IsolationReadCommitted,
	}

	m := &TestDBManager{
		Manager:      NewManager(config, logger, timeProvider, nil),
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
	if _, err := m.Manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { m.Close(t) })
	return m
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// SetupTestDB recreates the schema from scratch
func (m *TestDBManager) SetupTestDB(t *testing.T) {
	t.Helper()

	if err := dropAllTables(m.Manager.DB()); err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}
	if err := m.Manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

// dropAllTables drops all tables in the current schema
func dropAllTables(db *gorm.DB) error {
	return db.Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error
}

// CreateTestItem inserts an active item with the given price and stock
func (m *TestDBManager) CreateTestItem(t *testing.T, name, price string, stock int) *entity.Item {
	t.Helper()

	uow := m.Manager.CreateUnitOfWork()
	item := &entity.Item{
		Name:     name,
		SKU:      "TEST-" + name + "-" + strconv.FormatInt(time.Now().UnixNano(), 36),
		Unit:     "pc",
		Price:    decimal.RequireFromString(price),
		Cost:     decimal.Zero,
		TaxRate:  decimal.Zero,
		Stock:    stock,
		IsActive: true,
	}
	if err := uow.GetItemRepository(context.Background()).Create(context.Background(), item); err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
	return item
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
