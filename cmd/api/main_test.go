package main

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	return &config.Config{
		Environment: config.Development,
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			NodeID:          1,
		},
		Database: config.DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         "5432",
			Username:     "pos",
			Password:     "secret",
			Database:     "pos",
			SSLMode:      "require",
			QueryTimeout: 5 * time.Second,
		},
		Logger:   config.LoggerConfig{Level: "info"},
		Checkout: config.CheckoutConfig{DashboardURL: "http://localhost:5173/dashboard"},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{
			name:   "valid postgres config",
			mutate: func(*config.Config) {},
		},
		{
			name: "memory driver needs no credentials",
			mutate: func(cfg *config.Config) {
				cfg.Database = config.DatabaseConfig{Driver: "memory"}
			},
		},
		{
			name: "missing database credentials",
			mutate: func(cfg *config.Config) {
				cfg.Database.Host = ""
				cfg.Database.Password = ""
			},
			wantErr: "POS_DB_HOST",
		},
		{
			name: "unknown driver",
			mutate: func(cfg *config.Config) {
				cfg.Database.Driver = "sqlite"
			},
			wantErr: "invalid database.driver",
		},
		{
			name: "node id out of range",
			mutate: func(cfg *config.Config) {
				cfg.Server.NodeID = 2048
			},
			wantErr: "invalid server.nodeId",
		},
		{
			name: "gateway without callback base",
			mutate: func(cfg *config.Config) {
				cfg.Gateway = config.GatewayConfig{PublicKey: "pk", SecretKey: "sk", BaseURL: "https://pg-sandbox.paymaya.com"}
			},
			wantErr: "checkout.callbackBaseUrl",
		},
		{
			name: "auth without secret",
			mutate: func(cfg *config.Config) {
				cfg.Auth.Enabled = true
			},
			wantErr: "auth.jwtSecret",
		},
		{
			name: "kafka without brokers",
			mutate: func(cfg *config.Config) {
				cfg.Kafka = config.KafkaConfig{Enabled: true, Topic: "pos.transactions"}
			},
			wantErr: "kafka.brokers",
		},
		{
			name: "invalid environment",
			mutate: func(cfg *config.Config) {
				cfg.Environment = "staging"
			},
			wantErr: "invalid environment value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProductionWarnings(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = config.Production
	cfg.Database.SSLMode = "disable"

	warnings := productionWarnings(cfg)

	assert.Contains(t, warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
	assert.Contains(t, warnings, "auth.enabled is false; any caller can ring up sales")
	assert.Contains(t, warnings, "gateway credentials are missing; gateway checkouts will be rejected")
	assert.NotContains(t, warnings, "server.readTimeout is too low for production")
}
