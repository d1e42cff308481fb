package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "POS"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from defaults, an optional configs/<env>.yaml
// file, .env and POS_ environment variables, in increasing precedence
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	return &config, nil
}

// loadDotEnvFile loads the first .env file found in the search paths
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("server.nodeId", 1)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connMaxIdleTime", "15m")
	v.SetDefault("database.queryTimeout", "5s")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "1s")
	v.SetDefault("database.isolationLevel", "READ COMMITTED")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.seedCatalog", false)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("checkout.currency", "PHP")
	v.SetDefault("checkout.callbackBaseUrl", "http://localhost:8080")
	v.SetDefault("checkout.dashboardUrl", "http://localhost:5173/dashboard")
	v.SetDefault("checkout.notesMaxLength", 1000)

	v.SetDefault("gateway.provider", "maya")
	v.SetDefault("gateway.publicKey", "")
	v.SetDefault("gateway.secretKey", "")
	v.SetDefault("gateway.baseUrl", "https://pg-sandbox.paymaya.com")
	v.SetDefault("gateway.timeout", "15s")

	v.SetDefault("reconciliation.enabled", true)
	v.SetDefault("reconciliation.sweepInterval", "1m")
	v.SetDefault("reconciliation.pendingAge", "2m")
	v.SetDefault("reconciliation.expireAfter", "1h")
	v.SetDefault("reconciliation.batchSize", 50)
	v.SetDefault("reconciliation.lockTtl", "55s")
	v.SetDefault("reconciliation.verifyReferenceAmount", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.receiptTtl", "24h")
	v.SetDefault("redis.idempotencyTtl", "24h")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "pos.transactions")
	v.SetDefault("kafka.clientId", "pos-checkout")
	v.SetDefault("kafka.maxRetries", 5)
	v.SetDefault("kafka.relayInterval", "5s")
	v.SetDefault("kafka.batchSize", 100)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "pos-checkout")
	v.SetDefault("auth.defaultCashierId", 1)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerSecond", 10.0)
	v.SetDefault("rateLimit.burst", 20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// getEnvironment determines the environment from POS_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// envOverrides maps short, conventional variable names onto config keys
var envOverrides = map[string]string{
	"POS_DB_DRIVER":          "database.driver",
	"POS_DB_HOST":            "database.host",
	"POS_DB_PORT":            "database.port",
	"POS_DB_USERNAME":        "database.username",
	"POS_DB_PASSWORD":        "database.password",
	"POS_DB_NAME":            "database.database",
	"POS_DB_SSL_MODE":        "database.sslMode",
	"POS_DB_ISOLATION_LEVEL": "database.isolationLevel",
	"POS_SERVER_HOST":        "server.host",
	"POS_SERVER_PORT":        "server.port",
	"POS_NODE_ID":            "server.nodeId",
	"POS_LOGGER_LEVEL":       "logger.level",
	"POS_GATEWAY_PUBLIC_KEY": "gateway.publicKey",
	"POS_GATEWAY_SECRET_KEY": "gateway.secretKey",
	"POS_GATEWAY_BASE_URL":   "gateway.baseUrl",
	"POS_CALLBACK_BASE_URL":  "checkout.callbackBaseUrl",
	"POS_DASHBOARD_URL":      "checkout.dashboardUrl",
	"POS_REDIS_ADDR":         "redis.addr",
	"POS_REDIS_PASSWORD":     "redis.password",
	"POS_AUTH_JWT_SECRET":    "auth.jwtSecret",
}

// processEnvOverrides ensures environment variables override config values
func processEnvOverrides(v *viper.Viper) {
	for env, key := range envOverrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	if brokers := os.Getenv("POS_KAFKA_BROKERS"); brokers != "" {
		v.Set("kafka.brokers", splitList(brokers))
	}
	if origins := os.Getenv("POS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("server.allowedOrigins", splitList(origins))
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
