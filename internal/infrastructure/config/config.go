package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment    string               `mapstructure:"environment"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Logger         LoggerConfig         `mapstructure:"logger"`
	Checkout       CheckoutConfig       `mapstructure:"checkout"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	RateLimit      RateLimitConfig      `mapstructure:"rateLimit"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
	AllowedOrigins    []string      `mapstructure:"allowedOrigins"`
	NodeID            int64         `mapstructure:"nodeId"` // snowflake node for receipt numbers, unique per replica
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`
	IsolationLevel  string        `mapstructure:"isolationLevel"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
	SeedCatalog     bool          `mapstructure:"seedCatalog"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// CheckoutConfig contains sale settings
type CheckoutConfig struct {
	Currency        string `mapstructure:"currency"`
	CallbackBaseURL string `mapstructure:"callbackBaseUrl"` // public base of the gateway callback route
	DashboardURL    string `mapstructure:"dashboardUrl"`    // where callbacks redirect the cashier
	NotesMaxLength  int    `mapstructure:"notesMaxLength"`
}

// GatewayConfig contains payment provider settings
type GatewayConfig struct {
	Provider  string        `mapstructure:"provider"`
	PublicKey string        `mapstructure:"publicKey"`
	SecretKey string        `mapstructure:"secretKey"`
	BaseURL   string        `mapstructure:"baseUrl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Configured reports whether provider credentials are present
func (g GatewayConfig) Configured() bool {
	return g.PublicKey != "" && g.SecretKey != "" && g.BaseURL != ""
}

// ReconciliationConfig contains pending sweeper settings
type ReconciliationConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	SweepInterval         time.Duration `mapstructure:"sweepInterval"`
	PendingAge            time.Duration `mapstructure:"pendingAge"`
	ExpireAfter           time.Duration `mapstructure:"expireAfter"`
	BatchSize             int           `mapstructure:"batchSize"`
	LockTTL               time.Duration `mapstructure:"lockTtl"`
	VerifyReferenceAmount bool          `mapstructure:"verifyReferenceAmount"`
}

// RedisConfig contains cache settings
type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	ReceiptTTL     time.Duration `mapstructure:"receiptTtl"`
	IdempotencyTTL time.Duration `mapstructure:"idempotencyTtl"`
}

// KafkaConfig contains event relay settings
type KafkaConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	ClientID      string        `mapstructure:"clientId"`
	MaxRetries    int           `mapstructure:"maxRetries"`
	RelayInterval time.Duration `mapstructure:"relayInterval"`
	BatchSize     int           `mapstructure:"batchSize"`
}

// AuthConfig contains cashier authentication settings
type AuthConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	JWTSecret        string `mapstructure:"jwtSecret"`
	Issuer           string `mapstructure:"issuer"`
	DefaultCashierID uint64 `mapstructure:"defaultCashierId"`
}

// RateLimitConfig contains checkout throttling settings
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
	Burst             int     `mapstructure:"burst"`
}

// MetricsConfig contains prometheus settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
