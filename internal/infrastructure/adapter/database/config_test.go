package database

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Driver:         DriverPostgres,
		Host:           "localhost",
		Port:           5432,
		Username:       "pos",
		Password:       "secret",
		Database:       "pos",
		SSLMode:        "disable",
		MaxOpenConns:   10,
		MaxIdleConns:   5,
		QueryTimeout:   time.Second,
		LogLevel:       "info",
		IsolationLevel: IsolationReadCommitted,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"memory needs nothing", func(c *Config) { *c = Config{Driver: DriverMemory} }, ""},
		{"unknown driver", func(c *Config) { c.Driver = "mysql" }, "unsupported database driver"},
		{"missing host", func(c *Config) { c.Host = "" }, "host is required"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "invalid port"},
		{"bad ssl mode", func(c *Config) { c.SSLMode = "sometimes" }, "invalid SSL mode"},
		{"bad isolation", func(c *Config) { c.IsolationLevel = "CHAOS" }, "invalid isolation level"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCreateConfigFromViperConfig(t *testing.T) {
	for _, key := range []string{"POS_DB_HOST", "POS_DB_USERNAME", "POS_DB_PASSWORD", "POS_DB_NAME"} {
		t.Setenv(key, "")
	}

	conf := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         "postgres",
			Host:           "db",
			Port:           "6543",
			Username:       "pos",
			Password:       "pw",
			Database:       "pos",
			MaxOpenConns:   40,
			RetryDelay:     2 * time.Second,
			IsolationLevel: "SERIALIZABLE",
			SeedCatalog:    true,
		},
		Logger: config.LoggerConfig{Level: "warn"},
	}

	dbConf := CreateConfigFromViperConfig(conf)
	assert.Equal(t, "db", dbConf.Host)
	assert.Equal(t, 6543, dbConf.Port)
	assert.Equal(t, 40, dbConf.MaxOpenConns)
	assert.Equal(t, 2, dbConf.RetryDelay)
	assert.Equal(t, "SERIALIZABLE", dbConf.IsolationLevel)
	assert.True(t, dbConf.SeedCatalog)
	assert.Equal(t, "warn", dbConf.LogLevel)
	assert.Contains(t, dbConf.DSN(), "port=6543")
}

func TestParsePort(t *testing.T) {
	assert.Equal(t, 5432, ParsePort("5432"))
	assert.Equal(t, 0, ParsePort("abc"))
	assert.Equal(t, 0, ParsePort("0"))
	assert.Equal(t, 0, ParsePort("70000"))
}
