// Package cache holds the Redis and in-process implementations of the cache ports.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key prefixes shared by every replica
const (
	receiptKeyPrefix     = "pos:receipt:"
	idempotencyKeyPrefix = "pos:idem:"
	lockKeyPrefix        = "pos:lock:"
)

// RedisConfig holds connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
