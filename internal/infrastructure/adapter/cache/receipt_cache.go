package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	"github.com/redis/go-redis/v9"
)

// RedisReceiptCache stores receipt payloads as JSON strings
type RedisReceiptCache struct {
	client *redis.Client
}

var _ cacheport.ReceiptCache = (*RedisReceiptCache)(nil)

// NewRedisReceiptCache creates a receipt cache on an existing client
func NewRedisReceiptCache(client *redis.Client) *RedisReceiptCache {
	return &RedisReceiptCache{client: client}
}

// Get returns a cached payload
func (c *RedisReceiptCache) Get(ctx context.Context, receiptNumber string) (*entity.ReceiptPayload, bool, error) {
	val, err := c.client.Get(ctx, receiptKeyPrefix+receiptNumber).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var payload entity.ReceiptPayload
	if err := json.Unmarshal(val, &payload); err != nil {
		return nil, false, err
	}
	return &payload, true, nil
}

// Set caches a payload under its receipt number
func (c *RedisReceiptCache) Set(ctx context.Context, payload *entity.ReceiptPayload, ttl time.Duration) error {
	if payload == nil || payload.ReceiptNumber == "" {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, receiptKeyPrefix+payload.ReceiptNumber, data, ttl).Err()
}

// Delete evicts a payload
func (c *RedisReceiptCache) Delete(ctx context.Context, receiptNumber string) error {
	return c.client.Del(ctx, receiptKeyPrefix+receiptNumber).Err()
}

// NoopReceiptCache never stores anything
type NoopReceiptCache struct{}

var _ cacheport.ReceiptCache = NoopReceiptCache{}

// Get always misses
func (NoopReceiptCache) Get(context.Context, string) (*entity.ReceiptPayload, bool, error) {
	return nil, false, nil
}

// Set does nothing
func (NoopReceiptCache) Set(context.Context, *entity.ReceiptPayload, time.Duration) error {
	return nil
}

// Delete does nothing
func (NoopReceiptCache) Delete(context.Context, string) error {
	return nil
}
