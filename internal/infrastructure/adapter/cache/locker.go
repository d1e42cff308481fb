package cache

import (
	"context"
	"sync"
	"time"

	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// RedisLocker hands out leases with SET NX PX
type RedisLocker struct {
	client *redis.Client
}

var _ cacheport.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker on an existing client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire tries once to take the lease
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release frees the lease if token still owns it
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{lockKeyPrefix + key}, token).Err()
}

type lease struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker is the single-process locker used when Redis is disabled
type MemoryLocker struct {
	mu           sync.Mutex
	leases       map[string]lease
	timeProvider coreport.TimeProvider
}

var _ cacheport.Locker = (*MemoryLocker)(nil)

// NewMemoryLocker creates an empty locker
func NewMemoryLocker(timeProvider coreport.TimeProvider) *MemoryLocker {
	return &MemoryLocker{
		leases:       make(map[string]lease),
		timeProvider: timeProvider,
	}
}

// Acquire takes the lease when it is free or expired
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.timeProvider.Now()
	if current, held := l.leases[key]; held && now.Before(current.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees the lease if token still owns it
func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current, held := l.leases[key]; held && current.token == token {
		delete(l.leases, key)
	}
	return nil
}
