package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/redis/go-redis/v9"
)

// reservedMarker is the value of a key whose request is still in flight
var reservedMarker = []byte("\x00reserved")

// RedisIdempotencyStore keeps idempotency keys in Redis
type RedisIdempotencyStore struct {
	client *redis.Client
}

var _ cacheport.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore creates a store on an existing client
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// Reserve claims the key with SET NX
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, idempotencyKeyPrefix+key, reservedMarker, ttl).Result()
}

// Complete replaces the reservation with the response body
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyKeyPrefix+key, response, ttl).Err()
}

// Get returns the stored response, if the request has finished
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if bytes.Equal(val, reservedMarker) {
		return nil, false, nil
	}
	return val, true, nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

type idempotencyEntry struct {
	response  []byte
	done      bool
	expiresAt time.Time
}

// MemoryIdempotencyStore is the single-process store used when Redis is disabled
type MemoryIdempotencyStore struct {
	mu           sync.Mutex
	entries      map[string]*idempotencyEntry
	timeProvider coreport.TimeProvider
}

var _ cacheport.IdempotencyStore = (*MemoryIdempotencyStore)(nil)

// NewMemoryIdempotencyStore creates an empty store
func NewMemoryIdempotencyStore(timeProvider coreport.TimeProvider) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries:      make(map[string]*idempotencyEntry),
		timeProvider: timeProvider,
	}
}

// live returns the unexpired entry for key; the caller holds mu
func (s *MemoryIdempotencyStore) live(key string) *idempotencyEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !s.timeProvider.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return e
}

// Reserve claims the key
func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live(key) != nil {
		return false, nil
	}
	s.entries[key] = &idempotencyEntry{expiresAt: s.timeProvider.Now().Add(ttl)}
	return true, nil
}

// Complete stores the response body
func (s *MemoryIdempotencyStore) Complete(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &idempotencyEntry{
		response:  append([]byte(nil), response...),
		done:      true,
		expiresAt: s.timeProvider.Now().Add(ttl),
	}
	return nil
}

// Get returns the stored response
func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(key)
	if e == nil || !e.done {
		return nil, false, nil
	}
	return append([]byte(nil), e.response...), true, nil
}

// Release forgets the key
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
