package cache

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// ReceiptCache is a read-through cache in front of receipt snapshots
type ReceiptCache interface {
	// Get returns the cached payload; the bool is false on a miss
	Get(ctx context.Context, receiptNumber string) (*entity.ReceiptPayload, bool, error)
	Set(ctx context.Context, payload *entity.ReceiptPayload, ttl time.Duration) error
	Delete(ctx context.Context, receiptNumber string) error
}

// IdempotencyStore remembers request keys and the responses they produced
type IdempotencyStore interface {
	// Reserve claims a key; false means another request already holds it
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete stores the response body for a reserved key
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Get returns the stored response; done is false while the key is only reserved
	Get(ctx context.Context, key string) (response []byte, done bool, err error)
	// Release forgets a key so the request can be retried
	Release(ctx context.Context, key string) error
}

// Locker provides expiring leases shared across replicas
type Locker interface {
	// Acquire returns a token when the lease was obtained
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees the lease if it is still held with token
	Release(ctx context.Context, key, token string) error
}
