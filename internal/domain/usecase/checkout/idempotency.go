package checkout

import (
	"context"
	"time"

	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
)

// DefaultIdempotencyTTL is how long a checkout key and its response are kept
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyHandler guards checkout submissions carrying an Idempotency-Key
type IdempotencyHandler struct {
	store  cacheport.IdempotencyStore
	ttl    time.Duration
	logger coreport.Logger
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(store cacheport.IdempotencyStore, ttl time.Duration, logger coreport.Logger) *IdempotencyHandler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyHandler{store: store, ttl: ttl, logger: logger}
}

// CheckIdempotency reserves key for a new request. It returns the stored
// response when the key already finished, and ErrDuplicateRequest while the
// first request is still in flight. A store outage lets the request through.
func (h *IdempotencyHandler) CheckIdempotency(ctx context.Context, key string) ([]byte, error) {
	reserved, err := h.store.Reserve(ctx, key, h.ttl)
	if err != nil {
		h.logger.Warn("Idempotency store unavailable, processing without key", map[string]any{
			"idempotency_key": key,
			"error":           err.Error(),
		})
		return nil, nil
	}
	if reserved {
		return nil, nil
	}

	response, done, err := h.store.Get(ctx, key)
	if err != nil {
		h.logger.Warn("Failed to read idempotent response", map[string]any{
			"idempotency_key": key,
			"error":           err.Error(),
		})
		return nil, errs.ErrDuplicateRequest
	}
	if !done {
		return nil, errs.ErrDuplicateRequest
	}

	h.logger.Info("Replaying idempotent checkout response", map[string]any{
		"idempotency_key": key,
	})
	return response, nil
}

// Complete stores the response of a finished request
func (h *IdempotencyHandler) Complete(ctx context.Context, key string, response []byte) {
	if err := h.store.Complete(ctx, key, response, h.ttl); err != nil {
		h.logger.Warn("Failed to store idempotent response", map[string]any{
			"idempotency_key": key,
			"error":           err.Error(),
		})
	}
}

// Abort releases the key of a failed request so it can be retried
func (h *IdempotencyHandler) Abort(ctx context.Context, key string) {
	if err := h.store.Release(ctx, key); err != nil {
		h.logger.Warn("Failed to release idempotency key", map[string]any{
			"idempotency_key": key,
			"error":           err.Error(),
		})
	}
}
