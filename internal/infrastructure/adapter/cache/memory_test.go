package cache

import (
	"context"
	"testing"
	"time"

	timeprovider "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStore(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := NewMemoryIdempotencyStore(clock)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation must fail while the first is in flight")

	body, done, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Nil(t, body)

	require.NoError(t, store.Complete(ctx, "k1", []byte(`{"success":true}`), time.Hour))
	body, done, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.JSONEq(t, `{"success":true}`, string(body))

	clock.Advance(2 * time.Hour)
	_, done, _ = store.Get(ctx, "k1")
	assert.False(t, done)
	ok, _ = store.Reserve(ctx, "k1", time.Hour)
	assert.True(t, ok, "expired keys can be reserved again")

	require.NoError(t, store.Release(ctx, "k1"))
	ok, _ = store.Reserve(ctx, "k1", time.Hour)
	assert.True(t, ok)
}

func TestMemoryLocker(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	locker := NewMemoryLocker(clock)
	ctx := context.Background()

	token, ok, err := locker.Acquire(ctx, "sweeper", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, _ = locker.Acquire(ctx, "sweeper", time.Minute)
	assert.False(t, ok)

	// a stale token does not free someone else's lease
	require.NoError(t, locker.Release(ctx, "sweeper", "stale"))
	_, ok, _ = locker.Acquire(ctx, "sweeper", time.Minute)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "sweeper", token))
	second, ok, _ := locker.Acquire(ctx, "sweeper", time.Minute)
	require.True(t, ok)

	clock.Advance(2 * time.Minute)
	third, ok, _ := locker.Acquire(ctx, "sweeper", time.Minute)
	assert.True(t, ok, "expired leases can be taken over")
	assert.NotEqual(t, second, third)
}

func TestNoopReceiptCache(t *testing.T) {
	var c NoopReceiptCache
	payload, hit, err := c.Get(context.Background(), "RCPT-1")
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, payload)
}
