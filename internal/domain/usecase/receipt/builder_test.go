package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/repository/memory"
	timeadapter "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	mcache "github.com/amirhossein-jamali/pos-checkout/mocks/port/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var saleTime = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

func newSale(t *testing.T, store *memory.Store, status entity.TransactionStatus) *entity.Transaction {
	t.Helper()
	burger := &entity.Item{ID: 1, Name: "Burger", SKU: "BRG-01", Price: decimal.RequireFromString("129.00"), Stock: 10, IsActive: true}
	fries := &entity.Item{ID: 2, Name: "", SKU: "FRY-01", Price: decimal.RequireFromString("45.50"), Stock: 10, IsActive: true}

	tx, err := entity.NewTransaction(3, entity.PaymentMethodCash, []entity.TransactionLine{
		entity.NewTransactionLine(burger, 2),
		entity.NewTransactionLine(fries, 1),
	}, "", saleTime)
	require.NoError(t, err)
	tx.ReceiptNumber = "RCPT-20250301123000-00000001"
	tx.ProviderReference = "RRN-20250301123000-ABCDEF12"

	require.NoError(t, store.GetTransactionRepository(context.Background()).Create(context.Background(), tx))
	if status == entity.StatusCompleted {
		require.NoError(t, tx.Complete(saleTime.Add(time.Minute), "pay-1", "", ""))
		require.NoError(t, store.GetTransactionRepository(context.Background()).Update(context.Background(), tx))
	}
	return tx
}

func newStore() *memory.Store {
	return memory.NewStore(timeadapter.NewManualTimeProvider(saleTime), logger.NewNoopLogger())
}

func TestBuildPayload(t *testing.T) {
	store := newStore()
	builder := NewBuilder(store, nil, 0, logger.NewNoopLogger())
	tx := newSale(t, store, entity.StatusCompleted)

	payload := builder.BuildPayload(tx)

	assert.Equal(t, tx.ID, payload.ID)
	assert.Equal(t, "RCPT-20250301123000-00000001", payload.ReceiptNumber)
	assert.Equal(t, "2025-03-01 12:31:00", payload.Date)
	assert.Equal(t, "completed", payload.Status)
	assert.Equal(t, "cash", payload.PaymentMethod)
	assert.Equal(t, 303.5, payload.Subtotal)
	assert.Equal(t, 0.0, payload.Discount)
	assert.Equal(t, 0.0, payload.Tax)
	assert.Equal(t, 303.5, payload.Total)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, entity.ReceiptPayloadItem{Name: "Burger", Quantity: 2, Price: 129, Subtotal: 258}, payload.Items[0])
	assert.Equal(t, entity.DefaultReceiptItemName, payload.Items[1].Name)
	assert.True(t, payload.LinesTotal().Equal(tx.Total))
}

func TestBuildPayloadUsesCreationDateWhenUnpaid(t *testing.T) {
	store := newStore()
	builder := NewBuilder(store, nil, 0, logger.NewNoopLogger())
	tx := newSale(t, store, entity.StatusPending)

	assert.Equal(t, "2025-03-01 12:30:00", builder.BuildPayload(tx).Date)
}

func TestPersistSnapshot(t *testing.T) {
	t.Run("Ignores transactions that are not completed", func(t *testing.T) {
		store := newStore()
		builder := NewBuilder(store, nil, 0, logger.NewNoopLogger())
		tx := newSale(t, store, entity.StatusPending)

		receipt, err := builder.PersistSnapshot(context.Background(), tx)
		require.NoError(t, err)
		assert.Nil(t, receipt)

		count, _ := store.GetReceiptRepository(context.Background()).CountByTransactionID(context.Background(), tx.ID)
		assert.Zero(t, count)
	})

	t.Run("Writes one receipt however often it runs", func(t *testing.T) {
		store := newStore()
		cache := mcache.NewMockReceiptCache(t)
		cache.On("Set", mock.Anything, mock.AnythingOfType("*entity.ReceiptPayload"), 10*time.Minute).Return(nil).Times(2)
		builder := NewBuilder(store, cache, 10*time.Minute, logger.NewNoopLogger())
		tx := newSale(t, store, entity.StatusCompleted)
		ctx := context.Background()

		first, err := builder.PersistSnapshot(ctx, tx)
		require.NoError(t, err)
		second, err := builder.PersistSnapshot(ctx, tx)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Payload, second.Payload)
		assert.Equal(t, "pay-1", second.ProviderPaymentID)
		assert.Equal(t, uint64(3), second.UserID)
		assert.Equal(t, saleTime.Add(time.Minute), second.IssuedAt)

		count, err := store.GetReceiptRepository(ctx).CountByTransactionID(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGetByReceiptNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("Serves cache hits without touching storage", func(t *testing.T) {
		store := newStore()
		cache := mcache.NewMockReceiptCache(t)
		cached := &entity.ReceiptPayload{ReceiptNumber: "RCPT-X", Total: 10}
		cache.On("Get", mock.Anything, "RCPT-X").Return(cached, true, nil).Once()
		builder := NewBuilder(store, cache, time.Minute, logger.NewNoopLogger())

		payload, err := builder.GetByReceiptNumber(ctx, "RCPT-X")
		require.NoError(t, err)
		assert.Same(t, cached, payload)
	})

	t.Run("Falls back to storage when the cache fails", func(t *testing.T) {
		store := newStore()
		tx := newSale(t, store, entity.StatusCompleted)
		_, err := NewBuilder(store, nil, 0, logger.NewNoopLogger()).PersistSnapshot(ctx, tx)
		require.NoError(t, err)

		cache := mcache.NewMockReceiptCache(t)
		cache.On("Get", mock.Anything, tx.ReceiptNumber).Return(nil, false, errors.New("connection refused")).Once()
		cache.On("Set", mock.Anything, mock.Anything, time.Minute).Return(nil).Once()
		builder := NewBuilder(store, cache, time.Minute, logger.NewNoopLogger())

		payload, err := builder.GetByReceiptNumber(ctx, tx.ReceiptNumber)
		require.NoError(t, err)
		assert.Equal(t, tx.ReceiptNumber, payload.ReceiptNumber)
	})

	t.Run("Re-snapshots a completed sale without receipt", func(t *testing.T) {
		store := newStore()
		tx := newSale(t, store, entity.StatusCompleted)
		builder := NewBuilder(store, nil, 0, logger.NewNoopLogger())

		payload, err := builder.GetByReceiptNumber(ctx, tx.ReceiptNumber)
		require.NoError(t, err)
		assert.Equal(t, 303.5, payload.Total)

		count, _ := store.GetReceiptRepository(ctx).CountByTransactionID(ctx, tx.ID)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Pending sales have no receipt", func(t *testing.T) {
		store := newStore()
		tx := newSale(t, store, entity.StatusPending)
		builder := NewBuilder(store, nil, 0, logger.NewNoopLogger())

		_, err := builder.GetByReceiptNumber(ctx, tx.ReceiptNumber)
		assert.ErrorIs(t, err, errs.ErrReceiptNotFound)
	})

	t.Run("Unknown receipt numbers", func(t *testing.T) {
		builder := NewBuilder(newStore(), nil, 0, logger.NewNoopLogger())

		_, err := builder.GetByReceiptNumber(ctx, "RCPT-NOPE")
		assert.ErrorIs(t, err, errs.ErrReceiptNotFound)
	})
}

func TestGetByTransactionID(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	tx := newSale(t, store, entity.StatusCompleted)
	builder := NewBuilder(store, nil, 0, logger.NewNoopLogger())

	payload, err := builder.GetByTransactionID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ReceiptNumber, payload.ReceiptNumber)

	_, err = builder.GetByTransactionID(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}
