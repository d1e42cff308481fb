package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/repository/memory"
	timeadapter "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T, items ...*entity.Item) (*Ledger, *memory.Store) {
	t.Helper()
	clock := timeadapter.NewManualTimeProvider(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	store := memory.NewStore(clock, logger.NewNoopLogger())
	for _, item := range items {
		require.NoError(t, store.GetItemRepository(context.Background()).Create(context.Background(), item))
	}
	return NewLedger(store, clock, logger.NewNoopLogger()), store
}

func item(id uint64, name string, stock int, active bool) *entity.Item {
	return &entity.Item{
		ID:       id,
		Name:     name,
		SKU:      name,
		Price:    decimal.RequireFromString("50.00"),
		Stock:    stock,
		MinStock: 1,
		IsActive: active,
	}
}

func TestLedgerReserve(t *testing.T) {
	tests := []struct {
		name          string
		item          *entity.Item
		itemID        uint64
		qty           int
		expectedStock int
		expectedErr   error
	}{
		{"Takes stock", item(1, "Fries", 5, true), 1, 3, 2, nil},
		{"Takes the last unit", item(1, "Fries", 1, true), 1, 1, 0, nil},
		{"Refuses more than available", item(1, "Fries", 2, true), 1, 3, 2, errs.ErrInsufficientStock},
		{"Refuses inactive items", item(1, "Fries", 9, false), 1, 1, 9, errs.ErrInsufficientStock},
		{"Refuses missing items", item(1, "Fries", 9, true), 42, 1, 9, errs.ErrInsufficientStock},
		{"Refuses zero quantity", item(1, "Fries", 9, true), 1, 0, 9, errs.ErrInvalidQuantity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ledger, store := setupLedger(t, tc.item)
			ctx := context.Background()

			err := store.WithinTransaction(ctx, func(txCtx context.Context) error {
				_, err := ledger.Reserve(txCtx, tc.itemID, tc.qty)
				return err
			})

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			stored, err := ledger.GetItem(ctx, tc.item.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStock, stored.Stock)
		})
	}
}

func TestLedgerDeductForTransaction(t *testing.T) {
	burger := item(1, "Burger", 10, true)
	cola := item(2, "Cola", 1, true)

	t.Run("Deducts every line once", func(t *testing.T) {
		ledger, store := setupLedger(t, item(1, "Burger", 10, true), item(2, "Cola", 1, true))
		ctx := context.Background()
		tx := &entity.Transaction{ID: 7, Lines: []entity.TransactionLine{
			entity.NewTransactionLine(cola, 1),
			entity.NewTransactionLine(burger, 2),
		}}

		var deducted bool
		require.NoError(t, store.WithinTransaction(ctx, func(txCtx context.Context) error {
			var err error
			deducted, err = ledger.DeductForTransaction(txCtx, tx)
			return err
		}))
		assert.True(t, deducted)
		assert.True(t, tx.StockDeducted())

		again, err := ledger.DeductForTransaction(ctx, tx)
		require.NoError(t, err)
		assert.False(t, again)

		b, _ := ledger.GetItem(ctx, 1)
		c, _ := ledger.GetItem(ctx, 2)
		assert.Equal(t, 8, b.Stock)
		assert.Equal(t, 0, c.Stock)
	})

	t.Run("Rolls back every line when one is short", func(t *testing.T) {
		ledger, store := setupLedger(t, item(1, "Burger", 10, true), item(2, "Cola", 1, true))
		ctx := context.Background()
		tx := &entity.Transaction{ID: 8, Lines: []entity.TransactionLine{
			entity.NewTransactionLine(burger, 2),
			entity.NewTransactionLine(cola, 3),
		}}

		err := store.WithinTransaction(ctx, func(txCtx context.Context) error {
			_, err := ledger.DeductForTransaction(txCtx, tx)
			return err
		})

		var stockErr *errs.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, uint64(2), stockErr.ItemID)
		assert.Equal(t, "Cola", stockErr.ItemName)
		assert.False(t, tx.StockDeducted())

		b, _ := ledger.GetItem(ctx, 1)
		assert.Equal(t, 10, b.Stock)
	})
}
