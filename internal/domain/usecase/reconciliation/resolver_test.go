package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/inventory"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/outbox"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/receipt"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/repository/memory"
	timeadapter "github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/time"
	mcore "github.com/amirhossein-jamali/pos-checkout/mocks/port/core"
	mgateway "github.com/amirhossein-jamali/pos-checkout/mocks/port/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	checkoutID = "chk-100"
	reference  = "RRN-20250301100000-1A2B3C4D"
)

var startedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	resolver *Resolver
	store    *memory.Store
	clock    *timeadapter.ManualTimeProvider
	gateway  *mgateway.MockPaymentGateway
	created  int
}

func newFixture(t *testing.T, cfg Config, metrics coreport.Metrics) *fixture {
	t.Helper()
	clock := timeadapter.NewManualTimeProvider(startedAt)
	log := logger.NewNoopLogger()
	store := memory.NewStore(clock, log)
	ids, err := idgen.NewGenerator(2)
	require.NoError(t, err)
	gateway := mgateway.NewMockPaymentGateway(t)

	ctx := context.Background()
	require.NoError(t, store.GetItemRepository(ctx).Create(ctx, &entity.Item{
		ID: 1, Name: "Burger", SKU: "BRG-01", Price: decimal.RequireFromString("129.00"), Stock: 10, IsActive: true,
	}))
	require.NoError(t, store.GetItemRepository(ctx).Create(ctx, &entity.Item{
		ID: 2, Name: "Fries", SKU: "FRY-01", Price: decimal.RequireFromString("45.50"), Stock: 5, IsActive: true,
	}))

	resolver := NewResolver(
		store,
		inventory.NewLedger(store, clock, log),
		receipt.NewBuilder(store, nil, 0, log),
		gateway,
		outbox.NewRecorder(store, ids, clock, "pos.transactions"),
		clock,
		log,
		metrics,
		cfg,
	)
	return &fixture{resolver: resolver, store: store, clock: clock, gateway: gateway}
}

// pending stores a gateway sale of 1 burger and 2 fries, total 220.00
func (f *fixture) pending(t *testing.T) *entity.Transaction {
	t.Helper()
	ctx := context.Background()
	burger, _ := f.store.GetItemRepository(ctx).GetByID(ctx, 1)
	fries, _ := f.store.GetItemRepository(ctx).GetByID(ctx, 2)

	tx, err := entity.NewTransaction(7, entity.PaymentMethodGateway, []entity.TransactionLine{
		entity.NewTransactionLine(burger, 1),
		entity.NewTransactionLine(fries, 2),
	}, "", f.clock.Now())
	require.NoError(t, err)
	f.created++
	tx.ReceiptNumber = fmt.Sprintf("RCPT-20250301100000-%08d", f.created)
	tx.ProviderReference = reference
	tx.ProviderCheckoutID = checkoutID
	if f.created > 1 {
		tx.ProviderReference = fmt.Sprintf("%s-%d", reference, f.created)
		tx.ProviderCheckoutID = fmt.Sprintf("%s-%d", checkoutID, f.created)
	}
	require.NoError(t, f.store.GetTransactionRepository(ctx).Create(ctx, tx))
	return tx
}

func (f *fixture) reload(t *testing.T, id uint64) *entity.Transaction {
	t.Helper()
	tx, err := f.store.GetTransactionRepository(context.Background()).GetByID(context.Background(), id)
	require.NoError(t, err)
	return tx
}

func (f *fixture) stock(t *testing.T, id uint64) int {
	t.Helper()
	item, err := f.store.GetItemRepository(context.Background()).GetByID(context.Background(), id)
	require.NoError(t, err)
	return item.Stock
}

func (f *fixture) receipts(t *testing.T, id uint64) int64 {
	t.Helper()
	count, err := f.store.GetReceiptRepository(context.Background()).CountByTransactionID(context.Background(), id)
	require.NoError(t, err)
	return count
}

func paid(ref, amount string) entity.PaymentRecord {
	record := entity.PaymentRecord{"id": "pay-900", "status": "PAYMENT_SUCCESS", "rrn": ref}
	if amount != "" {
		record["amount"] = map[string]any{"value": amount}
	}
	return record
}

func defaultConfig() Config {
	return Config{PendingAge: 5 * time.Minute, ExpireAfter: time.Hour, VerifyReferenceAmount: true}
}

func TestHandleCallbackVerifiedByReference(t *testing.T) {
	metrics := mcore.NewMockMetrics(t)
	metrics.On("RecordReconciliation", "callback", "completed").Once()
	f := newFixture(t, defaultConfig(), metrics)
	tx := f.pending(t)

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(paid(reference, "220.00"), nil).Once()

	outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	assert.True(t, outcome.Verified)
	assert.Equal(t, SourceReference, outcome.Source)

	stored := f.reload(t, tx.ID)
	assert.Equal(t, entity.StatusCompleted, stored.Status)
	assert.Equal(t, "pay-900", stored.ProviderPaymentID)
	assert.Equal(t, reference, stored.ProviderReference)
	assert.NotNil(t, stored.PaidAt)
	assert.True(t, stored.StockDeducted())
	assert.Contains(t, stored.Notes, entity.NoteGatewayCompleted)
	assert.Equal(t, "PAYMENT_SUCCESS", stored.ProviderPayload.Status())
	assert.Equal(t, 9, f.stock(t, 1))
	assert.Equal(t, 3, f.stock(t, 2))
	assert.Equal(t, int64(1), f.receipts(t, tx.ID))
	require.Len(t, f.store.Messages(), 1)
}

func TestHandleCallbackVerifiedByCheckout(t *testing.T) {
	f := newFixture(t, defaultConfig(), nil)
	tx := f.pending(t)

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(entity.PaymentRecord{
		"id":                     checkoutID,
		"status":                 "COMPLETED",
		"requestReferenceNumber": reference,
		"totalAmount":            map[string]any{"value": 220, "currency": "PHP"},
	}, nil).Once()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, nil).Once()

	outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)

	assert.Equal(t, SourceCheckout, outcome.Source)
	assert.Equal(t, entity.StatusCompleted, f.reload(t, tx.ID).Status)
}

func TestHandleCallbackRejectsForeignAmount(t *testing.T) {
	f := newFixture(t, defaultConfig(), nil)
	tx := f.pending(t)

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(entity.PaymentRecord{
		"status":                 "PAID",
		"requestReferenceNumber": reference,
		"totalAmount":            map[string]any{"value": "1.00"},
	}, nil).Once()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, nil).Once()

	outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)

	assert.False(t, outcome.Verified)
	stored := f.reload(t, tx.ID)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Contains(t, stored.Notes, entity.NoteGatewayNotVerified)
	assert.False(t, stored.StockDeducted())
	assert.Equal(t, 10, f.stock(t, 1))
	assert.Zero(t, f.receipts(t, tx.ID))
}

func TestReferenceRecordAmountCheck(t *testing.T) {
	tests := []struct {
		name           string
		verifyAmount   bool
		expectedStatus entity.TransactionStatus
	}{
		{"Amount checked", true, entity.StatusFailed},
		{"Reference alone proves ownership", false, entity.StatusCompleted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.VerifyReferenceAmount = tc.verifyAmount
			f := newFixture(t, cfg, nil)
			tx := f.pending(t)

			f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
			f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(paid("RRN-OTHER", "999.00"), nil).Once()

			_, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, f.reload(t, tx.ID).Status)
		})
	}
}

func TestHandleCallbackReferenceHitCoversLaterPaymentRecord(t *testing.T) {
	cfg := defaultConfig()
	cfg.VerifyReferenceAmount = false
	f := newFixture(t, cfg, nil)
	tx := f.pending(t)

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(entity.PaymentRecord{"status": "PENDING", "rrn": reference}, nil).Once()
	f.gateway.On("GetPayment", mock.Anything, checkoutID).Return(entity.PaymentRecord{"id": "pay-1", "status": "PAID"}, nil).Once()

	outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)

	assert.True(t, outcome.Verified)
	assert.Equal(t, SourcePayment, outcome.Source)
	stored := f.reload(t, tx.ID)
	assert.Equal(t, entity.StatusCompleted, stored.Status)
	assert.Equal(t, "pay-1", stored.ProviderPaymentID)
	assert.True(t, stored.StockDeducted())
}

func TestHandleCallbackFallsBackThroughLookups(t *testing.T) {
	t.Run("Payment lookup after failing sources", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)

		f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, errors.New("timeout")).Once()
		f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, errors.New("502 bad gateway")).Once()
		f.gateway.On("GetPayment", mock.Anything, checkoutID).Return(paid(reference, ""), nil).Once()

		outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
		require.NoError(t, err)

		assert.Equal(t, SourcePayment, outcome.Source)
		assert.Equal(t, entity.StatusCompleted, f.reload(t, tx.ID).Status)
	})

	t.Run("Status lookup when the payment is not successful", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)

		f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(entity.PaymentRecord{"status": "PENDING_PAYMENT"}, nil).Once()
		f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, nil).Once()
		f.gateway.On("GetPayment", mock.Anything, checkoutID).Return(entity.PaymentRecord{"status": "PENDING"}, nil).Once()
		f.gateway.On("GetPaymentStatus", mock.Anything, checkoutID).Return(entity.PaymentRecord{
			"payments": []any{map[string]any{"id": "pay-77", "status": "CAPTURED", "rrn": reference}},
		}, nil).Once()

		outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
		require.NoError(t, err)

		assert.Equal(t, SourceStatus, outcome.Source)
		stored := f.reload(t, tx.ID)
		assert.Equal(t, entity.StatusCompleted, stored.Status)
		assert.Equal(t, "pay-77", stored.ProviderPaymentID)
	})

	t.Run("Nothing verifiable fails the sale", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)

		f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, nil).Once()
		f.gateway.On("GetPayment", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentStatus", mock.Anything, checkoutID).Return(nil, nil).Once()

		outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
		require.NoError(t, err)

		assert.True(t, outcome.Changed)
		assert.Equal(t, entity.StatusFailed, f.reload(t, tx.ID).Status)
	})
}

func TestHandleCallbackCancelledHint(t *testing.T) {
	for _, hint := range []usecase.CallbackResult{usecase.CallbackFailed, usecase.CallbackCancelled} {
		t.Run(string(hint), func(t *testing.T) {
			f := newFixture(t, defaultConfig(), nil)
			tx := f.pending(t)

			outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, hint)
			require.NoError(t, err)

			assert.True(t, outcome.Changed)
			stored := f.reload(t, tx.ID)
			assert.Equal(t, entity.StatusCancelled, stored.Status)
			assert.Contains(t, stored.Notes, entity.NoteGatewayNotCompleted)
			assert.Equal(t, "failed", stored.CallbackOutcome())
			f.gateway.AssertNotCalled(t, "GetCheckout", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleCallbackIsIdempotent(t *testing.T) {
	f := newFixture(t, defaultConfig(), nil)
	tx := f.pending(t)
	ctx := context.Background()

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(paid(reference, "220.00"), nil).Once()

	first, err := f.resolver.HandleCallback(ctx, tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	for _, hint := range []usecase.CallbackResult{usecase.CallbackSuccess, usecase.CallbackCancelled, usecase.CallbackSuccess} {
		again, err := f.resolver.HandleCallback(ctx, tx.ID, hint)
		require.NoError(t, err)
		assert.False(t, again.Changed)
		assert.Equal(t, entity.StatusCompleted, again.Transaction.Status)
	}

	assert.Equal(t, 9, f.stock(t, 1))
	assert.Equal(t, 3, f.stock(t, 2))
	assert.Equal(t, int64(1), f.receipts(t, tx.ID))
	assert.Len(t, f.store.Messages(), 1)
}

func TestConcurrentCallbacksDeductOnce(t *testing.T) {
	f := newFixture(t, defaultConfig(), nil)
	tx := f.pending(t)

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Maybe()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(paid(reference, "220.00"), nil).Maybe()

	var wg sync.WaitGroup
	errCh := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Equal(t, entity.StatusCompleted, f.reload(t, tx.ID).Status)
	assert.Equal(t, 9, f.stock(t, 1))
	assert.Equal(t, 3, f.stock(t, 2))
	assert.Equal(t, int64(1), f.receipts(t, tx.ID))
	assert.Len(t, f.store.Messages(), 1)
}

func TestHandleCallbackStockShortfall(t *testing.T) {
	f := newFixture(t, defaultConfig(), nil)
	tx := f.pending(t)
	ctx := context.Background()
	require.NoError(t, f.store.GetItemRepository(ctx).UpdateStock(ctx, 2, 1))

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
	f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(paid(reference, "220.00"), nil).Once()

	outcome, err := f.resolver.HandleCallback(ctx, tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)

	assert.False(t, outcome.Verified)
	stored := f.reload(t, tx.ID)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Contains(t, stored.Notes, entity.NotePaymentVerifyFailed)
	assert.False(t, stored.StockDeducted())
	assert.Equal(t, 10, f.stock(t, 1))
	assert.Equal(t, 1, f.stock(t, 2))
}

func TestHandleCallbackRecoversFromPanics(t *testing.T) {
	f := newFixture(t, defaultConfig(), nil)
	tx := f.pending(t)

	f.gateway.On("GetCheckout", mock.Anything, checkoutID).Panic("decoder exploded").Once()

	outcome, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackSuccess)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFailed, outcome.Transaction.Status)
	assert.Contains(t, f.reload(t, tx.ID).Notes, entity.NotePaymentVerifyFailed)
}

func TestPoll(t *testing.T) {
	t.Run("Keeps young unverified sales pending", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)
		f.clock.Advance(10 * time.Minute)

		f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, errors.New("reset by peer")).Once()
		f.gateway.On("GetPayment", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentStatus", mock.Anything, checkoutID).Return(nil, nil).Once()

		outcome, err := f.resolver.Poll(context.Background(), tx.ID)
		require.NoError(t, err)

		assert.False(t, outcome.Changed)
		assert.Equal(t, entity.StatusPending, f.reload(t, tx.ID).Status)
	})

	t.Run("Fails expired unverified sales", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)
		f.clock.Advance(2 * time.Hour)

		f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(nil, nil).Once()
		f.gateway.On("GetPayment", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentStatus", mock.Anything, checkoutID).Return(nil, nil).Once()

		_, err := f.resolver.Poll(context.Background(), tx.ID)
		require.NoError(t, err)

		stored := f.reload(t, tx.ID)
		assert.Equal(t, entity.StatusFailed, stored.Status)
		assert.Contains(t, stored.Notes, entity.NoteGatewayNotVerified)
	})

	t.Run("Completes verified sales", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)

		f.gateway.On("GetCheckout", mock.Anything, checkoutID).Return(nil, nil).Once()
		f.gateway.On("GetPaymentByReference", mock.Anything, reference).Return(paid(reference, "220.00"), nil).Once()

		outcome, err := f.resolver.Poll(context.Background(), tx.ID)
		require.NoError(t, err)

		assert.True(t, outcome.Changed)
		stored := f.reload(t, tx.ID)
		assert.Equal(t, entity.StatusCompleted, stored.Status)
		assert.Contains(t, stored.Notes, entity.NoteCompletedByPoll)
	})

	t.Run("Ignores finished sales", func(t *testing.T) {
		f := newFixture(t, defaultConfig(), nil)
		tx := f.pending(t)
		_, err := f.resolver.HandleCallback(context.Background(), tx.ID, usecase.CallbackCancelled)
		require.NoError(t, err)

		outcome, err := f.resolver.Poll(context.Background(), tx.ID)
		require.NoError(t, err)
		assert.False(t, outcome.Changed)
		assert.Equal(t, entity.StatusCancelled, outcome.Transaction.Status)
	})
}

func TestStalePending(t *testing.T) {
	f := newFixture(t, Config{PendingAge: 5 * time.Minute, ExpireAfter: time.Hour, BatchSize: 10}, nil)
	old := f.pending(t)
	f.clock.Advance(4 * time.Minute)
	young := f.pending(t)
	f.clock.Advance(2 * time.Minute)

	ids, err := f.resolver.StalePending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{old.ID}, ids)

	f.clock.Advance(5 * time.Minute)
	ids, err = f.resolver.StalePending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{old.ID, young.ID}, ids)

	ids, err = f.resolver.StalePending(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{young.ID}, ids)
}

func TestStalePendingPagesByBatchSize(t *testing.T) {
	f := newFixture(t, Config{PendingAge: time.Minute, ExpireAfter: time.Hour, BatchSize: 2}, nil)
	first := f.pending(t)
	second := f.pending(t)
	third := f.pending(t)
	f.clock.Advance(2 * time.Minute)

	ids, err := f.resolver.StalePending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{first.ID, second.ID}, ids)

	ids, err = f.resolver.StalePending(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{third.ID}, ids)
}
