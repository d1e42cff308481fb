package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
)

// Builder renders completed transactions into receipt snapshots and serves them
type Builder struct {
	uow      persistence.UnitOfWork
	cache    cacheport.ReceiptCache
	cacheTTL time.Duration
	logger   coreport.Logger
}

var _ usecase.ReceiptUseCase = (*Builder)(nil)

// NewBuilder creates a receipt builder. cache may be nil.
func NewBuilder(
	uow persistence.UnitOfWork,
	cache cacheport.ReceiptCache,
	cacheTTL time.Duration,
	logger coreport.Logger,
) *Builder {
	return &Builder{
		uow:      uow,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// BuildPayload renders the display snapshot of a transaction
func (b *Builder) BuildPayload(t *entity.Transaction) entity.ReceiptPayload {
	items := make([]entity.ReceiptPayloadItem, 0, len(t.Lines))
	for _, line := range t.Lines {
		name := line.ItemName
		if name == "" {
			name = entity.DefaultReceiptItemName
		}
		items = append(items, entity.ReceiptPayloadItem{
			Name:     name,
			Quantity: line.Quantity,
			Price:    entity.MoneyToFloat(line.Price),
			Subtotal: entity.MoneyToFloat(line.Subtotal),
		})
	}

	return entity.ReceiptPayload{
		ID:            t.ID,
		ReceiptNumber: t.ReceiptNumber,
		Date:          issuedAt(t).Format(entity.ReceiptDateLayout),
		Status:        string(t.Status),
		PaymentMethod: string(t.PaymentMethod),
		Subtotal:      entity.MoneyToFloat(t.Subtotal),
		Discount:      entity.MoneyToFloat(t.Discount),
		Tax:           entity.MoneyToFloat(t.Tax),
		Total:         entity.MoneyToFloat(t.Total),
		Items:         items,
	}
}

func issuedAt(t *entity.Transaction) time.Time {
	if t.PaidAt != nil {
		return *t.PaidAt
	}
	return t.CreatedAt
}

// PersistSnapshot upserts the receipt of a completed transaction, keyed by
// transaction id. Other statuses are ignored.
func (b *Builder) PersistSnapshot(ctx context.Context, t *entity.Transaction) (*entity.Receipt, error) {
	if t.Status != entity.StatusCompleted {
		b.logger.Debug("Skipping receipt snapshot for non-completed transaction", map[string]any{
			"transaction_id": t.ID,
			"status":         t.Status,
		})
		return nil, nil
	}

	receipt := &entity.Receipt{
		TransactionID:     t.ID,
		UserID:            t.UserID,
		ReceiptNumber:     t.ReceiptNumber,
		PaymentMethod:     t.PaymentMethod,
		Status:            t.Status,
		Total:             t.Total,
		ProviderPaymentID: t.ProviderPaymentID,
		ProviderReference: t.ProviderReference,
		Payload:           b.BuildPayload(t),
		IssuedAt:          issuedAt(t),
	}

	if err := b.uow.GetReceiptRepository(ctx).Upsert(ctx, receipt); err != nil {
		b.logger.Error("Failed to persist receipt snapshot", map[string]any{
			"transaction_id": t.ID,
			"receipt_number": t.ReceiptNumber,
			"error":          err.Error(),
		})
		return nil, fmt.Errorf("failed to persist receipt for transaction %d: %w", t.ID, err)
	}

	b.cachePayload(ctx, &receipt.Payload)

	b.logger.Info("Receipt snapshot persisted", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
	})
	return receipt, nil
}

// GetByReceiptNumber serves a snapshot, reading through the cache
func (b *Builder) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.ReceiptPayload, error) {
	if b.cache != nil {
		payload, hit, err := b.cache.Get(ctx, receiptNumber)
		if err != nil {
			b.logger.Warn("Receipt cache read failed", map[string]any{
				"receipt_number": receiptNumber,
				"error":          err.Error(),
			})
		} else if hit {
			return payload, nil
		}
	}

	receipt, err := b.uow.GetReceiptRepository(ctx).GetByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		if !errors.Is(err, errs.ErrReceiptNotFound) {
			return nil, err
		}
		// a completed sale whose snapshot write failed is re-snapshotted
		t, txErr := b.uow.GetTransactionRepository(ctx).GetByReceiptNumber(ctx, receiptNumber)
		if txErr != nil {
			return nil, err
		}
		return b.resnapshot(ctx, t)
	}

	b.cachePayload(ctx, &receipt.Payload)
	return &receipt.Payload, nil
}

// GetByTransactionID serves the snapshot of a transaction
func (b *Builder) GetByTransactionID(ctx context.Context, transactionID uint64) (*entity.ReceiptPayload, error) {
	receipt, err := b.uow.GetReceiptRepository(ctx).GetByTransactionID(ctx, transactionID)
	if err == nil {
		return &receipt.Payload, nil
	}
	if !errors.Is(err, errs.ErrReceiptNotFound) {
		return nil, err
	}

	t, err := b.uow.GetTransactionRepository(ctx).GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return b.resnapshot(ctx, t)
}

func (b *Builder) resnapshot(ctx context.Context, t *entity.Transaction) (*entity.ReceiptPayload, error) {
	if t.Status != entity.StatusCompleted {
		return nil, errs.ErrReceiptNotFound
	}

	b.logger.Warn("Completed transaction has no receipt, re-snapshotting", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
	})

	receipt, err := b.PersistSnapshot(ctx, t)
	if err != nil {
		return nil, err
	}
	return &receipt.Payload, nil
}

func (b *Builder) cachePayload(ctx context.Context, payload *entity.ReceiptPayload) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Set(ctx, payload, b.cacheTTL); err != nil {
		b.logger.Warn("Receipt cache write failed", map[string]any{
			"receipt_number": payload.ReceiptNumber,
			"error":          err.Error(),
		})
	}
}
