package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
)

// Ledger owns stock counts. Reservations lock the item row and refuse to
// take stock below zero.
type Ledger struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.InventoryUseCase = (*Ledger)(nil)

// NewLedger creates a new inventory ledger
func NewLedger(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *Ledger {
	return &Ledger{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Reserve takes qty units from an item under a row lock
func (l *Ledger) Reserve(ctx context.Context, itemID uint64, qty int) (*entity.Item, error) {
	return l.reserve(ctx, itemID, "", qty)
}

func (l *Ledger) reserve(ctx context.Context, itemID uint64, name string, qty int) (*entity.Item, error) {
	repo := l.uow.GetItemRepository(ctx)

	item, err := repo.GetForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, errs.ErrItemNotFound) {
			return nil, errs.NewInsufficientStockError(itemID, name, qty, 0)
		}
		return nil, err
	}
	if name == "" {
		name = item.Name
	}

	before := item.Stock
	if err := item.Deduct(qty); err != nil {
		var stockErr *errs.InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErr.ItemName = name
		}
		l.logger.Warn("Stock reservation refused", map[string]any{
			"item_id":   itemID,
			"requested": qty,
			"available": before,
			"active":    item.IsActive,
		})
		return nil, err
	}

	if err := repo.UpdateStock(ctx, item.ID, item.Stock); err != nil {
		return nil, err
	}

	l.logger.Debug("Stock reserved", map[string]any{
		"item_id":   itemID,
		"quantity":  qty,
		"remaining": item.Stock,
	})
	if item.IsLowStock() {
		l.logger.Warn("Item is at or below minimum stock", map[string]any{
			"item_id":   item.ID,
			"stock":     item.Stock,
			"min_stock": item.MinStock,
		})
	}
	return item, nil
}

// DeductForTransaction reserves every line of a transaction unless its stock
// marker is already set, then sets the marker. Items are locked in id order.
// The caller persists the transaction.
func (l *Ledger) DeductForTransaction(ctx context.Context, t *entity.Transaction) (bool, error) {
	if t.StockDeducted() {
		l.logger.Info("Stock already deducted, skipping", map[string]any{
			"transaction_id": t.ID,
			"receipt_number": t.ReceiptNumber,
		})
		return false, nil
	}

	names := make(map[uint64]string, len(t.Lines))
	for _, line := range t.Lines {
		names[line.ItemID] = line.ItemName
	}

	quantities := t.ItemQuantities()
	ids := make([]uint64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if _, err := l.reserve(ctx, id, names[id], quantities[id]); err != nil {
			return false, err
		}
	}

	t.MarkStockDeducted(l.timeProvider.Now())

	l.logger.Info("Stock deducted for transaction", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
		"items":          len(ids),
	})
	return true, nil
}

// GetItem returns an item with its current stock
func (l *Ledger) GetItem(ctx context.Context, id uint64) (*entity.Item, error) {
	return l.uow.GetItemRepository(ctx).GetByID(ctx, id)
}
