package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
)

// ItemRepository is the in-memory item store
type ItemRepository struct {
	store *Store
}

// GetByID retrieves an item
func (r *ItemRepository) GetByID(_ context.Context, id uint64) (*entity.Item, error) {
	var item *entity.Item
	err := r.store.read(func(d *data) error {
		found, ok := d.items[id]
		if !ok {
			return errs.ErrItemNotFound
		}
		item = copyItem(found)
		return nil
	})
	return item, err
}

// GetForUpdate retrieves an item; the unit of work lock already serializes writers
func (r *ItemRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

// ListActiveForUpdate returns the active items among ids ordered by id
func (r *ItemRepository) ListActiveForUpdate(_ context.Context, ids []uint64) ([]*entity.Item, error) {
	var items []*entity.Item
	err := r.store.read(func(d *data) error {
		seen := make(map[uint64]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if item, ok := d.items[id]; ok && item.IsActive {
				items = append(items, copyItem(item))
			}
		}
		return nil
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, err
}

// UpdateStock writes a new stock count
func (r *ItemRepository) UpdateStock(ctx context.Context, id uint64, stock int) error {
	return r.store.write(ctx, func(d *data) error {
		item, ok := d.items[id]
		if !ok {
			return errs.ErrItemNotFound
		}
		if stock < 0 {
			return fmt.Errorf("%w: stock of item %d would be %d", errs.ErrConstraintViolation, id, stock)
		}
		item.Stock = stock
		item.UpdatedAt = r.store.timeProvider.Now()
		return nil
	})
}

// Create inserts an item, assigning an id when none is set
func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.store.write(ctx, func(d *data) error {
		for _, existing := range d.items {
			if item.SKU != "" && existing.SKU == item.SKU {
				return fmt.Errorf("%w: sku %s", errs.ErrConstraintViolation, item.SKU)
			}
		}
		if item.ID == 0 {
			d.nextItemID++
			item.ID = d.nextItemID
		} else if item.ID > d.nextItemID {
			d.nextItemID = item.ID
		}
		if _, exists := d.items[item.ID]; exists {
			return fmt.Errorf("%w: item %d", errs.ErrConstraintViolation, item.ID)
		}
		now := r.store.timeProvider.Now()
		item.CreatedAt, item.UpdatedAt = now, now
		d.items[item.ID] = copyItem(item)
		return nil
	})
}

// TransactionRepository is the in-memory transaction store
type TransactionRepository struct {
	store *Store
}

// Create saves a transaction and its lines
func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	return r.store.write(ctx, func(d *data) error {
		for _, existing := range d.transactions {
			if existing.ReceiptNumber == t.ReceiptNumber ||
				(t.ProviderReference != "" && existing.ProviderReference == t.ProviderReference) {
				return errs.ErrDuplicateReference
			}
		}
		d.nextTxID++
		t.ID = d.nextTxID
		for i := range t.Lines {
			d.nextLineID++
			t.Lines[i].ID = d.nextLineID
			t.Lines[i].TransactionID = t.ID
			t.Lines[i].CreatedAt = t.CreatedAt
		}
		d.transactions[t.ID] = copyTransaction(t)
		return nil
	})
}

// Update writes lifecycle fields; lines are kept as created
func (r *TransactionRepository) Update(ctx context.Context, t *entity.Transaction) error {
	return r.store.write(ctx, func(d *data) error {
		existing, ok := d.transactions[t.ID]
		if !ok {
			return errs.ErrTransactionNotFound
		}
		updated := copyTransaction(t)
		updated.Lines = existing.Lines
		updated.UpdatedAt = r.store.timeProvider.Now()
		d.transactions[t.ID] = updated
		return nil
	})
}

// GetByID retrieves a transaction with its lines
func (r *TransactionRepository) GetByID(_ context.Context, id uint64) (*entity.Transaction, error) {
	var t *entity.Transaction
	err := r.store.read(func(d *data) error {
		found, ok := d.transactions[id]
		if !ok {
			return errs.ErrTransactionNotFound
		}
		t = copyTransaction(found)
		return nil
	})
	return t, err
}

// GetByIDForUpdate retrieves a transaction; the unit of work lock already serializes writers
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

// GetByReceiptNumber retrieves a transaction by receipt number
func (r *TransactionRepository) GetByReceiptNumber(_ context.Context, receiptNumber string) (*entity.Transaction, error) {
	var t *entity.Transaction
	err := r.store.read(func(d *data) error {
		for _, found := range d.transactions {
			if found.ReceiptNumber == receiptNumber {
				t = copyTransaction(found)
				return nil
			}
		}
		return errs.ErrTransactionNotFound
	})
	return t, err
}

// ListPendingGateway returns pending gateway transaction ids above afterID
// created before the cutoff, in id order
func (r *TransactionRepository) ListPendingGateway(_ context.Context, createdBefore time.Time, afterID uint64, limit int) ([]uint64, error) {
	var pending []*entity.Transaction
	_ = r.store.read(func(d *data) error {
		for _, t := range d.transactions {
			if t.ID > afterID && t.IsPending() && t.IsGateway() && t.CreatedAt.Before(createdBefore) {
				pending = append(pending, t)
			}
		}
		return nil
	})

	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	ids := make([]uint64, 0, len(pending))
	for _, t := range pending {
		if limit > 0 && len(ids) >= limit {
			break
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// ReceiptRepository is the in-memory receipt store
type ReceiptRepository struct {
	store *Store
}

// Upsert inserts or overwrites the receipt of a transaction
func (r *ReceiptRepository) Upsert(ctx context.Context, receipt *entity.Receipt) error {
	return r.store.write(ctx, func(d *data) error {
		now := r.store.timeProvider.Now()
		if existing, ok := d.receipts[receipt.TransactionID]; ok {
			receipt.ID = existing.ID
			receipt.CreatedAt = existing.CreatedAt
		} else {
			d.nextRcptID++
			receipt.ID = d.nextRcptID
			receipt.CreatedAt = now
		}
		receipt.UpdatedAt = now
		d.receipts[receipt.TransactionID] = copyReceipt(receipt)
		return nil
	})
}

// GetByReceiptNumber retrieves a receipt by number
func (r *ReceiptRepository) GetByReceiptNumber(_ context.Context, receiptNumber string) (*entity.Receipt, error) {
	var receipt *entity.Receipt
	err := r.store.read(func(d *data) error {
		for _, found := range d.receipts {
			if found.ReceiptNumber == receiptNumber {
				receipt = copyReceipt(found)
				return nil
			}
		}
		return errs.ErrReceiptNotFound
	})
	return receipt, err
}

// GetByTransactionID retrieves the receipt of a transaction
func (r *ReceiptRepository) GetByTransactionID(_ context.Context, transactionID uint64) (*entity.Receipt, error) {
	var receipt *entity.Receipt
	err := r.store.read(func(d *data) error {
		found, ok := d.receipts[transactionID]
		if !ok {
			return errs.ErrReceiptNotFound
		}
		receipt = copyReceipt(found)
		return nil
	})
	return receipt, err
}

// CountByTransactionID returns 0 or 1; receipts are keyed by transaction
func (r *ReceiptRepository) CountByTransactionID(_ context.Context, transactionID uint64) (int64, error) {
	var count int64
	_ = r.store.read(func(d *data) error {
		if _, ok := d.receipts[transactionID]; ok {
			count = 1
		}
		return nil
	})
	return count, nil
}

// OutboxRepository is the in-memory outbox
type OutboxRepository struct {
	store *Store
}

// Create stores a pending message
func (r *OutboxRepository) Create(ctx context.Context, message *entity.OutboxMessage) error {
	return r.store.write(ctx, func(d *data) error {
		d.nextMsgID++
		message.ID = d.nextMsgID
		if message.Status == "" {
			message.Status = entity.OutboxPending
		}
		d.outbox[message.ID] = copyMessage(message)
		return nil
	})
}

// ListPending returns pending messages in creation order
func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]*entity.OutboxMessage, error) {
	var pending []*entity.OutboxMessage
	_ = r.store.read(func(d *data) error {
		for _, m := range d.outbox {
			if m.Status == entity.OutboxPending {
				pending = append(pending, copyMessage(m))
			}
		}
		return nil
	})
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// MarkSent records a delivery
func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64, at time.Time) error {
	return r.update(ctx, id, func(m *entity.OutboxMessage) {
		m.Status = entity.OutboxSent
		m.SentAt = &at
	})
}

// IncrementRetry records a failed attempt
func (r *OutboxRepository) IncrementRetry(ctx context.Context, id uint64, lastError string) error {
	return r.update(ctx, id, func(m *entity.OutboxMessage) {
		m.RetryCount++
		m.LastError = lastError
	})
}

// MarkFailed stops delivery of a message
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64, lastError string) error {
	return r.update(ctx, id, func(m *entity.OutboxMessage) {
		m.Status = entity.OutboxFailed
		m.LastError = lastError
	})
}

func (r *OutboxRepository) update(ctx context.Context, id uint64, fn func(m *entity.OutboxMessage)) error {
	return r.store.write(ctx, func(d *data) error {
		m, ok := d.outbox[id]
		if !ok {
			return errs.ErrNotFound
		}
		fn(m)
		m.UpdatedAt = r.store.timeProvider.Now()
		return nil
	})
}

// Messages returns every outbox message in creation order
func (s *Store) Messages() []*entity.OutboxMessage {
	var all []*entity.OutboxMessage
	_ = s.read(func(d *data) error {
		for _, m := range d.outbox {
			all = append(all, copyMessage(m))
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
