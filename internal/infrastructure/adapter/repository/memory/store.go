// Package memory is an in-process implementation of the persistence ports.
// Units of work are serialized by a single store-wide lock held from Begin
// until Commit or Rollback, which gives the same observable guarantees as
// row locks for a single process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
)

type contextKey string

const txKey contextKey = "memory-tx"

type txState struct {
	snapshot *data
	done     bool
}

type data struct {
	items        map[uint64]*entity.Item
	transactions map[uint64]*entity.Transaction
	receipts     map[uint64]*entity.Receipt // keyed by transaction id
	outbox       map[uint64]*entity.OutboxMessage
	nextItemID   uint64
	nextTxID     uint64
	nextLineID   uint64
	nextRcptID   uint64
	nextMsgID    uint64
}

// Store holds all records in memory and implements persistence.UnitOfWork
type Store struct {
	writer       chan struct{} // capacity one; held by the active unit of work
	mu           sync.RWMutex  // guards d
	d            *data
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewStore creates an empty store
func NewStore(timeProvider coreport.TimeProvider, logger coreport.Logger) *Store {
	return &Store{
		writer: make(chan struct{}, 1),
		d: &data{
			items:        make(map[uint64]*entity.Item),
			transactions: make(map[uint64]*entity.Transaction),
			receipts:     make(map[uint64]*entity.Receipt),
			outbox:       make(map[uint64]*entity.OutboxMessage),
		},
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ persistence.UnitOfWork = (*Store)(nil)

func stateFrom(ctx context.Context) *txState {
	st, _ := ctx.Value(txKey).(*txState)
	if st == nil || st.done {
		return nil
	}
	return st
}

// Begin acquires the store-wide writer lock and snapshots the data
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if stateFrom(ctx) != nil {
		return ctx, fmt.Errorf("transaction already active in context")
	}

	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx, fmt.Errorf("failed to begin transaction: %w", ctx.Err())
	}

	s.mu.RLock()
	snapshot := s.d.clone()
	s.mu.RUnlock()

	return context.WithValue(ctx, txKey, &txState{snapshot: snapshot}), nil
}

// Commit releases the writer lock, keeping all writes
func (s *Store) Commit(ctx context.Context) error {
	st := stateFrom(ctx)
	if st == nil {
		return fmt.Errorf("no transaction found in context")
	}
	st.done = true
	<-s.writer
	return nil
}

// Rollback restores the snapshot taken at Begin and releases the writer lock.
// Rolling back a finished transaction is a no-op.
func (s *Store) Rollback(ctx context.Context) error {
	st := stateFrom(ctx)
	if st == nil {
		s.logger.Debug("Rollback on finished or missing transaction ignored", nil)
		return nil
	}
	s.mu.Lock()
	s.d = st.snapshot
	s.mu.Unlock()
	st.done = true
	<-s.writer
	return nil
}

// WithinTransaction runs fn in a unit of work. A context that already carries
// a transaction joins it.
func (s *Store) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	if stateFrom(ctx) != nil {
		return fn(ctx)
	}

	txCtx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(txCtx)
			panic(p)
		}
	}()

	if err = fn(txCtx); err != nil {
		_ = s.Rollback(txCtx)
		return err
	}
	return s.Commit(txCtx)
}

// write applies fn under the data lock, in its own unit of work when ctx has none
func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	if stateFrom(ctx) != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.d)
	}
	return s.WithinTransaction(ctx, func(txCtx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.d)
	})
}

func (s *Store) read(fn func(d *data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.d)
}

// GetItemRepository returns the item repository
func (s *Store) GetItemRepository(context.Context) persistence.ItemRepository {
	return &ItemRepository{store: s}
}

// GetTransactionRepository returns the transaction repository
func (s *Store) GetTransactionRepository(context.Context) persistence.TransactionRepository {
	return &TransactionRepository{store: s}
}

// GetReceiptRepository returns the receipt repository
func (s *Store) GetReceiptRepository(context.Context) persistence.ReceiptRepository {
	return &ReceiptRepository{store: s}
}

// GetOutboxRepository returns the outbox repository
func (s *Store) GetOutboxRepository(context.Context) persistence.OutboxRepository {
	return &OutboxRepository{store: s}
}

// Ping always succeeds
func (s *Store) Ping(context.Context) error {
	return nil
}

func (d *data) clone() *data {
	c := &data{
		items:        make(map[uint64]*entity.Item, len(d.items)),
		transactions: make(map[uint64]*entity.Transaction, len(d.transactions)),
		receipts:     make(map[uint64]*entity.Receipt, len(d.receipts)),
		outbox:       make(map[uint64]*entity.OutboxMessage, len(d.outbox)),
		nextItemID:   d.nextItemID,
		nextTxID:     d.nextTxID,
		nextLineID:   d.nextLineID,
		nextRcptID:   d.nextRcptID,
		nextMsgID:    d.nextMsgID,
	}
	for id, v := range d.items {
		c.items[id] = copyItem(v)
	}
	for id, v := range d.transactions {
		c.transactions[id] = copyTransaction(v)
	}
	for id, v := range d.receipts {
		c.receipts[id] = copyReceipt(v)
	}
	for id, v := range d.outbox {
		c.outbox[id] = copyMessage(v)
	}
	return c
}

func copyItem(i *entity.Item) *entity.Item {
	c := *i
	return &c
}

func copyTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	if t.PaidAt != nil {
		v := *t.PaidAt
		c.PaidAt = &v
	}
	if t.StockDeductedAt != nil {
		v := *t.StockDeductedAt
		c.StockDeductedAt = &v
	}
	c.Lines = append([]entity.TransactionLine(nil), t.Lines...)
	return &c
}

func copyReceipt(r *entity.Receipt) *entity.Receipt {
	c := *r
	c.Payload.Items = append([]entity.ReceiptPayloadItem(nil), r.Payload.Items...)
	return &c
}

func copyMessage(m *entity.OutboxMessage) *entity.OutboxMessage {
	c := *m
	c.Payload = append([]byte(nil), m.Payload...)
	if m.SentAt != nil {
		v := *m.SentAt
		c.SentAt = &v
	}
	return &c
}
