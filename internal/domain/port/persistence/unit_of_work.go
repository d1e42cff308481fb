package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// WithinTransaction runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Transient lock or serialization failures are retried.
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error

	// GetItemRepository returns an item repository bound to the current transaction
	GetItemRepository(ctx context.Context) ItemRepository

	// GetTransactionRepository returns a transaction repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetReceiptRepository returns a receipt repository bound to the current transaction
	GetReceiptRepository(ctx context.Context) ReceiptRepository

	// GetOutboxRepository returns an outbox repository bound to the current transaction
	GetOutboxRepository(ctx context.Context) OutboxRepository
}
