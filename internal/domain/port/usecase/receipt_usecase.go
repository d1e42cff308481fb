package usecase

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// ReceiptUseCase builds and serves receipt snapshots
type ReceiptUseCase interface {
	// BuildPayload renders the snapshot of a transaction
	BuildPayload(transaction *entity.Transaction) entity.ReceiptPayload

	// PersistSnapshot upserts the receipt of a completed transaction.
	// It returns nil without writing for any other status.
	PersistSnapshot(ctx context.Context, transaction *entity.Transaction) (*entity.Receipt, error)

	// GetByReceiptNumber returns a stored snapshot
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.ReceiptPayload, error)

	// GetByTransactionID returns the snapshot of a transaction, re-snapshotting
	// a completed transaction whose receipt is missing
	GetByTransactionID(ctx context.Context, transactionID uint64) (*entity.ReceiptPayload, error)
}
