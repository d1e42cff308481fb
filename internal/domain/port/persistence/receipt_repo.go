package persistence

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// ReceiptRepository stores the one-per-transaction receipt snapshot
type ReceiptRepository interface {
	// Upsert inserts the receipt or overwrites the row keyed by transaction id
	Upsert(ctx context.Context, receipt *entity.Receipt) error

	// GetByReceiptNumber retrieves a receipt snapshot
	//
	// Possible errors:
	// - ErrReceiptNotFound: If no snapshot exists
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.Receipt, error)

	// GetByTransactionID retrieves the snapshot of a transaction
	//
	// Possible errors:
	// - ErrReceiptNotFound: If no snapshot exists
	GetByTransactionID(ctx context.Context, transactionID uint64) (*entity.Receipt, error)

	// CountByTransactionID returns how many receipt rows reference the transaction
	CountByTransactionID(ctx context.Context, transactionID uint64) (int64, error)
}
