package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with sale records
type TransactionRepository interface {
	// Create saves a new transaction together with its lines and assigns ids
	//
	// Possible errors:
	// - ErrDuplicateReference: If the receipt number or provider reference already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// Update writes the mutable lifecycle fields of a transaction. Lines are never rewritten.
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	Update(ctx context.Context, transaction *entity.Transaction) error

	// GetByID retrieves a transaction with its lines
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	GetByID(ctx context.Context, id uint64) (*entity.Transaction, error)

	// GetByIDForUpdate retrieves a transaction with its lines under an exclusive row lock
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrTransactionLocked: If the lock could not be obtained
	GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Transaction, error)

	// GetByReceiptNumber retrieves a transaction by its receipt number
	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.Transaction, error)

	// ListPendingGateway returns ids greater than afterID of gateway
	// transactions still pending that were created before the given time,
	// in ascending id order
	ListPendingGateway(ctx context.Context, createdBefore time.Time, afterID uint64, limit int) ([]uint64, error)
}
