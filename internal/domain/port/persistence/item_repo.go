package persistence

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// ItemRepository defines the stock-relevant operations on catalog items
type ItemRepository interface {
	// GetByID retrieves an item without locking
	//
	// Possible errors:
	// - ErrItemNotFound: If the item doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Item, error)

	// GetForUpdate retrieves an item, active or not, under an exclusive row lock
	//
	// Possible errors:
	// - ErrItemNotFound: If the item doesn't exist
	// - ErrTransactionLocked: If the lock could not be obtained
	GetForUpdate(ctx context.Context, id uint64) (*entity.Item, error)

	// ListActiveForUpdate locks and returns the active items among ids, ordered by id.
	// Missing and inactive ids are simply absent from the result.
	ListActiveForUpdate(ctx context.Context, ids []uint64) ([]*entity.Item, error)

	// UpdateStock writes a new stock count
	//
	// Possible errors:
	// - ErrItemNotFound: If the item doesn't exist
	// - ErrConstraintViolation: If the count would be negative
	UpdateStock(ctx context.Context, id uint64, stock int) error

	// Create inserts a catalog item
	Create(ctx context.Context, item *entity.Item) error
}
