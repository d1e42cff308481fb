package usecase

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// InventoryUseCase owns item stock. Mutating calls must run inside a unit of work.
type InventoryUseCase interface {
	// Reserve takes qty units from an item under a row lock
	//
	// Possible errors:
	// - InsufficientStockError: If the item is missing, inactive or short
	Reserve(ctx context.Context, itemID uint64, qty int) (*entity.Item, error)

	// DeductForTransaction reserves every line of a transaction once, guarded
	// by the transaction's stock marker. It reports whether stock was taken.
	DeductForTransaction(ctx context.Context, transaction *entity.Transaction) (bool, error)

	// GetItem returns an item with its current stock
	GetItem(ctx context.Context, id uint64) (*entity.Item, error)
}
