package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// OutboxRepository persists lifecycle events until they are relayed
type OutboxRepository interface {
	// Create stores a pending message in the current unit of work
	Create(ctx context.Context, message *entity.OutboxMessage) error

	// ListPending returns pending messages in creation order
	ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error)

	// MarkSent records a successful delivery
	MarkSent(ctx context.Context, id uint64, at time.Time) error

	// IncrementRetry records a failed delivery attempt
	IncrementRetry(ctx context.Context, id uint64, lastError string) error

	// MarkFailed stops further delivery attempts
	MarkFailed(ctx context.Context, id uint64, lastError string) error
}
