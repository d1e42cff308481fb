package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
)

// Recorder writes transaction lifecycle events into the outbox. It must be
// called with the transactional context of the state change it records.
type Recorder struct {
	uow          persistence.UnitOfWork
	idGenerator  coreport.IDGenerator
	timeProvider coreport.TimeProvider
	topic        string
}

// NewRecorder creates an outbox recorder for the given topic
func NewRecorder(
	uow persistence.UnitOfWork,
	idGenerator coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	topic string,
) *Recorder {
	return &Recorder{
		uow:          uow,
		idGenerator:  idGenerator,
		timeProvider: timeProvider,
		topic:        topic,
	}
}

// Record stores an event describing the current state of t
func (r *Recorder) Record(ctx context.Context, t *entity.Transaction) error {
	if r == nil {
		return nil
	}

	now := r.timeProvider.Now()
	event := entity.NewTransactionEvent(r.idGenerator.EventID(), t, now)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.EventType, err)
	}

	message := &entity.OutboxMessage{
		EventID:    event.EventID,
		Topic:      r.topic,
		MessageKey: t.ReceiptNumber,
		Payload:    payload,
		Status:     entity.OutboxPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.uow.GetOutboxRepository(ctx).Create(ctx, message); err != nil {
		return fmt.Errorf("failed to write %s event to outbox: %w", event.EventType, err)
	}
	return nil
}
