package job

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	messagingport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
)

// RelayConfig holds outbox relay settings
type RelayConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxRelay publishes pending outbox messages in creation order
type OutboxRelay struct {
	uow          persistence.UnitOfWork
	publisher    messagingport.Publisher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          RelayConfig
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// NewOutboxRelay creates a relay
func NewOutboxRelay(
	uow persistence.UnitOfWork,
	publisher messagingport.Publisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg RelayConfig,
) *OutboxRelay {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &OutboxRelay{
		uow:          uow,
		publisher:    publisher,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
		stopCh:       make(chan struct{}),
	}
}

// Start drains the outbox on every tick until ctx is done or Stop is called
func (r *OutboxRelay) Start(ctx context.Context) {
	r.logger.Info("Outbox relay started", map[string]any{
		"interval":   r.cfg.Interval.String(),
		"batch_size": r.cfg.BatchSize,
	})

	ticker := r.timeProvider.NewTicker(coreport.Duration(r.cfg.Interval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopping", map[string]any{"reason": ctx.Err().Error()})
			return
		case <-r.stopCh:
			r.logger.Info("Outbox relay stopped", nil)
			return
		case <-ticker.C():
			if _, err := r.Drain(ctx); err != nil {
				r.logger.Error("Outbox drain failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// Stop ends the loop started by Start
func (r *OutboxRelay) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Drain publishes one batch. The batch rows stay locked until their status
// is written, so concurrent relays skip them.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	sent := 0
	err := r.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		sent = 0
		repo := r.uow.GetOutboxRepository(txCtx)

		messages, err := repo.ListPending(txCtx, r.cfg.BatchSize)
		if err != nil {
			return err
		}

		for _, msg := range messages {
			ok, err := r.deliver(txCtx, repo, msg)
			if err != nil {
				return err
			}
			if ok {
				sent++
			}
		}
		return nil
	})
	return sent, err
}

// deliver publishes one message and records the result. The returned error
// is a storage failure; publish failures are recorded on the message.
func (r *OutboxRelay) deliver(ctx context.Context, repo persistence.OutboxRepository, msg *entity.OutboxMessage) (bool, error) {
	pubErr := r.publisher.Publish(ctx, msg.Topic, msg.MessageKey, msg.Payload)
	if pubErr == nil {
		if err := repo.MarkSent(ctx, msg.ID, r.timeProvider.Now()); err != nil {
			return false, err
		}
		r.logger.Debug("Outbox message sent", map[string]any{
			"message_id": msg.ID,
			"event_id":   msg.EventID,
			"topic":      msg.Topic,
		})
		return true, nil
	}

	r.logger.Warn("Outbox message publish failed", map[string]any{
		"message_id":  msg.ID,
		"event_id":    msg.EventID,
		"retry_count": msg.RetryCount + 1,
		"error":       pubErr.Error(),
	})

	if err := repo.IncrementRetry(ctx, msg.ID, pubErr.Error()); err != nil {
		return false, err
	}
	if msg.RetryCount+1 >= r.cfg.MaxRetries {
		if err := repo.MarkFailed(ctx, msg.ID, pubErr.Error()); err != nil {
			return false, err
		}
		r.logger.Error("Outbox message exceeded max retries", map[string]any{
			"message_id": msg.ID,
			"event_id":   msg.EventID,
			"max":        r.cfg.MaxRetries,
		})
	}
	return false, nil
}
