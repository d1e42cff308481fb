package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxRepository implements persistence.OutboxRepository using GORM
type OutboxRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewOutboxRepository creates a new OutboxRepository instance
func NewOutboxRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *OutboxRepository {
	return &OutboxRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *OutboxRepository) modelToEntity(m *model.OutboxMessage) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		ID:         m.ID,
		EventID:    m.EventID,
		Topic:      m.Topic,
		MessageKey: m.MessageKey,
		Payload:    m.Payload,
		Status:     entity.OutboxStatus(m.Status),
		RetryCount: m.RetryCount,
		LastError:  m.LastError,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		SentAt:     m.SentAt,
	}
}

// Create stores a pending message
func (r *OutboxRepository) Create(ctx context.Context, message *entity.OutboxMessage) error {
	m := &model.OutboxMessage{
		EventID:    message.EventID,
		Topic:      message.Topic,
		MessageKey: message.MessageKey,
		Payload:    message.Payload,
		Status:     string(message.Status),
		CreatedAt:  message.CreatedAt,
		UpdatedAt:  message.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to store outbox message", map[string]any{
			"event_id": message.EventID,
			"topic":    message.Topic,
			"error":    err.Error(),
		})
		return r.errorClassifier.ToDomain(err, errs.ErrNotFound)
	}
	message.ID = m.ID
	return nil
}

// ListPending returns pending messages in creation order. Rows locked by
// another relay are skipped.
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error) {
	var models []model.OutboxMessage
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", string(entity.OutboxPending)).
		Order("id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrNotFound)
	}

	messages := make([]*entity.OutboxMessage, 0, len(models))
	for i := range models {
		messages = append(messages, r.modelToEntity(&models[i]))
	}
	return messages, nil
}

// MarkSent records a successful delivery
func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":     string(entity.OutboxSent),
		"sent_at":    at,
		"updated_at": at,
	})
}

// IncrementRetry records a failed delivery attempt
func (r *OutboxRepository) IncrementRetry(ctx context.Context, id uint64, lastError string) error {
	return r.update(ctx, id, map[string]any{
		"retry_count": gorm.Expr("retry_count + 1"),
		"last_error":  lastError,
		"updated_at":  r.timeProvider.Now(),
	})
}

// MarkFailed stops further delivery attempts
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64, lastError string) error {
	return r.update(ctx, id, map[string]any{
		"status":     string(entity.OutboxFailed),
		"last_error": lastError,
		"updated_at": r.timeProvider.Now(),
	})
}

func (r *OutboxRepository) update(ctx context.Context, id uint64, values map[string]any) error {
	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		r.logger.Error("Failed to update outbox message", map[string]any{
			"message_id": id,
			"error":      result.Error.Error(),
		})
		return r.errorClassifier.ToDomain(result.Error, errs.ErrNotFound)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
