package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptRepository implements persistence.ReceiptRepository using GORM
type ReceiptRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewReceiptRepository creates a new ReceiptRepository instance
func NewReceiptRepository(db *gorm.DB, logger coreport.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *ReceiptRepository) modelToEntity(m *model.Receipt) (*entity.Receipt, error) {
	var payload entity.ReceiptPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode receipt payload: %w", err)
	}
	return &entity.Receipt{
		ID:                m.ID,
		TransactionID:     m.TransactionID,
		UserID:            m.UserID,
		ReceiptNumber:     m.ReceiptNumber,
		PaymentMethod:     entity.PaymentMethod(m.PaymentMethod),
		Status:            entity.TransactionStatus(m.Status),
		Total:             m.Total,
		ProviderPaymentID: m.ProviderPaymentID,
		ProviderReference: m.ProviderReference,
		Payload:           payload,
		IssuedAt:          m.IssuedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// Upsert inserts the receipt or overwrites the row that already holds its transaction id
func (r *ReceiptRepository) Upsert(ctx context.Context, receipt *entity.Receipt) error {
	payload, err := json.Marshal(receipt.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode receipt payload: %w", err)
	}

	m := &model.Receipt{
		TransactionID:     receipt.TransactionID,
		UserID:            receipt.UserID,
		ReceiptNumber:     receipt.ReceiptNumber,
		PaymentMethod:     string(receipt.PaymentMethod),
		Status:            string(receipt.Status),
		Total:             receipt.Total,
		ProviderPaymentID: receipt.ProviderPaymentID,
		ProviderReference: receipt.ProviderReference,
		Payload:           datatypes.JSON(payload),
		IssuedAt:          receipt.IssuedAt,
		CreatedAt:         receipt.CreatedAt,
		UpdatedAt:         receipt.UpdatedAt,
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "receipt_number", "payment_method", "status", "total",
			"provider_payment_id", "provider_reference", "payload", "issued_at", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		r.logger.Error("Failed to upsert receipt", map[string]any{
			"transaction_id": receipt.TransactionID,
			"receipt_number": receipt.ReceiptNumber,
			"error":          err.Error(),
		})
		return r.errorClassifier.ToDomain(err, errs.ErrReceiptNotFound)
	}

	// the conflict path does not return the existing id
	if m.ID == 0 {
		existing, err := r.GetByTransactionID(ctx, receipt.TransactionID)
		if err != nil {
			return err
		}
		receipt.ID = existing.ID
		return nil
	}
	receipt.ID = m.ID
	return nil
}

// GetByReceiptNumber retrieves a receipt snapshot
func (r *ReceiptRepository) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.Receipt, error) {
	return r.get(ctx, "receipt_number = ?", receiptNumber)
}

// GetByTransactionID retrieves the snapshot of a transaction
func (r *ReceiptRepository) GetByTransactionID(ctx context.Context, transactionID uint64) (*entity.Receipt, error) {
	return r.get(ctx, "transaction_id = ?", transactionID)
}

func (r *ReceiptRepository) get(ctx context.Context, query string, arg any) (*entity.Receipt, error) {
	var m model.Receipt
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrReceiptNotFound)
	}
	return r.modelToEntity(&m)
}

// CountByTransactionID returns how many receipt rows reference the transaction
func (r *ReceiptRepository) CountByTransactionID(ctx context.Context, transactionID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Receipt{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return 0, r.errorClassifier.ToDomain(err, errs.ErrReceiptNotFound)
	}
	return count, nil
}
