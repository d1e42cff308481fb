package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(t *entity.Transaction) (*model.Transaction, error) {
	payload, err := encodePayload(t.ProviderPayload)
	if err != nil {
		return nil, err
	}

	m := &model.Transaction{
		ID:                 t.ID,
		UserID:             t.UserID,
		Subtotal:           t.Subtotal,
		Tax:                t.Tax,
		Discount:           t.Discount,
		Total:              t.Total,
		PaymentMethod:      string(t.PaymentMethod),
		PaymentProvider:    t.PaymentProvider,
		Status:             string(t.Status),
		ReceiptNumber:      t.ReceiptNumber,
		ProviderCheckoutID: t.ProviderCheckoutID,
		ProviderPaymentID:  t.ProviderPaymentID,
		ProviderReference:  nullableString(t.ProviderReference),
		ProviderPayload:    payload,
		PaidAt:             t.PaidAt,
		StockDeductedAt:    t.StockDeductedAt,
		Notes:              t.Notes,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}

	m.Lines = make([]model.TransactionLine, 0, len(t.Lines))
	for _, line := range t.Lines {
		m.Lines = append(m.Lines, model.TransactionLine{
			ID:            line.ID,
			TransactionID: t.ID,
			ItemID:        line.ItemID,
			ItemName:      line.ItemName,
			SKU:           line.SKU,
			Quantity:      line.Quantity,
			Price:         line.Price,
			Subtotal:      line.Subtotal,
			Discount:      line.Discount,
			Tax:           line.Tax,
			CreatedAt:     t.CreatedAt,
		})
	}
	return m, nil
}

// modelToEntity converts a database model to a transaction entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	t := &entity.Transaction{
		ID:                 m.ID,
		UserID:             m.UserID,
		Subtotal:           m.Subtotal,
		Tax:                m.Tax,
		Discount:           m.Discount,
		Total:              m.Total,
		PaymentMethod:      entity.PaymentMethod(m.PaymentMethod),
		PaymentProvider:    m.PaymentProvider,
		Status:             entity.TransactionStatus(m.Status),
		ReceiptNumber:      m.ReceiptNumber,
		ProviderCheckoutID: m.ProviderCheckoutID,
		ProviderPaymentID:  m.ProviderPaymentID,
		ProviderPayload:    decodePayload(m.ProviderPayload),
		PaidAt:             m.PaidAt,
		StockDeductedAt:    m.StockDeductedAt,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.ProviderReference != nil {
		t.ProviderReference = *m.ProviderReference
	}

	t.Lines = make([]entity.TransactionLine, 0, len(m.Lines))
	for _, line := range m.Lines {
		t.Lines = append(t.Lines, entity.TransactionLine{
			ID:            line.ID,
			TransactionID: line.TransactionID,
			ItemID:        line.ItemID,
			ItemName:      line.ItemName,
			SKU:           line.SKU,
			Quantity:      line.Quantity,
			Price:         line.Price,
			Subtotal:      line.Subtotal,
			Discount:      line.Discount,
			Tax:           line.Tax,
			CreatedAt:     line.CreatedAt,
		})
	}
	return t
}

// Create saves a new transaction and its lines in one insert batch
func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"receipt_number": t.ReceiptNumber,
		"user_id":        t.UserID,
		"payment_method": t.PaymentMethod,
	})

	m, err := r.entityToModel(t)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate transaction reference detected", map[string]any{
				"receipt_number":     t.ReceiptNumber,
				"provider_reference": t.ProviderReference,
			})
		} else {
			r.logger.Error("Failed to create transaction", map[string]any{
				"receipt_number": t.ReceiptNumber,
				"user_id":        t.UserID,
				"error":          err.Error(),
			})
		}
		return r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}

	t.ID = m.ID
	for i := range t.Lines {
		t.Lines[i].ID = m.Lines[i].ID
		t.Lines[i].TransactionID = m.ID
		t.Lines[i].CreatedAt = m.Lines[i].CreatedAt
	}

	r.logger.Debug("Transaction created successfully", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
	})
	return nil
}

// Update writes the lifecycle columns; lines are never rewritten
func (r *TransactionRepository) Update(ctx context.Context, t *entity.Transaction) error {
	payload, err := encodePayload(t.ProviderPayload)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"status":               string(t.Status),
			"provider_checkout_id": t.ProviderCheckoutID,
			"provider_payment_id":  t.ProviderPaymentID,
			"provider_reference":   nullableString(t.ProviderReference),
			"provider_payload":     payload,
			"paid_at":              t.PaidAt,
			"stock_deducted_at":    t.StockDeductedAt,
			"notes":                t.Notes,
			"updated_at":           t.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": t.ID,
			"error":          result.Error.Error(),
		})
		return r.errorClassifier.ToDomain(result.Error, errs.ErrTransactionNotFound)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Transaction not found during update", map[string]any{
			"transaction_id": t.ID,
		})
		return errs.ErrTransactionNotFound
	}

	r.logger.Debug("Transaction updated successfully", map[string]any{
		"transaction_id": t.ID,
		"status":         t.Status,
	})
	return nil
}

// GetByID retrieves a transaction with its lines
func (r *TransactionRepository) GetByID(ctx context.Context, id uint64) (*entity.Transaction, error) {
	return r.get(r.db.WithContext(ctx), "id = ?", id)
}

// GetByIDForUpdate retrieves a transaction under a FOR UPDATE lock on its row
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Transaction, error) {
	db := r.db.WithContext(ctx).Clauses(clause.Locking{
		Strength: "UPDATE",
		Table:    clause.Table{Name: clause.CurrentTable},
	})
	return r.get(db, "id = ?", id)
}

// GetByReceiptNumber retrieves a transaction by its receipt number
func (r *TransactionRepository) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*entity.Transaction, error) {
	return r.get(r.db.WithContext(ctx), "receipt_number = ?", receiptNumber)
}

func (r *TransactionRepository) get(db *gorm.DB, query string, arg any) (*entity.Transaction, error) {
	var m model.Transaction
	err := db.
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		Where(query, arg).
		First(&m).Error
	if err != nil {
		if r.errorClassifier.IsLockError(err) {
			r.logger.Warn("Transaction row lock not obtained", map[string]any{
				"lookup": arg,
				"error":  err.Error(),
			})
		}
		return nil, r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}
	return r.modelToEntity(&m), nil
}

// ListPendingGateway returns ids above afterID of pending gateway transactions
// created before the cutoff
func (r *TransactionRepository) ListPendingGateway(ctx context.Context, createdBefore time.Time, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("status = ? AND payment_method = ? AND created_at <= ? AND id > ?",
			string(entity.StatusPending), string(entity.PaymentMethodGateway), createdBefore, afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Error("Failed to list pending gateway transactions", map[string]any{
			"created_before": createdBefore,
			"after_id":       afterID,
			"error":          err.Error(),
		})
		return nil, r.errorClassifier.ToDomain(err, errs.ErrTransactionNotFound)
	}
	return ids, nil
}

func encodePayload(record entity.PaymentRecord) (datatypes.JSON, error) {
	if record == nil {
		return nil, nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func decodePayload(raw datatypes.JSON) entity.PaymentRecord {
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return entity.NewPaymentRecord(decoded)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
