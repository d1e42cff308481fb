package repository

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository implements persistence.ItemRepository using GORM
type ItemRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewItemRepository creates a new ItemRepository instance
func NewItemRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *ItemRepository {
	return &ItemRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *ItemRepository) modelToEntity(m *model.Item) *entity.Item {
	return &entity.Item{
		ID:          m.ID,
		Name:        m.Name,
		SKU:         m.SKU,
		Description: m.Description,
		Category:    m.Category,
		Unit:        m.Unit,
		Barcode:     m.Barcode,
		Price:       m.Price,
		Cost:        m.Cost,
		Stock:       m.Stock,
		MinStock:    m.MinStock,
		IsActive:    m.IsActive,
		IsTaxable:   m.IsTaxable,
		TaxRate:     m.TaxRate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *ItemRepository) entityToModel(item *entity.Item) *model.Item {
	return &model.Item{
		ID:          item.ID,
		Name:        item.Name,
		SKU:         item.SKU,
		Description: item.Description,
		Category:    item.Category,
		Unit:        item.Unit,
		Barcode:     item.Barcode,
		Price:       item.Price,
		Cost:        item.Cost,
		Stock:       item.Stock,
		MinStock:    item.MinStock,
		IsActive:    item.IsActive,
		IsTaxable:   item.IsTaxable,
		TaxRate:     item.TaxRate,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// GetByID retrieves an item without locking
func (r *ItemRepository) GetByID(ctx context.Context, id uint64) (*entity.Item, error) {
	var m model.Item
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrItemNotFound)
	}
	return r.modelToEntity(&m), nil
}

// GetForUpdate retrieves an item under a FOR UPDATE row lock
func (r *ItemRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Item, error) {
	var m model.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		if r.errorClassifier.IsLockError(err) {
			r.logger.Warn("Item row lock not obtained", map[string]any{
				"item_id": id,
				"error":   err.Error(),
			})
		}
		return nil, r.errorClassifier.ToDomain(err, errs.ErrItemNotFound)
	}
	return r.modelToEntity(&m), nil
}

// ListActiveForUpdate locks the active items among ids in id order so that
// concurrent checkouts over overlapping carts cannot deadlock
func (r *ItemRepository) ListActiveForUpdate(ctx context.Context, ids []uint64) ([]*entity.Item, error) {
	if len(ids) == 0 {
		return []*entity.Item{}, nil
	}

	var models []model.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		r.logger.Error("Failed to lock items", map[string]any{
			"item_ids": ids,
			"error":    err.Error(),
		})
		return nil, r.errorClassifier.ToDomain(err, errs.ErrItemNotFound)
	}

	items := make([]*entity.Item, 0, len(models))
	for i := range models {
		items = append(items, r.modelToEntity(&models[i]))
	}
	return items, nil
}

// UpdateStock writes a new stock count
func (r *ItemRepository) UpdateStock(ctx context.Context, id uint64, stock int) error {
	if stock < 0 {
		return errs.ErrConstraintViolation
	}

	result := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      stock,
			"updated_at": r.timeProvider.Now(),
		})
	if result.Error != nil {
		r.logger.Error("Failed to update item stock", map[string]any{
			"item_id": id,
			"stock":   stock,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.ToDomain(result.Error, errs.ErrItemNotFound)
	}
	if result.RowsAffected == 0 {
		return errs.ErrItemNotFound
	}
	return nil
}

// Create inserts a catalog item
func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	now := r.timeProvider.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	m := r.entityToModel(item)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to create item", map[string]any{
			"sku":   item.SKU,
			"error": err.Error(),
		})
		return r.errorClassifier.ToDomain(err, errs.ErrItemNotFound)
	}
	item.ID = m.ID
	return nil
}
