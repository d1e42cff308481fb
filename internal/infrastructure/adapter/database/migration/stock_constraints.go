package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"gorm.io/gorm"
)

// AddStockConstraints adds the check constraints that keep stock and sale
// quantities in range even if application code misbehaves
type AddStockConstraints struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAddStockConstraints creates a new migration instance
func NewAddStockConstraints(db *gorm.DB, logger coreport.Logger) *AddStockConstraints {
	return &AddStockConstraints{
		db:     db,
		logger: logger,
	}
}

type checkConstraint struct {
	table string
	name  string
	expr  string
}

var stockConstraints = []checkConstraint{
	{table: "items", name: "chk_items_stock_non_negative", expr: "stock >= 0"},
	{table: "items", name: "chk_items_price_non_negative", expr: "price >= 0"},
	{table: "transaction_lines", name: "chk_transaction_lines_quantity_positive", expr: "quantity >= 1"},
	{table: "transactions", name: "chk_transactions_total_non_negative", expr: "total >= 0"},
}

// Run executes the migration
func (m *AddStockConstraints) Run(ctx context.Context) error {
	m.logger.Info("Adding stock and quantity check constraints", nil)

	for _, c := range stockConstraints {
		exists, err := m.constraintExists(ctx, c.table, c.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := m.db.WithContext(ctx).Exec(
			"ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.expr + ")",
		).Error; err != nil {
			m.logger.Error("Failed to add check constraint", map[string]any{
				"table":      c.table,
				"constraint": c.name,
				"error":      err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Check constraints in place", map[string]any{
		"count": len(stockConstraints),
	})
	return nil
}

func (m *AddStockConstraints) constraintExists(ctx context.Context, table, name string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM information_schema.table_constraints
		WHERE table_schema = current_schema() AND table_name = ? AND constraint_name = ?
	`, table, name).Scan(&count).Error
	if err != nil {
		m.logger.Error("Failed to check constraint existence", map[string]any{
			"table":      table,
			"constraint": name,
			"error":      err.Error(),
		})
		return false, err
	}
	return count > 0, nil
}
