package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific advanced indexes
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

type indexStatement struct {
	name string
	sql  string
}

var advancedIndexes = []indexStatement{
	{
		// the sweeper pages pending gateway sales by id
		name: "idx_transactions_pending_gateway",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_pending_gateway
			ON transactions (id, created_at)
			WHERE status = 'pending' AND payment_method = 'maya_checkout'`,
	},
	{
		name: "idx_transactions_created_at_brin",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin
			ON transactions USING BRIN (created_at)
			WITH (pages_per_range = 32)`,
	},
	{
		name: "idx_transaction_lines_transaction_item",
		sql: `CREATE INDEX IF NOT EXISTS idx_transaction_lines_transaction_item
			ON transaction_lines (transaction_id, item_id)`,
	},
	{
		name: "idx_outbox_messages_pending",
		sql: `CREATE INDEX IF NOT EXISTS idx_outbox_messages_pending
			ON outbox_messages (id)
			WHERE status = 'PENDING'`,
	},
	{
		name: "idx_items_active_category",
		sql: `CREATE INDEX IF NOT EXISTS idx_items_active_category
			ON items (category, name)
			WHERE is_active AND deleted_at IS NULL`,
	},
}

// CreateAdvancedIndexes creates partial and BRIN indexes used by the hot queries
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	for _, idx := range advancedIndexes {
		if err := m.db.WithContext(ctx).Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", map[string]any{
		"count": len(advancedIndexes),
	})
	return nil
}

// CreatePerformanceTweaks applies storage settings; failures are only logged
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	tweaks := []indexStatement{
		// stock rows are rewritten on every sale
		{name: "items_fillfactor", sql: `ALTER TABLE items SET (fillfactor = 80)`},
		{name: "transactions_fillfactor", sql: `ALTER TABLE transactions SET (fillfactor = 90)`},
		{name: "transactions_status_statistics", sql: `ALTER TABLE transactions ALTER COLUMN status SET STATISTICS 500`},
	}

	for _, tweak := range tweaks {
		if err := m.db.WithContext(ctx).Exec(tweak.sql).Error; err != nil {
			m.logger.Warn("Failed to apply performance tweak", map[string]any{
				"tweak": tweak.name,
				"error": err.Error(),
			})
		}
	}
}
