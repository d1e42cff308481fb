package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"gorm.io/gorm"
)

// poolSaturation is the in-use share of max_open at which the monitor warns
const poolSaturation = 0.8

// ConnectionPoolMonitor samples sql.DB stats into the pool gauges
type ConnectionPoolMonitor struct {
	db       *gorm.DB
	logger   coreport.Logger
	metrics  coreport.Metrics
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewConnectionPoolMonitor creates a new connection pool monitor
func NewConnectionPoolMonitor(db *gorm.DB, logger coreport.Logger, metrics coreport.Metrics) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		db:       db,
		logger:   logger,
		metrics:  metrics,
		stopChan: make(chan struct{}),
	}
}

// Start takes one sample immediately, then one per interval until Stop
func (m *ConnectionPoolMonitor) Start(interval time.Duration) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	m.sample(sqlDB.Stats())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sample(sqlDB.Stats())
			case <-m.stopChan:
				return
			}
		}
	}()
	return nil
}

// Stop ends sampling; safe to call more than once
func (m *ConnectionPoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *ConnectionPoolMonitor) sample(stats sql.DBStats) {
	if m.metrics != nil {
		m.metrics.SetDBPoolStats(stats.InUse, stats.OpenConnections)
	}

	if stats.MaxOpenConnections > 0 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*poolSaturation {
		m.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"idle":       stats.Idle,
			"wait_count": stats.WaitCount,
			"wait_time":  stats.WaitDuration.String(),
		})
	}
}
