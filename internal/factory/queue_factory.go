package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	queuestore "github.com/keyurpatil06/phishlens/internal/adapters/queue"
	"github.com/keyurpatil06/phishlens/internal/config"
	"github.com/keyurpatil06/phishlens/internal/core"
)

// QueueFactory creates delivery-queue stores based on configuration
type QueueFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewQueueFactory creates a new queue factory
func NewQueueFactory(cfg *config.Config, logger *zap.Logger) *QueueFactory {
	return &QueueFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateQueueStore creates a queue store based on the configuration
func (f *QueueFactory) CreateQueueStore() (core.QueueStore, error) {
	storeType := f.cfg.GetString("queue.store")

	switch storeType {
	case "memory":
		return queuestore.NewMemoryStore(), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("queue.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return queuestore.NewSQLiteStore(sqlitePath, f.logger)
	default:
		return nil, fmt.Errorf("unsupported queue store: %s", storeType)
	}
}

// GetDrainInterval returns the configured drain interval
func (f *QueueFactory) GetDrainInterval() (time.Duration, error) {
	return f.cfg.GetDuration("queue.drain_interval")
}
