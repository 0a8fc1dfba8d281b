package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/intake-pipeline/internal/adapters/records"
	"github.com/mikey/intake-pipeline/internal/config"
	"github.com/mikey/intake-pipeline/internal/core"
	"go.uber.org/zap"
)

// RecordFactory creates the durable record store based on configuration
type RecordFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRecordFactory creates a new record factory
func NewRecordFactory(cfg *config.Config, logger *zap.Logger) *RecordFactory {
	return &RecordFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRecordStore creates the configured record store. It returns a nil
// store for type none.
func (f *RecordFactory) CreateRecordStore() (core.RecordStore, error) {
	recCfg := f.cfg.GetRecords()

	switch recCfg.Type {
	case "", "none":
		f.logger.Info("Durable record store disabled")
		return nil, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(recCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return records.NewSQLiteStore(recCfg.SQLitePath, f.logger)
	case "mysql":
		return records.NewMySQLStore(recCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported record store type: %s", recCfg.Type)
	}
}
