package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/intake-pipeline/internal/adapters/cache"
	"github.com/mikey/intake-pipeline/internal/config"
	"github.com/mikey/intake-pipeline/internal/ports"
	"go.uber.org/zap"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration
func (f *CacheFactory) CreateCacheRepository() (ports.CacheRepository, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// GetTTLHours returns the configured entry lifetime in hours
func (f *CacheFactory) GetTTLHours() (int, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return 0, err
	}
	return cacheCfg.TTLHours(), nil
}

// GetSweepSchedule returns the configured sweeper schedule
func (f *CacheFactory) GetSweepSchedule() string {
	return f.cfg.GetString("cache.sweep_schedule")
}
