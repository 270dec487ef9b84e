package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/premql/lead-triage/internal/adapters/dedup"
	"github.com/premql/lead-triage/internal/config"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// DedupFactory creates dedup repositories based on configuration
type DedupFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDedupFactory creates a new dedup factory
func NewDedupFactory(cfg *config.Config, logger *zap.Logger) *DedupFactory {
	return &DedupFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDedupRepository creates a dedup repository based on the configuration.
// When cross-run suppression is disabled it returns nil and duplicates are
// only tracked within a single run.
func (f *DedupFactory) CreateDedupRepository() (core.DedupRepository, error) {
	if !f.cfg.GetBool("dedup.cross_run") {
		return nil, nil
	}

	dedupType := f.cfg.GetString("dedup.type")
	cleanupFreq, err := f.cfg.GetDuration("dedup.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid dedup cleanup frequency: %w", err)
	}
	// The stores feed this straight into time.NewTicker.
	if cleanupFreq <= 0 {
		return nil, fmt.Errorf("dedup cleanup frequency must be positive, got %s", cleanupFreq)
	}

	switch dedupType {
	case "memory":
		return dedup.NewMemoryStore(f.logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("dedup.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return dedup.NewSQLiteStore(sqlitePath, f.logger, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("dedup.mysql_dsn")
		return dedup.NewMySQLStore(mysqlDSN, f.logger, cleanupFreq)
	case "redis":
		return dedup.NewRedisStore(
			f.cfg.GetString("dedup.redis_address"),
			f.cfg.GetString("dedup.redis_password"),
			f.cfg.GetInt("dedup.redis_db"),
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported dedup type: %s", dedupType)
	}
}

// GetDedupTTL returns the configured cross-run suppression window
func (f *DedupFactory) GetDedupTTL() (time.Duration, error) {
	return f.cfg.GetDuration("dedup.ttl")
}
