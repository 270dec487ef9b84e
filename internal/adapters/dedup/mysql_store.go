package dedup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the DedupRepository interface,
// for deployments where several triage hosts share one suppression list.
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLStore creates a new MySQL dedup store
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist. 320 covers the longest legal
	// address (64 local + '@' + 255 domain).
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS lead_dedup (
			address VARCHAR(320) PRIMARY KEY,
			outcome VARCHAR(16),
			last_seen TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_lead_dedup_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	store := &MySQLStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store, nil
}

// Seen reports whether the address has a live record
func (s *MySQLStore) Seen(ctx context.Context, address string) (bool, error) {
	var found int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1
		FROM lead_dedup
		WHERE address = ? AND expires_at > NOW()
	`, address).Scan(&found)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query dedup store: %w", err)
	}

	return true, nil
}

// Record stores a dedup entry, replacing any previous one
func (s *MySQLStore) Record(ctx context.Context, entry *core.DedupEntry) error {
	_, err := s.db.ExecContext(ctx, `
		REPLACE INTO lead_dedup (address, outcome, last_seen, expires_at)
		VALUES (?, ?, ?, ?)
	`, entry.Address, string(entry.Outcome), entry.LastSeen.UTC(), entry.ExpiresAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert dedup entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (s *MySQLStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM lead_dedup
		WHERE expires_at <= NOW()
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired dedup entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *MySQLStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up dedup store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (s *MySQLStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
