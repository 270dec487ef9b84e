package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the DedupRepository
// interface. Entries expire after their TTL; a background task sweeps them.
type MemoryStore struct {
	entries     map[string]*core.DedupEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryStore creates a new in-memory dedup store
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		entries:     make(map[string]*core.DedupEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store
}

// Seen reports whether the address has a live record
func (s *MemoryStore) Seen(ctx context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[address]
	if !ok {
		return false, nil
	}
	if time.Now().After(entry.ExpiresAt) {
		return false, nil
	}

	return true, nil
}

// Record stores a dedup entry, replacing any previous one
func (s *MemoryStore) Record(ctx context.Context, entry *core.DedupEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Address] = entry
	return nil
}

// Cleanup removes expired entries
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for address, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, address)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired dedup entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (s *MemoryStore) startCleanupTask() {
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

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}
