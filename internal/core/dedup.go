package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Deduplicator tracks the addresses seen in the current run. It is
// initialized empty at batch start, grows monotonically, and is discarded
// at batch end. An optional DedupRepository extends suppression across
// runs; store errors degrade to per-run behavior instead of failing leads.
//
// CheckAndRecord is mutex-guarded so the pipeline may later parallelize
// I/O-bound country lookups without two leads sharing an address both
// counting as first occurrence.
type Deduplicator struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	store  DedupRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewDeduplicator creates a run-scoped deduplicator. store may be nil for
// pure per-run scope; ttl governs how long cross-run records live.
func NewDeduplicator(store DedupRepository, ttl time.Duration, logger *zap.Logger) *Deduplicator {
	return &Deduplicator{
		seen:   make(map[string]struct{}),
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// CheckAndRecord reports whether this is the first time the address has
// been seen, recording it regardless. Must be called exactly once per lead.
// The verdict outcome for first occurrences is recorded separately via
// RecordOutcome once classification is done.
func (d *Deduplicator) CheckAndRecord(ctx context.Context, address string) bool {
	d.mu.Lock()
	_, inRun := d.seen[address]
	d.seen[address] = struct{}{}
	d.mu.Unlock()

	if inRun {
		return false
	}

	if d.store != nil {
		known, err := d.store.Seen(ctx, address)
		if err != nil {
			d.logger.Warn("Dedup store lookup failed, treating address as new",
				zap.String("address", address),
				zap.Error(err))
			return true
		}
		if known {
			return false
		}
	}

	return true
}

// RecordOutcome persists a first-occurrence verdict to the cross-run store.
// No-op without a store; failures are logged and never surface to the
// pipeline.
func (d *Deduplicator) RecordOutcome(ctx context.Context, verdict *Verdict) {
	if d.store == nil || verdict.Reason == ReasonDuplicateAddress {
		return
	}

	now := time.Now()
	entry := &DedupEntry{
		Address:   verdict.Lead.Address,
		Outcome:   verdict.Outcome,
		LastSeen:  now,
		ExpiresAt: now.Add(d.ttl),
	}
	if err := d.store.Record(ctx, entry); err != nil {
		d.logger.Error("Failed to record dedup entry",
			zap.String("address", entry.Address),
			zap.Error(err))
	}
}

// SeenCount returns how many distinct addresses this run has touched.
func (d *Deduplicator) SeenCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
