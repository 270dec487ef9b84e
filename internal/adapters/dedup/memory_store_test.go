package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/premql/lead-triage/internal/core"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	t.Cleanup(store.Stop)
	return store
}

func TestMemoryStoreSeen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "a@school.edu")
	require.NoError(t, err)
	assert.False(t, seen)

	now := time.Now()
	require.NoError(t, store.Record(ctx, &core.DedupEntry{
		Address:   "a@school.edu",
		Outcome:   core.OutcomeValid,
		LastSeen:  now,
		ExpiresAt: now.Add(time.Hour),
	}))

	seen, err = store.Seen(ctx, "a@school.edu")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryStoreExpiredEntryIsNotSeen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Record(ctx, &core.DedupEntry{
		Address:   "a@school.edu",
		Outcome:   core.OutcomeReview,
		LastSeen:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}))

	seen, err := store.Seen(ctx, "a@school.edu")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryStoreCleanup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Record(ctx, &core.DedupEntry{
		Address:   "expired@school.edu",
		ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, store.Record(ctx, &core.DedupEntry{
		Address:   "live@school.edu",
		ExpiresAt: now.Add(time.Hour),
	}))

	require.NoError(t, store.Cleanup(ctx))

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.NotContains(t, store.entries, "expired@school.edu")
	assert.Contains(t, store.entries, "live@school.edu")
}

func TestMemoryStoreRecordReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Record(ctx, &core.DedupEntry{
		Address:   "a@school.edu",
		Outcome:   core.OutcomeReview,
		ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, store.Record(ctx, &core.DedupEntry{
		Address:   "a@school.edu",
		Outcome:   core.OutcomeValid,
		ExpiresAt: now.Add(time.Hour),
	}))

	seen, err := store.Seen(ctx, "a@school.edu")
	require.NoError(t, err)
	assert.True(t, seen)
}
