package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/premql/lead-triage/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "lead_dedup:"

// RedisStore is a Redis implementation of the DedupRepository interface.
// Expiry is delegated to Redis key TTLs, so Cleanup is a no-op.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a new Redis dedup store
func NewRedisStore(address, password string, db int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

// Seen reports whether the address has a live record
func (s *RedisStore) Seen(ctx context.Context, address string) (bool, error) {
	count, err := s.client.Exists(ctx, redisKeyPrefix+address).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query dedup store: %w", err)
	}
	return count > 0, nil
}

// Record stores a dedup entry, replacing any previous one
func (s *RedisStore) Record(ctx context.Context, entry *core.DedupEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	err := s.client.Set(ctx, redisKeyPrefix+entry.Address, string(entry.Outcome), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to insert dedup entry: %w", err)
	}

	return nil
}

// Cleanup is a no-op; Redis expires keys natively
func (s *RedisStore) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (s *RedisStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
