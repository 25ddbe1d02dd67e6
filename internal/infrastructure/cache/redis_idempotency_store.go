package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/erpsync/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "sync:batch:"

// RedisIdempotencyStore implements IdempotencyStore on Redis, for
// deployments where several sync instances must share batch state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
func NewRedisIdempotencyStore(cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}, nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing Redis
// client, useful for testing or when sharing a client across components
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed marks a batch as processed with a TTL.
// Returns true if the batch was newly marked, false if it was already
// processed. SETNX makes the check-and-mark atomic across instances.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, batchID string, ttl time.Duration) (bool, error) {
	key := s.keyPrefix + batchID

	result, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark batch as processed: %w", err)
	}
	return result, nil
}

// IsProcessed checks if a batch has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, batchID string) (bool, error) {
	key := s.keyPrefix + batchID

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if batch is processed: %w", err)
	}
	return exists > 0, nil
}

// Clear drops the processed mark so the batch can be retried
func (s *RedisIdempotencyStore) Clear(ctx context.Context, batchID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+batchID).Err(); err != nil {
		return fmt.Errorf("failed to clear batch mark: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
