package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed batch IDs so a retried push from the
// ERP does not apply the same batch twice
type IdempotencyStore interface {
	// MarkProcessed marks a batch as processed with a TTL.
	// Returns true if the batch was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, batchID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a batch has already been processed
	IsProcessed(ctx context.Context, batchID string) (bool, error)

	// Clear drops the processed mark so the batch can be retried
	Clear(ctx context.Context, batchID string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for batch idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed batch IDs.
	// After this duration, the same batch ID is accepted again.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
