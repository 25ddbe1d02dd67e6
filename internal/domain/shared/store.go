package shared

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Key identifies a row by its natural business key, column name to value.
// Keys come from the source ERP's numbering scheme and are never generated
// by this engine.
type Key map[string]any

// String renders the key as "col=val, col=val" with deterministic column
// order, for use in error messages and duplicate detection.
func (k Key) String() string {
	cols := make([]string, 0, len(k))
	for col := range k {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("%s=%v", col, k[col]))
	}
	return strings.Join(parts, ", ")
}

// Record is implemented by every synchronized entity
type Record interface {
	// EntityName returns the entity name used in error messages
	EntityName() string
	// EntityKey returns the natural key of the record
	EntityKey() Key
	// Validate performs shape validation before any persistence attempt
	Validate() error
	// Stamp sets the engine-owned timestamps; created-at only on creation
	Stamp(now time.Time, created bool)
}

// EntityStore is the abstract storage capability the engine consumes:
// exists-by-key, get-by-key, insert, update plus the query support the read
// path needs. Implementations resolve the active transaction from ctx.
type EntityStore[T any] interface {
	Exists(ctx context.Context, key Key) (bool, error)
	Find(ctx context.Context, key Key) (*T, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, key Key) error
	Count(ctx context.Context, where Key) (int64, error)
	List(ctx context.Context, filter Filter) ([]T, int64, error)
}

// TxManager runs a function inside one storage transaction. Everything the
// function writes becomes visible atomically or not at all.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock is the abstract time capability; the engine never reads the wall
// clock directly so tests can freeze it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time {
	return time.Now()
}
