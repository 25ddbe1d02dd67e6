package catalog

import (
	"context"
	"sort"
	"time"

	appsync "github.com/erpsync/backend/internal/application/sync"
	"github.com/erpsync/backend/internal/domain/shared"
)

// memStore is a map-backed EntityStore for service tests
type memStore[T any, PT appsync.Syncable[T]] struct {
	rows    map[string]*T
	countFn func(where shared.Key) int64
}

func newMemStore[T any, PT appsync.Syncable[T]]() *memStore[T, PT] {
	return &memStore[T, PT]{rows: make(map[string]*T)}
}

func (s *memStore[T, PT]) put(entity *T) {
	cp := *entity
	s.rows[PT(entity).EntityKey().String()] = &cp
}

func (s *memStore[T, PT]) Exists(_ context.Context, key shared.Key) (bool, error) {
	_, ok := s.rows[key.String()]
	return ok, nil
}

func (s *memStore[T, PT]) Find(_ context.Context, key shared.Key) (*T, error) {
	row, ok := s.rows[key.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *memStore[T, PT]) Insert(_ context.Context, entity *T) error {
	s.put(entity)
	return nil
}

func (s *memStore[T, PT]) Update(_ context.Context, entity *T) error {
	s.put(entity)
	return nil
}

func (s *memStore[T, PT]) Delete(_ context.Context, key shared.Key) error {
	delete(s.rows, key.String())
	return nil
}

func (s *memStore[T, PT]) Count(_ context.Context, where shared.Key) (int64, error) {
	if s.countFn != nil {
		return s.countFn(where), nil
	}
	return int64(len(s.rows)), nil
}

// List honors filter.Filters by matching them against each row's
// natural key columns, and pages the matches the way the real store does
func (s *memStore[T, PT]) List(_ context.Context, filter shared.Filter) ([]T, int64, error) {
	keys := make([]string, 0, len(s.rows))
	for k, row := range s.rows {
		if keyMatches(PT(row).EntityKey(), shared.Key(filter.Filters)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	total := int64(len(keys))

	if filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start < 0 {
			start = 0
		}
		if start > len(keys) {
			start = len(keys)
		}
		end := start + filter.PageSize
		if end > len(keys) {
			end = len(keys)
		}
		keys = keys[start:end]
	}

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, *s.rows[k])
	}
	return out, total, nil
}

func keyMatches(key, where shared.Key) bool {
	for col, want := range where {
		if key[col] != want {
			return false
		}
	}
	return true
}

// passTx runs fn directly; service tests assert behavior, not rollback
type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
