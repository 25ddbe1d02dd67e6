package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormStore is the GORM-backed EntityStore. Rows are addressed by their
// natural key columns, passed as column-to-value maps; the store never
// generates identifiers.
type GormStore[T any] struct {
	db           *gorm.DB
	sortFields   map[string]bool
	defaultSort  string
	searchColumn string
}

// StoreOption customizes a GormStore
type StoreOption[T any] func(*GormStore[T])

// WithSortFields whitelists the columns List may order by; the first
// argument is the fallback when the request names no valid column
func WithSortFields[T any](defaultSort string, fields ...string) StoreOption[T] {
	return func(s *GormStore[T]) {
		s.defaultSort = defaultSort
		s.sortFields = make(map[string]bool, len(fields))
		for _, f := range fields {
			s.sortFields[f] = true
		}
	}
}

// WithSearchColumn enables substring search on one column
func WithSearchColumn[T any](column string) StoreOption[T] {
	return func(s *GormStore[T]) {
		s.searchColumn = column
	}
}

// NewGormStore creates a store for one entity type
func NewGormStore[T any](db *gorm.DB, opts ...StoreOption[T]) *GormStore[T] {
	s := &GormStore[T]{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether a row with the given key exists
func (s *GormStore[T]) Exists(ctx context.Context, key shared.Key) (bool, error) {
	var count int64
	err := session(ctx, s.db).Model(new(T)).Where(map[string]any(key)).Count(&count).Error
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// Find returns the row with the given key
func (s *GormStore[T]) Find(ctx context.Context, key shared.Key) (*T, error) {
	var entity T
	err := session(ctx, s.db).Where(map[string]any(key)).First(&entity).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

// Insert creates a new row
func (s *GormStore[T]) Insert(ctx context.Context, entity *T) error {
	return mapError(session(ctx, s.db).Create(entity).Error)
}

// Update writes every column of an existing row
func (s *GormStore[T]) Update(ctx context.Context, entity *T) error {
	return mapError(session(ctx, s.db).Save(entity).Error)
}

// Delete removes every row matching the key, which may be partial.
// Deleting a key that matches nothing is not an error.
func (s *GormStore[T]) Delete(ctx context.Context, key shared.Key) error {
	return mapError(session(ctx, s.db).Where(map[string]any(key)).Delete(new(T)).Error)
}

// Count returns the number of rows matching the key, which may be partial
func (s *GormStore[T]) Count(ctx context.Context, where shared.Key) (int64, error) {
	var count int64
	query := session(ctx, s.db).Model(new(T))
	if len(where) > 0 {
		query = query.Where(map[string]any(where))
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// List returns one page of rows plus the unpaged total
func (s *GormStore[T]) List(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	filter.Normalize()

	query := session(ctx, s.db).Model(new(T))
	if len(filter.Filters) > 0 {
		query = query.Where(filter.Filters)
	}
	if s.searchColumn != "" && filter.Search != "" {
		query = query.Where(s.searchColumn+" LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, mapError(err)
	}

	var rows []T
	err := query.Order(s.orderClause(filter)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, mapError(err)
	}
	return rows, total, nil
}

// orderClause builds the ORDER BY column and direction from the filter,
// restricted to the whitelisted sort columns
func (s *GormStore[T]) orderClause(filter shared.Filter) string {
	column := s.defaultSort
	if filter.OrderBy != "" && s.sortFields[filter.OrderBy] {
		column = filter.OrderBy
	}
	if column == "" {
		column = "created_at"
	}

	dir := "ASC"
	if strings.EqualFold(filter.OrderDir, "desc") {
		dir = "DESC"
	}
	return column + " " + dir
}

// mapError translates storage failures into the domain error taxonomy.
// Domain errors produced inside a transaction pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeDuplicateKey, "a record with this key already exists")
	}
	if isTransient(err) {
		return shared.NewTransientError()
	}
	return err
}

// isTransient recognizes serialization failures and deadlocks, which
// are safe to retry once validation has already passed
func isTransient(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01":
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01")
}
