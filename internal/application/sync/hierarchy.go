package sync

import (
	"context"

	"github.com/erpsync/backend/internal/domain/shared"
)

// ExistsFunc answers whether a row with the given key exists
type ExistsFunc func(ctx context.Context, key shared.Key) (bool, error)

// ParentRef declares one referential dependency of an entity: which
// parent entity it points at and how to extract the parent key from a
// record. Optional references are skipped when Key reports no value.
type ParentRef[T any] struct {
	Entity string
	Key    func(record *T) (shared.Key, bool)
	Exists ExistsFunc
}

// RequiredRef builds a ParentRef for a reference that is always present
func RequiredRef[T any](entity string, key func(record *T) shared.Key, exists ExistsFunc) ParentRef[T] {
	return ParentRef[T]{
		Entity: entity,
		Key: func(record *T) (shared.Key, bool) {
			return key(record), true
		},
		Exists: exists,
	}
}

// OptionalRef builds a ParentRef for a reference the record may omit
func OptionalRef[T any](entity string, key func(record *T) (shared.Key, bool), exists ExistsFunc) ParentRef[T] {
	return ParentRef[T]{Entity: entity, Key: key, Exists: exists}
}

// ValidateParents checks every declared reference of one record against
// current storage and returns the complete list of missing parents, so
// a record with several broken references reports all of them in one
// round trip. Storage failures abort the scan.
func ValidateParents[T any](ctx context.Context, record *T, refs []ParentRef[T]) ([]*shared.DomainError, error) {
	var missing []*shared.DomainError
	for _, ref := range refs {
		key, present := ref.Key(record)
		if !present {
			continue
		}
		found, err := ref.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			missing = append(missing, shared.NewMissingParentError(ref.Entity, key))
		}
	}
	return missing, nil
}

// StoreExists adapts an EntityStore into an ExistsFunc for ParentRef wiring
func StoreExists[T any](store shared.EntityStore[T]) ExistsFunc {
	return func(ctx context.Context, key shared.Key) (bool, error) {
		return store.Exists(ctx, key)
	}
}
