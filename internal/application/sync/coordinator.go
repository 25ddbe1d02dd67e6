// Package sync implements the batch upsert engine shared by every
// synchronized entity: shape validation, in-batch duplicate detection,
// referential checks against current storage and an all-or-nothing
// transactional apply keyed on natural business keys.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Syncable constrains the pointer type of a synchronized entity: it
// carries the natural key, validates its own shape and can absorb the
// non-key fields of an incoming record.
type Syncable[T any] interface {
	*T
	shared.Record
	ApplyFrom(src *T)
}

// Coordinator drives batch upserts for one entity type. Validation runs
// in phases and each phase collects every violation before giving up,
// so the caller can fix the whole payload in one round trip. The apply
// phase is a single transaction: the batch lands whole or not at all.
type Coordinator[T any, PT Syncable[T]] struct {
	store   shared.EntityStore[T]
	tx      shared.TxManager
	clock   shared.Clock
	parents []ParentRef[T]
	logger  *zap.Logger
}

// NewCoordinator creates a coordinator for one entity type
func NewCoordinator[T any, PT Syncable[T]](
	store shared.EntityStore[T],
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
	parents ...ParentRef[T],
) *Coordinator[T, PT] {
	return &Coordinator[T, PT]{
		store:   store,
		tx:      tx,
		clock:   clock,
		parents: parents,
		logger:  logger,
	}
}

// Upsert applies one batch. Items already present (by natural key) are
// updated in place, new items are inserted. Resubmitting an identical
// batch is legal and succeeds; only updated-at moves forward.
func (c *Coordinator[T, PT]) Upsert(ctx context.Context, items []PT) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("batch cannot be empty")
	}

	if err := c.validateShape(items); err != nil {
		return nil, err
	}
	if err := c.validateParents(ctx, items); err != nil {
		return nil, err
	}

	result, err := c.apply(ctx, items)
	if err != nil && shared.IsCode(err, shared.CodeTransient) {
		// Validation already passed; retrying the write alone is safe.
		c.logger.Warn("transient storage failure, retrying batch",
			zap.String("entity", PT(new(T)).EntityName()),
			zap.Int("batch_size", len(items)))
		result, err = c.apply(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("batch applied",
		zap.String("entity", PT(new(T)).EntityName()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return result, nil
}

// validateShape runs per-item validation and in-batch duplicate
// detection, collecting every violation.
func (c *Coordinator[T, PT]) validateShape(items []PT) error {
	batchErr := &shared.BatchError{}
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		if err := item.Validate(); err != nil {
			batchErr.Add(i, asDomainError(err))
			continue
		}
		key := item.EntityKey().String()
		if _, dup := seen[key]; dup {
			batchErr.Add(i, shared.NewDuplicateKeyError(item.EntityName(), item.EntityKey()))
			continue
		}
		seen[key] = struct{}{}
	}

	if batchErr.HasErrors() {
		return batchErr
	}
	return nil
}

// validateParents checks every item's declared references against
// current storage, collecting every missing parent.
func (c *Coordinator[T, PT]) validateParents(ctx context.Context, items []PT) error {
	if len(c.parents) == 0 {
		return nil
	}

	batchErr := &shared.BatchError{}
	for i, item := range items {
		missing, err := ValidateParents(ctx, (*T)(item), c.parents)
		if err != nil {
			return err
		}
		for _, violation := range missing {
			batchErr.Add(i, violation)
		}
	}

	if batchErr.HasErrors() {
		return batchErr
	}
	return nil
}

func (c *Coordinator[T, PT]) apply(ctx context.Context, items []PT) (*BatchResult, error) {
	result := &BatchResult{Items: make([]UpsertOutcome, 0, len(items))}

	err := c.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := c.clock.Now()
		for i, item := range items {
			created, err := ApplyOne(ctx, c.store, now, item)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			result.Items = append(result.Items, UpsertOutcome{Index: i, Key: item.EntityKey().String(), Created: created})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyOne upserts a single record by its natural key, stamping the
// engine-owned timestamps. It must run inside an open transaction;
// aggregate services use it to write several entity types atomically.
func ApplyOne[T any, PT Syncable[T]](ctx context.Context, store shared.EntityStore[T], now time.Time, item PT) (created bool, err error) {
	existing, err := store.Find(ctx, item.EntityKey())
	switch {
	case err == nil:
		target := PT(existing)
		target.ApplyFrom((*T)(item))
		target.Stamp(now, false)
		return false, store.Update(ctx, existing)
	case shared.IsCode(err, shared.CodeNotFound):
		item.Stamp(now, true)
		return true, store.Insert(ctx, (*T)(item))
	default:
		return false, err
	}
}

func asDomainError(err error) *shared.DomainError {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	return shared.NewPersistenceError()
}
