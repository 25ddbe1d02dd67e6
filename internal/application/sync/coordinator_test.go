package sync

import (
	"context"
	"testing"
	"time"

	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a map-backed EntityStore for exercising the coordinator
// without a database.
type memStore[T any, PT Syncable[T]] struct {
	rows         map[string]*T
	inserts      int
	failAtInsert int
}

func newMemStore[T any, PT Syncable[T]]() *memStore[T, PT] {
	return &memStore[T, PT]{rows: make(map[string]*T)}
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
	s.inserts++
	if s.failAtInsert > 0 && s.inserts >= s.failAtInsert {
		return shared.NewPersistenceError()
	}
	cp := *entity
	s.rows[PT(entity).EntityKey().String()] = &cp
	return nil
}

func (s *memStore[T, PT]) Update(_ context.Context, entity *T) error {
	cp := *entity
	s.rows[PT(entity).EntityKey().String()] = &cp
	return nil
}

func (s *memStore[T, PT]) Delete(_ context.Context, key shared.Key) error {
	delete(s.rows, key.String())
	return nil
}

func (s *memStore[T, PT]) Count(_ context.Context, _ shared.Key) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *memStore[T, PT]) List(_ context.Context, _ shared.Filter) ([]T, int64, error) {
	out := make([]T, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (s *memStore[T, PT]) snapshot() map[string]*T {
	snap := make(map[string]*T, len(s.rows))
	for k, v := range s.rows {
		cp := *v
		snap[k] = &cp
	}
	return snap
}

// fakeTx restores the store snapshot when fn fails, mimicking rollback.
// It can also inject transient failures before fn runs.
type fakeTx struct {
	snapshot   func() any
	restore    func(any)
	transients int
	runs       int
}

func (t *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.runs++
	if t.transients > 0 {
		t.transients--
		return shared.NewTransientError()
	}
	snap := t.snapshot()
	if err := fn(ctx); err != nil {
		t.restore(snap)
		return err
	}
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func deptFixture() (*memStore[catalog.Department, *catalog.Department], *fakeTx, *Coordinator[catalog.Department, *catalog.Department]) {
	store := newMemStore[catalog.Department]()
	tx := &fakeTx{
		snapshot: func() any { return store.snapshot() },
		restore:  func(s any) { store.rows = s.(map[string]*catalog.Department) },
	}
	coord := NewCoordinator[catalog.Department](
		store, tx, fixedClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}, zap.NewNop())
	return store, tx, coord
}

func TestUpsertRejectsEmptyBatch(t *testing.T) {
	_, _, coord := deptFixture()

	_, err := coord.Upsert(context.Background(), nil)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestUpsertCreatesAndUpdates(t *testing.T) {
	store, _, coord := deptFixture()
	ctx := context.Background()

	result, err := coord.Upsert(ctx, []*catalog.Department{
		{Number: 1, Description: "Textiles"},
		{Number: 2, Description: "Shoes"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)

	result, err = coord.Upsert(ctx, []*catalog.Department{
		{Number: 1, Description: "Textiles and fabrics"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	row, err := store.Find(ctx, shared.Key{"numdpto": 1})
	require.NoError(t, err)
	assert.Equal(t, "Textiles and fabrics", row.Description)
}

func TestUpsertIdempotentResubmit(t *testing.T) {
	store, _, coord := deptFixture()
	ctx := context.Background()

	batch := []*catalog.Department{{Number: 1, Description: "Textiles"}}
	_, err := coord.Upsert(ctx, batch)
	require.NoError(t, err)

	first, err := store.Find(ctx, shared.Key{"numdpto": 1})
	require.NoError(t, err)

	result, err := coord.Upsert(ctx, []*catalog.Department{{Number: 1, Description: "Textiles"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	second, err := store.Find(ctx, shared.Key{"numdpto": 1})
	require.NoError(t, err)
	assert.Equal(t, first.GetCreatedAt(), second.GetCreatedAt())
}

func TestUpsertCollectsEveryShapeViolation(t *testing.T) {
	_, _, coord := deptFixture()

	_, err := coord.Upsert(context.Background(), []*catalog.Department{
		{Number: 0, Description: "Bad number"},
		{Number: 1, Description: "Fine"},
		{Number: 1, Description: "Duplicate of item 2"},
		{Number: 2},
	})

	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Items, 3)
	assert.Equal(t, 0, batchErr.Items[0].Index)
	assert.Equal(t, 2, batchErr.Items[1].Index)
	assert.Equal(t, shared.CodeDuplicateKey, batchErr.Items[1].Err.Code)
	assert.Equal(t, 3, batchErr.Items[2].Index)
	assert.Contains(t, batchErr.Items[1].Error(), "item 3:")
}

func TestUpsertAllOrNothing(t *testing.T) {
	store, _, coord := deptFixture()
	store.failAtInsert = 2

	_, err := coord.Upsert(context.Background(), []*catalog.Department{
		{Number: 1, Description: "Textiles"},
		{Number: 2, Description: "Shoes"},
	})
	require.Error(t, err)

	// rollback undid the first insert too
	assert.Empty(t, store.rows)
}

func TestUpsertRetriesTransientOnce(t *testing.T) {
	store, tx, coord := deptFixture()
	tx.transients = 1

	result, err := coord.Upsert(context.Background(), []*catalog.Department{
		{Number: 1, Description: "Textiles"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, tx.runs)
	assert.Len(t, store.rows, 1)
}

func TestUpsertGivesUpAfterSecondTransient(t *testing.T) {
	_, tx, coord := deptFixture()
	tx.transients = 2

	_, err := coord.Upsert(context.Background(), []*catalog.Department{
		{Number: 1, Description: "Textiles"},
	})
	assert.True(t, shared.IsCode(err, shared.CodeTransient))
	assert.Equal(t, 2, tx.runs)
}

func TestUpsertChecksParentsBeforeWriting(t *testing.T) {
	deptStore := newMemStore[catalog.Department]()
	sectionStore := newMemStore[catalog.Section]()
	tx := &fakeTx{
		snapshot: func() any { return sectionStore.snapshot() },
		restore:  func(s any) { sectionStore.rows = s.(map[string]*catalog.Section) },
	}
	clock := fixedClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}

	coord := NewCoordinator[catalog.Section](
		sectionStore, tx, clock, zap.NewNop(),
		RequiredRef("Department",
			func(s *catalog.Section) shared.Key { return s.DepartmentKey() },
			StoreExists[catalog.Department](deptStore)))

	ctx := context.Background()
	deptStore.rows["numdpto=1"] = &catalog.Department{Number: 1, Description: "Textiles"}

	_, err := coord.Upsert(ctx, []*catalog.Section{
		{DepartmentNumber: 1, Number: 1, Description: "Shirts"},
		{DepartmentNumber: 9, Number: 1, Description: "Orphan"},
	})

	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Items, 1)
	assert.Equal(t, 1, batchErr.Items[0].Index)
	assert.Contains(t, batchErr.Items[0].Err.Message, "referenced Department (numdpto=9) does not exist")

	// the valid item must not have been written either
	assert.Empty(t, sectionStore.rows)
	assert.Equal(t, 0, tx.runs)
}

func TestUpsertReportsEveryMissingParent(t *testing.T) {
	taxStore := newMemStore[catalog.Tax]()
	deptStore := newMemStore[catalog.Department]()
	articleStore := newMemStore[catalog.Article]()
	tx := &fakeTx{
		snapshot: func() any { return articleStore.snapshot() },
		restore:  func(s any) { articleStore.rows = s.(map[string]*catalog.Article) },
	}
	clock := fixedClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}

	coord := NewCoordinator[catalog.Article](
		articleStore, tx, clock, zap.NewNop(),
		RequiredRef("Tax",
			func(a *catalog.Article) shared.Key { return a.TaxKey() },
			StoreExists[catalog.Tax](taxStore)),
		OptionalRef("Department",
			func(a *catalog.Article) (shared.Key, bool) { return a.DepartmentKey() },
			StoreExists[catalog.Department](deptStore)))

	dept := 4
	_, err := coord.Upsert(context.Background(), []*catalog.Article{
		{Code: 1001, Description: "Linen shirt", TaxType: 5, DepartmentNumber: &dept},
	})

	// both broken references of the one record are reported
	var batchErr *shared.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Items, 2)
	assert.Contains(t, batchErr.Items[0].Err.Message, "Tax")
	assert.Contains(t, batchErr.Items[1].Err.Message, "Department")
}

func TestUpsertSkipsAbsentOptionalParent(t *testing.T) {
	taxStore := newMemStore[catalog.Tax]()
	deptStore := newMemStore[catalog.Department]()
	articleStore := newMemStore[catalog.Article]()
	tx := &fakeTx{
		snapshot: func() any { return articleStore.snapshot() },
		restore:  func(s any) { articleStore.rows = s.(map[string]*catalog.Article) },
	}
	clock := fixedClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}

	coord := NewCoordinator[catalog.Article](
		articleStore, tx, clock, zap.NewNop(),
		RequiredRef("Tax",
			func(a *catalog.Article) shared.Key { return a.TaxKey() },
			StoreExists[catalog.Tax](taxStore)),
		OptionalRef("Department",
			func(a *catalog.Article) (shared.Key, bool) { return a.DepartmentKey() },
			StoreExists[catalog.Department](deptStore)))

	taxStore.rows["tipoiva=1"] = &catalog.Tax{Type: 1, Description: "General"}

	_, err := coord.Upsert(context.Background(), []*catalog.Article{
		{Code: 1001, Description: "Linen shirt", TaxType: 1},
	})
	require.NoError(t, err)
	assert.Len(t, articleStore.rows, 1)
}
