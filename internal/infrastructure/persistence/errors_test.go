package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))

	err := mapError(gorm.ErrRecordNotFound)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))

	err = mapError(gorm.ErrDuplicatedKey)
	assert.True(t, shared.IsCode(err, shared.CodeDuplicateKey))

	// domain errors raised inside a transaction must survive the round trip
	original := shared.NewConsistencyError("totals do not add up")
	assert.Same(t, error(original), mapError(original))

	opaque := errors.New("connection reset by peer")
	assert.Equal(t, opaque, mapError(opaque))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&pq.Error{Code: "40001"}))
	assert.True(t, isTransient(&pq.Error{Code: "40P01"}))
	assert.False(t, isTransient(&pq.Error{Code: "23505"}))

	// gorm wraps driver errors into plain strings on some paths
	assert.True(t, isTransient(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.False(t, isTransient(errors.New("ERROR: relation does not exist (SQLSTATE 42P01)")))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestFindMapsSerializationFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewDepartmentStore(db)

	mock.ExpectQuery(`SELECT (.+) FROM "departamentos"`).
		WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})

	_, err := store.Find(context.Background(), shared.Key{"numdpto": 1})
	assert.True(t, shared.IsCode(err, shared.CodeTransient))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMapsDeadlock(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewDepartmentStore(db)

	// with no auto-generated columns the insert goes through the exec
	// interface (no RETURNING clause)
	mock.ExpectExec(`INSERT INTO "departamentos"`).
		WillReturnError(&pq.Error{Code: "40P01", Message: "deadlock detected"})

	err := store.Insert(context.Background(), &catalog.Department{Number: 1, Description: "Textiles"})
	assert.True(t, shared.IsCode(err, shared.CodeTransient))
	assert.NoError(t, mock.ExpectationsWereMet())
}
