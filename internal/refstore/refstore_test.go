package refstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certverify/internal/common/logger"
)

// sqlAdapter bridges a raw *sql.DB to the Querier interface for tests.
type sqlAdapter struct{ db *sql.DB }

func (a *sqlAdapter) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return a.db.QueryContext(ctx, query, args...)
}

func (a *sqlAdapter) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return a.db.ExecContext(ctx, query, args...)
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(&sqlAdapter{db: db}, logger.NewNoOpLogger()), mock
}

func TestReferenceHashes(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT phash FROM reference_fingerprints").
		WillReturnRows(sqlmock.NewRows([]string{"phash"}).
			AddRow(int64(12345)).
			AddRow(int64(-1))) // stored uint64 max reinterpreted as -1

	hashes, err := store.ReferenceHashes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint64{12345, 18446744073709551615}, hashes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceHashesEmpty(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT phash FROM reference_fingerprints").
		WillReturnRows(sqlmock.NewRows([]string{"phash"}))

	hashes, err := store.ReferenceHashes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestReferenceHashesQueryError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT phash FROM reference_fingerprints").
		WillReturnError(sql.ErrConnDone)

	_, err := store.ReferenceHashes(context.Background())
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO reference_fingerprints").
		WithArgs("bin-hash", "canon-hash", int64(77)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Save(context.Background(), "bin-hash", "canon-hash", 77)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
