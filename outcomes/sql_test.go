package outcomes

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/crossroads/db"
)

func openTempSQLite(t *testing.T) *SQLStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "outcomes.db")
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.CreateSchema(conn))
	store, err := NewSQLStore(conn, db.DialectSQLite)
	require.NoError(t, err)
	return store
}

func TestNewSQLStoreValidatesArguments(t *testing.T) {
	_, err := NewSQLStore(nil, db.DialectSQLite)
	assert.Error(t, err)

	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	_, err = NewSQLStore(conn, "mysql")
	assert.Error(t, err)
}

func TestSQLiteStoreContract(t *testing.T) {
	runStoreContract(t, openTempSQLite(t))
}

func TestSQLiteSchemaIsIdempotent(t *testing.T) {
	store := openTempSQLite(t)
	require.NoError(t, db.CreateSchema(store.db))

	var rows int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM state").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestPostgresSetCurrentOutcome(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store, err := NewSQLStore(conn, db.DialectPostgres)
	require.NoError(t, err)
	ctx := context.Background()

	update := regexp.QuoteMeta("SET current_outcome_id = $1") + `(.|\s)*` + regexp.QuoteMeta("WHERE id = $2")

	mock.ExpectExec(update).
		WithArgs(int64(7), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, store.SetCurrentOutcome(ctx, 7))

	mock.ExpectExec(update).
		WithArgs(int64(8), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.SetCurrentOutcome(ctx, 8)
	assert.True(t, errors.Is(err, ErrNotFound))

	mock.ExpectExec(update).
		WithArgs(int64(9), int64(9)).
		WillReturnError(sql.ErrConnDone)
	err = store.SetCurrentOutcome(ctx, 9)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.False(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetOutcome(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store, err := NewSQLStore(conn, db.DialectPostgres)
	require.NoError(t, err)
	ctx := context.Background()

	columns := []string{"id", "title", "decision1_id", "decision2_id", "decision1_text", "decision2_text", "duration"}
	query := regexp.QuoteMeta("FROM outcome WHERE id = $1")

	mock.ExpectQuery(query).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Start", 2, nil, "Go left", nil, 20))

	got, err := store.GetOutcome(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Start", got.Title)
	require.NotNil(t, got.Decision1ID)
	assert.Equal(t, int64(2), *got.Decision1ID)
	assert.Nil(t, got.Decision2ID)
	assert.Nil(t, got.Decision2Text)
	assert.Equal(t, 20, got.Duration)

	mock.ExpectQuery(query).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(columns))
	_, err = store.GetOutcome(ctx, 2)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
