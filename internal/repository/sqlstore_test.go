package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openMockDriver(db *sql.DB) *entsql.Driver {
	return entsql.OpenDB(dialect.Postgres, db)
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewSQLStore(openMockDriver(db), nil, discardLogger()), mock
}

func TestSQLStore_TableExists(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM "information_schema"\."tables" WHERE .*current_schema\(\).*"table_name" = \$1`).
		WithArgs("log_entries").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`information_schema`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := store.TableExists(context.Background(), "log_entries")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.TableExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Insert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "log_entries" \("temp", "lot"\) VALUES \(\$1, NULL\) RETURNING "id", "created_at", "temp", "lot"`).
		WithArgs(98.6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "temp", "lot"}).
			AddRow([]byte("7b0e3f0a-3c1d-4c55-9a57-1f3b2f3d4e5f"), "2024-01-05T00:00:00.000Z", "98.6", nil))

	rec, err := store.Insert(context.Background(), "log_entries", []ColumnValue{
		{Name: "temp", Value: 98.6},
		{Name: "lot", Value: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, "7b0e3f0a-3c1d-4c55-9a57-1f3b2f3d4e5f", rec["id"])
	assert.Equal(t, "98.6", rec["temp"])
	assert.Nil(t, rec["lot"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_InsertDefaults(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO "log_entries" DEFAULT VALUES RETURNING "id", "created_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a", "b"))

	rec, err := store.Insert(context.Background(), "log_entries", nil)
	require.NoError(t, err)
	assert.Len(t, rec, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_InsertError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO`).WillReturnError(errors.New("relation does not exist"))

	_, err := store.Insert(context.Background(), "log_entries", []ColumnValue{{Name: "temp", Value: 1.0}})
	assert.ErrorContains(t, err, "relation does not exist")
}

func TestSQLStore_ExecDDLAndClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	closed := false
	store := NewSQLStore(entsql.OpenDB(dialect.Postgres, db), func() { closed = true }, discardLogger())

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "log_entries"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, store.ExecDDL(context.Background(), `CREATE TABLE IF NOT EXISTS "log_entries" ("id" uuid)`))
	require.NoError(t, store.Close())
	assert.True(t, closed)
	assert.Equal(t, dialect.Postgres, store.Dialect())
	assert.NoError(t, mock.ExpectationsWereMet())
}
