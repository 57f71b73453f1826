package database

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// mockDatabase wraps an sqlx handle over sqlmock so repositories can be
// tested against the DB interface
type mockDatabase struct {
	db *sqlx.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Beginx() (*sqlx.Tx, error) {
	return m.db.Beginx()
}

func (m *mockDatabase) Ping() error { return m.db.Ping() }

func (m *mockDatabase) Close() error { return m.db.Close() }

// newMockDB returns a DB backed by sqlmock and a cleanup function
func newMockDB(t *testing.T) (*mockDatabase, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return &mockDatabase{db: sqlxDB}, mock, func() { sqlxDB.Close() }
}
