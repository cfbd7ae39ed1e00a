package executor

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgexplorer/pgexplorer/internal/config"
	"github.com/pgexplorer/pgexplorer/internal/registry"
)

func newTestExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	// The executor closes the handle after every call; expectations are
	// registered per-test, so ordering is relaxed.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectClose()

	reg := registry.NewWithProbe(func(context.Context, string) error { return nil })
	reg.Load(&config.Config{PrimaryDSN: "postgres://test"})

	ex := NewWithOpener(reg, func(context.Context, string) (*sql.DB, error) {
		return db, nil
	})
	return ex, mock
}

func TestExecuteRows(t *testing.T) {
	ex, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "alice").
			AddRow(2, "bob"))

	res, err := ex.Execute(context.Background(), "SELECT id, name FROM users", nil, "")
	require.NoError(t, err)

	assert.Equal(t, KindRows, res.Kind)
	assert.Equal(t, "primary", res.Target)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteEmpty(t *testing.T) {
	ex, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	res, err := ex.Execute(context.Background(), "SELECT id, name FROM users", nil, "")
	require.NoError(t, err)
	assert.Equal(t, KindEmpty, res.Kind)
	assert.Empty(t, res.Rows)
}

func TestExecuteNonTabular(t *testing.T) {
	ex, mock := newTestExecutor(t)
	mock.ExpectExec("UPDATE users SET (.+)").
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := ex.Execute(context.Background(), "UPDATE users SET active = true", nil, "")
	require.NoError(t, err)
	assert.Equal(t, KindAffected, res.Kind)
	assert.Equal(t, int64(3), res.Affected)
}

func TestExecuteWithClauseUsesQueryPath(t *testing.T) {
	ex, mock := newTestExecutor(t)
	mock.ExpectQuery("WITH recent AS (.+)").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	res, err := ex.Execute(context.Background(), "WITH recent AS (SELECT 1 AS n) SELECT n FROM recent", nil, "")
	require.NoError(t, err)
	assert.Equal(t, KindRows, res.Kind)
}

func TestExecuteBindsParametersPositionally(t *testing.T) {
	ex, mock := newTestExecutor(t)

	// A quote-bearing parameter must arrive as a bound argument, never spliced
	// into the statement text.
	stmt := "SELECT schema_name FROM information_schema.schemata WHERE schema_name = $1"
	mock.ExpectQuery(regexp.QuoteMeta(stmt)).
		WithArgs("pub'lic").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}))

	res, err := ex.Execute(context.Background(), stmt, []any{"pub'lic"}, "")
	require.NoError(t, err)
	assert.Equal(t, KindEmpty, res.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStatementError(t *testing.T) {
	ex, mock := newTestExecutor(t)
	mock.ExpectQuery("SELECT (.+)").
		WillReturnError(errors.New("syntax error at or near \"FORM\""))

	_, err := ex.Execute(context.Background(), "SELECT * FORM users", nil, "")
	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, "SELECT * FORM users", stmtErr.SQL)
	assert.Contains(t, err.Error(), "Query error:")
	assert.Contains(t, err.Error(), "Query: SELECT * FORM users")
}

func TestExecuteConnectionError(t *testing.T) {
	reg := registry.NewWithProbe(func(context.Context, string) error { return nil })
	reg.Load(&config.Config{PrimaryDSN: "postgres://test"})

	ex := NewWithOpener(reg, func(context.Context, string) (*sql.DB, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := ex.Execute(context.Background(), "SELECT 1", nil, "")
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "primary", connErr.Database)
	assert.Contains(t, err.Error(), "Connection error:")
}

func TestExecuteRegistryErrors(t *testing.T) {
	t.Run("nothing selected", func(t *testing.T) {
		ex := New(registry.New())
		_, err := ex.Execute(context.Background(), "SELECT 1", nil, "")
		assert.ErrorIs(t, err, registry.ErrNotSelected)
	})

	t.Run("unknown database", func(t *testing.T) {
		reg := registry.NewWithProbe(func(context.Context, string) error { return nil })
		reg.Load(&config.Config{PrimaryDSN: "postgres://test"})

		ex := New(reg)
		_, err := ex.Execute(context.Background(), "SELECT 1", nil, "nope")
		var notFound *registry.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, []string{"primary"}, notFound.Known)
	})
}
