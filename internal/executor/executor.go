package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pgexplorer/pgexplorer/internal/client"
	"github.com/pgexplorer/pgexplorer/internal/logger"
	"github.com/pgexplorer/pgexplorer/internal/registry"
)

// Kind discriminates the three result shapes a statement can produce.
type Kind int

const (
	// KindRows is a tabular result with at least one row.
	KindRows Kind = iota
	// KindAffected is a non-tabular statement's affected-row count.
	KindAffected
	// KindEmpty is a tabular statement that returned no rows.
	KindEmpty
)

// Result is the normalized outcome of one statement.
type Result struct {
	Kind     Kind
	Target   string
	Columns  []string
	Rows     [][]any
	Affected int64
}

// ConnectionError reports an unreachable backend.
type ConnectionError struct {
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StatementError reports an execution failure, carrying the original
// statement text.
type StatementError struct {
	SQL string
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("Query error: %v\nQuery: %s", e.Err, e.SQL)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Executor runs single statements against a backend resolved through the
// registry. Every call opens its own connection and unconditionally releases
// it before returning; nothing is pooled across invocations.
type Executor struct {
	reg  *registry.Registry
	open client.OpenFunc
}

func New(reg *registry.Registry) *Executor {
	return NewWithOpener(reg, client.Open)
}

// NewWithOpener builds an executor with a custom connection opener. Tests use
// this to substitute sqlmock handles.
func NewWithOpener(reg *registry.Registry, open client.OpenFunc) *Executor {
	return &Executor{reg: reg, open: open}
}

// Acquire resolves database (empty means current) and opens a connection to
// it. The caller owns the returned handle and must close it.
func (e *Executor) Acquire(ctx context.Context, database string) (*sql.DB, string, error) {
	entry, err := e.reg.Resolve(database)
	if err != nil {
		return nil, "", err
	}

	db, err := e.open(ctx, entry.DSN)
	if err != nil {
		logger.LogConnectionEvent("acquire", entry.Name, err)
		return nil, "", &ConnectionError{Database: entry.Name, Err: err}
	}
	return db, entry.Name, nil
}

// Execute runs one statement. Parameters, when supplied, are bound
// positionally through the driver's native placeholder mechanism; without
// parameters the raw statement is sent unmodified. Statements that produce
// result columns yield KindRows or KindEmpty; everything else is executed for
// its affected-row count.
func (e *Executor) Execute(ctx context.Context, sqlText string, params []any, database string) (*Result, error) {
	db, target, err := e.Acquire(ctx, database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	queryID := uuid.NewString()[:8]
	preview := sqlText
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	logger.Info("executing query", "query_id", queryID, "database", target, "query", preview)

	if !returnsRows(sqlText) {
		res, err := db.ExecContext(ctx, sqlText, params...)
		if err != nil {
			logger.LogDatabaseOperation("EXEC", sqlText, 0, err)
			return nil, &StatementError{SQL: sqlText, Err: err}
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}
		logger.LogDatabaseOperation("EXEC", sqlText, affected, nil)
		return &Result{Kind: KindAffected, Target: target, Affected: affected}, nil
	}

	rows, err := db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		logger.LogDatabaseOperation("QUERY", sqlText, 0, err)
		return nil, &StatementError{SQL: sqlText, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &StatementError{SQL: sqlText, Err: err}
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, &StatementError{SQL: sqlText, Err: err}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &StatementError{SQL: sqlText, Err: err}
	}

	logger.LogDatabaseOperation("QUERY", sqlText, int64(len(data)), nil)

	if len(data) == 0 {
		return &Result{Kind: KindEmpty, Target: target, Columns: columns}, nil
	}
	return &Result{Kind: KindRows, Target: target, Columns: columns, Rows: data}, nil
}

// Statement verbs that produce result columns. database/sql offers no
// cursor-description equivalent, so the split happens on the leading verb.
var rowVerbs = []string{"select", "with", "show", "explain", "values", "table"}

func returnsRows(sqlText string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(sqlText))
	for _, verb := range rowVerbs {
		if strings.HasPrefix(trimmed, verb) {
			return true
		}
	}
	return false
}
