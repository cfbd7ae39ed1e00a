package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pgexplorer/pgexplorer/internal/executor"
	"github.com/pgexplorer/pgexplorer/internal/logger"
	"github.com/pgexplorer/pgexplorer/internal/registry"
)

type QueryInput struct {
	SQL        string `json:"sql" jsonschema:"required" jsonschema_description:"The SQL query to execute"`
	Parameters []any  `json:"parameters,omitempty" jsonschema_description:"Optional positional parameters, bound with the backend's native placeholders"`
	Database   string `json:"database,omitempty" jsonschema_description:"Optional database name to execute against (uses current if not specified)"`
}

type QueryOutput struct {
	Result string `json:"result" jsonschema_description:"Formatted query result or error message"`
}

func GetQueryTool(deps *Deps) *ToolDefinition[QueryInput, QueryOutput] {
	return NewToolDefinition[QueryInput, QueryOutput](
		"query",
		"Execute a SQL query against the database. Results are returned as one line per row of 'column: value' pairs.",
		func(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
			return queryHandler(ctx, req, input, deps)
		},
	)
}

func queryHandler(ctx context.Context, req *mcp.CallToolRequest, input QueryInput, deps *Deps) (*mcp.CallToolResult, QueryOutput, error) {
	if input.SQL == "" {
		return textResult("Error: SQL query is required"), QueryOutput{}, nil
	}

	text := runStatement(ctx, deps, input.SQL, input.Parameters, input.Database)
	return textResult(text), QueryOutput{Result: text}, nil
}

// runStatement executes one statement and renders it, converting every
// expected failure into descriptive text so nothing escapes the tool
// boundary as a raw fault.
func runStatement(ctx context.Context, deps *Deps, sqlText string, params []any, database string) string {
	result, err := deps.Executor.Execute(ctx, sqlText, params, database)
	if err != nil {
		logger.LogToolCall("query", err)
		return statementErrorText(err)
	}
	return executor.FormatText(result)
}

func statementErrorText(err error) string {
	var notFound *registry.NotFoundError
	var connErr *executor.ConnectionError
	var stmtErr *executor.StatementError
	switch {
	case errors.Is(err, registry.ErrNotSelected),
		errors.As(err, &notFound),
		errors.As(err, &connErr),
		errors.As(err, &stmtErr):
		return err.Error()
	default:
		return "Query error: " + err.Error()
	}
}
