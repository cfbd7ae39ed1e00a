package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pgexplorer/pgexplorer/internal/executor"
	"github.com/pgexplorer/pgexplorer/internal/inference"
	"github.com/pgexplorer/pgexplorer/internal/logger"
)

type GetForeignKeysInput struct {
	TableName string `json:"table_name" jsonschema:"required" jsonschema_description:"The name of the table to get foreign keys from"`
	DBSchema  string `json:"db_schema,omitempty" jsonschema_description:"The schema name (defaults to 'public')"`
	Database  string `json:"database,omitempty" jsonschema_description:"Optional database name to query (uses current if not specified)"`
}

type FindRelationshipsInput struct {
	TableName string `json:"table_name" jsonschema:"required" jsonschema_description:"The name of the table to analyze relationships for"`
	DBSchema  string `json:"db_schema,omitempty" jsonschema_description:"The schema name (defaults to 'public')"`
	Database  string `json:"database,omitempty" jsonschema_description:"Optional database name to query (uses current if not specified)"`
}

type RelationshipOutput struct {
	Result string `json:"result" jsonschema_description:"Formatted relationship rows or error message"`
}

func GetForeignKeysTool(deps *Deps) *ToolDefinition[GetForeignKeysInput, RelationshipOutput] {
	return NewToolDefinition[GetForeignKeysInput, RelationshipOutput](
		"get_foreign_keys",
		"Get foreign key information for a table.",
		func(ctx context.Context, req *mcp.CallToolRequest, input GetForeignKeysInput) (*mcp.CallToolResult, RelationshipOutput, error) {
			return foreignKeysHandler(ctx, req, input, deps)
		},
	)
}

func foreignKeysHandler(ctx context.Context, req *mcp.CallToolRequest, input GetForeignKeysInput, deps *Deps) (*mcp.CallToolResult, RelationshipOutput, error) {
	if input.TableName == "" {
		return textResult("Error: table_name is required"), RelationshipOutput{}, nil
	}
	schema := input.DBSchema
	if schema == "" {
		schema = DefaultSchema
	}

	db, target, err := deps.Executor.Acquire(ctx, input.Database)
	if err != nil {
		return textResult(statementErrorText(err)), RelationshipOutput{Result: err.Error()}, nil
	}
	defer db.Close()

	edges, err := inference.ForeignKeys(ctx, db, schema, input.TableName)
	if err != nil {
		logger.LogToolCall("get_foreign_keys", err)
		text := fmt.Sprintf("Query error: %v", err)
		return textResult(text), RelationshipOutput{Result: text}, nil
	}

	text := executor.FormatText(foreignKeyRows(target, edges))
	return textResult(text), RelationshipOutput{Result: text}, nil
}

func GetFindRelationshipsTool(deps *Deps) *ToolDefinition[FindRelationshipsInput, RelationshipOutput] {
	return NewToolDefinition[FindRelationshipsInput, RelationshipOutput](
		"find_relationships",
		"Find both explicit foreign key relationships and implied relationships for a table, ranked by confidence.",
		func(ctx context.Context, req *mcp.CallToolRequest, input FindRelationshipsInput) (*mcp.CallToolResult, RelationshipOutput, error) {
			return findRelationshipsHandler(ctx, req, input, deps)
		},
	)
}

func findRelationshipsHandler(ctx context.Context, req *mcp.CallToolRequest, input FindRelationshipsInput, deps *Deps) (*mcp.CallToolResult, RelationshipOutput, error) {
	if input.TableName == "" {
		return textResult("Error: table_name is required"), RelationshipOutput{}, nil
	}
	schema := input.DBSchema
	if schema == "" {
		schema = DefaultSchema
	}

	db, target, err := deps.Executor.Acquire(ctx, input.Database)
	if err != nil {
		return textResult(statementErrorText(err)), RelationshipOutput{Result: err.Error()}, nil
	}
	defer db.Close()

	// Explicit pass first; its failure fails the whole call.
	explicit, err := inference.ForeignKeys(ctx, db, schema, input.TableName)
	if err != nil {
		infErr := &inference.InferenceError{Err: err}
		logger.LogToolCall("find_relationships", infErr)
		return textResult(infErr.Error()), RelationshipOutput{Result: infErr.Error()}, nil
	}
	explicitText := executor.FormatText(explicitRows(target, explicit))

	// The implied pass failing does not discard the explicit results.
	var impliedText string
	implied, err := inference.Implied(ctx, db, schema, input.TableName)
	if err != nil {
		infErr := &inference.InferenceError{Err: err}
		logger.LogToolCall("find_relationships", infErr)
		impliedText = infErr.Error()
	} else {
		impliedText = executor.FormatText(impliedRows(target, implied))
	}

	text := "Explicit Relationships:\n" + explicitText + "\n\nImplied Relationships:\n" + impliedText
	return textResult(text), RelationshipOutput{Result: text}, nil
}

func foreignKeyRows(target string, edges []inference.ForeignKeyEdge) *executor.Result {
	res := &executor.Result{
		Kind:    executor.KindEmpty,
		Target:  target,
		Columns: []string{"constraint_name", "fk_column", "referenced_schema", "referenced_table", "referenced_column"},
	}
	for _, e := range edges {
		res.Rows = append(res.Rows, []any{e.Constraint, e.Column, e.RefSchema, e.RefTable, e.RefColumn})
	}
	if len(res.Rows) > 0 {
		res.Kind = executor.KindRows
	}
	return res
}

func explicitRows(target string, edges []inference.ForeignKeyEdge) *executor.Result {
	res := &executor.Result{
		Kind:    executor.KindEmpty,
		Target:  target,
		Columns: []string{"column_name", "foreign_table", "foreign_column", "relationship_type", "confidence_level"},
	}
	for _, e := range edges {
		res.Rows = append(res.Rows, []any{e.Column, e.RefTable, e.RefColumn, "Explicit FK", 1})
	}
	if len(res.Rows) > 0 {
		res.Kind = executor.KindRows
	}
	return res
}

func impliedRows(target string, edges []inference.ImpliedEdge) *executor.Result {
	res := &executor.Result{
		Kind:    executor.KindEmpty,
		Target:  target,
		Columns: []string{"column_name", "foreign_table", "foreign_column", "relationship_type", "confidence_level"},
	}
	for _, e := range edges {
		res.Rows = append(res.Rows, []any{e.Column, e.RefTable, e.RefColumn, e.Label, e.Level})
	}
	if len(res.Rows) > 0 {
		res.Kind = executor.KindRows
	}
	return res
}
