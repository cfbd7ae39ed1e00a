package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultSchema is used whenever a tool call omits db_schema.
const DefaultSchema = "public"

const listSchemasSQL = `SELECT schema_name FROM information_schema.schemata ORDER BY schema_name`

const listTablesSQL = `
	SELECT table_name, table_type
	FROM information_schema.tables
	WHERE table_schema = $1
	ORDER BY table_name`

const describeTableSQL = `
	SELECT
		column_name,
		data_type,
		is_nullable,
		column_default,
		character_maximum_length
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

type ListSchemasInput struct {
	Database string `json:"database,omitempty" jsonschema_description:"Optional database name to query (uses current if not specified)"`
}

type ListTablesInput struct {
	DBSchema string `json:"db_schema,omitempty" jsonschema_description:"The schema name to list tables from (defaults to 'public')"`
	Database string `json:"database,omitempty" jsonschema_description:"Optional database name to query (uses current if not specified)"`
}

type DescribeTableInput struct {
	TableName string `json:"table_name" jsonschema:"required" jsonschema_description:"The name of the table to describe"`
	DBSchema  string `json:"db_schema,omitempty" jsonschema_description:"The schema name (defaults to 'public')"`
	Database  string `json:"database,omitempty" jsonschema_description:"Optional database name to query (uses current if not specified)"`
}

type CatalogOutput struct {
	Result string `json:"result" jsonschema_description:"Formatted catalog rows or error message"`
}

func GetListSchemasTool(deps *Deps) *ToolDefinition[ListSchemasInput, CatalogOutput] {
	return NewToolDefinition[ListSchemasInput, CatalogOutput](
		"list_schemas",
		"List all schemas in the database.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ListSchemasInput) (*mcp.CallToolResult, CatalogOutput, error) {
			text := runStatement(ctx, deps, listSchemasSQL, nil, input.Database)
			return textResult(text), CatalogOutput{Result: text}, nil
		},
	)
}

func GetListTablesTool(deps *Deps) *ToolDefinition[ListTablesInput, CatalogOutput] {
	return NewToolDefinition[ListTablesInput, CatalogOutput](
		"list_tables",
		"List all tables in a specific schema.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ListTablesInput) (*mcp.CallToolResult, CatalogOutput, error) {
			schema := input.DBSchema
			if schema == "" {
				schema = DefaultSchema
			}
			text := runStatement(ctx, deps, listTablesSQL, []any{schema}, input.Database)
			return textResult(text), CatalogOutput{Result: text}, nil
		},
	)
}

func GetDescribeTableTool(deps *Deps) *ToolDefinition[DescribeTableInput, CatalogOutput] {
	return NewToolDefinition[DescribeTableInput, CatalogOutput](
		"describe_table",
		"Get detailed information about a table's columns.",
		func(ctx context.Context, req *mcp.CallToolRequest, input DescribeTableInput) (*mcp.CallToolResult, CatalogOutput, error) {
			if input.TableName == "" {
				return textResult("Error: table_name is required"), CatalogOutput{}, nil
			}
			schema := input.DBSchema
			if schema == "" {
				schema = DefaultSchema
			}
			text := runStatement(ctx, deps, describeTableSQL, []any{schema, input.TableName}, input.Database)
			return textResult(text), CatalogOutput{Result: text}, nil
		},
	)
}
