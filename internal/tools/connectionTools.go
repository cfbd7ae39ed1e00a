package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pgexplorer/pgexplorer/internal/logger"
	"github.com/pgexplorer/pgexplorer/internal/registry"
)

type ListDatabasesInput struct{}

type ListDatabasesOutput struct {
	Databases []string `json:"databases" jsonschema_description:"Available database connection names in insertion order"`
	Current   string   `json:"current,omitempty" jsonschema_description:"Currently selected database"`
}

type SwitchDatabaseInput struct {
	DBName string `json:"db_name" jsonschema:"required" jsonschema_description:"The name of the database to switch to"`
}

type SwitchDatabaseOutput struct {
	Message string `json:"message" jsonschema_description:"Result message"`
	Current string `json:"current,omitempty" jsonschema_description:"Currently selected database"`
}

type GetCurrentDatabaseInput struct{}

type GetCurrentDatabaseOutput struct {
	Current string `json:"current,omitempty" jsonschema_description:"Currently selected database, empty when none"`
}

type AddDatabaseConnectionInput struct {
	Name             string `json:"name" jsonschema:"required" jsonschema_description:"Name for the new database connection"`
	ConnectionString string `json:"connection_string" jsonschema:"required" jsonschema_description:"PostgreSQL connection string"`
}

type AddDatabaseConnectionOutput struct {
	Success bool   `json:"success" jsonschema_description:"Whether the connection was added"`
	Message string `json:"message" jsonschema_description:"Result message"`
}

type RemoveDatabaseConnectionInput struct {
	Name string `json:"name" jsonschema:"required" jsonschema_description:"Name of the database connection to remove"`
}

type RemoveDatabaseConnectionOutput struct {
	Success bool   `json:"success" jsonschema_description:"Whether the connection was removed"`
	Message string `json:"message" jsonschema_description:"Result message"`
}

func GetListDatabasesTool(deps *Deps) *ToolDefinition[ListDatabasesInput, ListDatabasesOutput] {
	return NewToolDefinition[ListDatabasesInput, ListDatabasesOutput](
		"list_databases",
		"List all available database connections.",
		func(ctx context.Context, req *mcp.CallToolRequest, input ListDatabasesInput) (*mcp.CallToolResult, ListDatabasesOutput, error) {
			return listDatabasesHandler(ctx, req, input, deps)
		},
	)
}

func listDatabasesHandler(ctx context.Context, req *mcp.CallToolRequest, input ListDatabasesInput, deps *Deps) (*mcp.CallToolResult, ListDatabasesOutput, error) {
	databases := deps.Registry.List()
	current := deps.Registry.Current()

	output := ListDatabasesOutput{Databases: databases, Current: current}

	if len(databases) == 0 {
		return textResult("No database connections configured."), output, nil
	}

	lines := []string{"Available databases:", "-------------------"}
	for _, db := range databases {
		marker := ""
		if db == current {
			marker = " (current)"
		}
		lines = append(lines, fmt.Sprintf("• %s%s", db, marker))
	}

	return textResult(strings.Join(lines, "\n")), output, nil
}

func GetSwitchDatabaseTool(deps *Deps) *ToolDefinition[SwitchDatabaseInput, SwitchDatabaseOutput] {
	return NewToolDefinition[SwitchDatabaseInput, SwitchDatabaseOutput](
		"switch_database",
		"Switch to a different database connection.",
		func(ctx context.Context, req *mcp.CallToolRequest, input SwitchDatabaseInput) (*mcp.CallToolResult, SwitchDatabaseOutput, error) {
			return switchDatabaseHandler(ctx, req, input, deps)
		},
	)
}

func switchDatabaseHandler(ctx context.Context, req *mcp.CallToolRequest, input SwitchDatabaseInput, deps *Deps) (*mcp.CallToolResult, SwitchDatabaseOutput, error) {
	if input.DBName == "" {
		return textResult("Error: db_name is required"), SwitchDatabaseOutput{Current: deps.Registry.Current()}, nil
	}

	if deps.Registry.Switch(input.DBName) {
		msg := fmt.Sprintf("Switched to database: %s", input.DBName)
		return textResult(msg), SwitchDatabaseOutput{Message: msg, Current: input.DBName}, nil
	}

	available := deps.Registry.List()
	msg := fmt.Sprintf("Database '%s' not found. Available databases: %s", input.DBName, strings.Join(available, ", "))
	return textResult(msg), SwitchDatabaseOutput{Message: msg, Current: deps.Registry.Current()}, nil
}

func GetCurrentDatabaseTool(deps *Deps) *ToolDefinition[GetCurrentDatabaseInput, GetCurrentDatabaseOutput] {
	return NewToolDefinition[GetCurrentDatabaseInput, GetCurrentDatabaseOutput](
		"get_current_database",
		"Get the name of the currently selected database.",
		func(ctx context.Context, req *mcp.CallToolRequest, input GetCurrentDatabaseInput) (*mcp.CallToolResult, GetCurrentDatabaseOutput, error) {
			return currentDatabaseHandler(ctx, req, input, deps)
		},
	)
}

func currentDatabaseHandler(ctx context.Context, req *mcp.CallToolRequest, input GetCurrentDatabaseInput, deps *Deps) (*mcp.CallToolResult, GetCurrentDatabaseOutput, error) {
	current := deps.Registry.Current()
	if current == "" {
		return textResult("No database currently selected."), GetCurrentDatabaseOutput{}, nil
	}
	return textResult(fmt.Sprintf("Current database: %s", current)), GetCurrentDatabaseOutput{Current: current}, nil
}

func GetAddDatabaseConnectionTool(deps *Deps) *ToolDefinition[AddDatabaseConnectionInput, AddDatabaseConnectionOutput] {
	return NewToolDefinition[AddDatabaseConnectionInput, AddDatabaseConnectionOutput](
		"add_database_connection",
		"Add a new database connection dynamically. The connection string is validated before the connection is registered.",
		func(ctx context.Context, req *mcp.CallToolRequest, input AddDatabaseConnectionInput) (*mcp.CallToolResult, AddDatabaseConnectionOutput, error) {
			return addDatabaseConnectionHandler(ctx, req, input, deps)
		},
	)
}

func addDatabaseConnectionHandler(ctx context.Context, req *mcp.CallToolRequest, input AddDatabaseConnectionInput, deps *Deps) (*mcp.CallToolResult, AddDatabaseConnectionOutput, error) {
	if input.Name == "" || input.ConnectionString == "" {
		return textResult("Error: Both name and connection_string are required"), AddDatabaseConnectionOutput{}, nil
	}

	if deps.Registry.Add(ctx, input.Name, input.ConnectionString) {
		logger.LogConnectionEvent("add_database_connection", input.Name, nil)
		msg := fmt.Sprintf("Successfully added database connection: %s", input.Name)
		return textResult(msg), AddDatabaseConnectionOutput{Success: true, Message: msg}, nil
	}

	msg := fmt.Sprintf("Failed to add database connection: %s", input.Name)
	return textResult(msg), AddDatabaseConnectionOutput{Message: msg}, nil
}

func GetRemoveDatabaseConnectionTool(deps *Deps) *ToolDefinition[RemoveDatabaseConnectionInput, RemoveDatabaseConnectionOutput] {
	return NewToolDefinition[RemoveDatabaseConnectionInput, RemoveDatabaseConnectionOutput](
		"remove_database_connection",
		"Remove a database connection. The primary connection cannot be removed.",
		func(ctx context.Context, req *mcp.CallToolRequest, input RemoveDatabaseConnectionInput) (*mcp.CallToolResult, RemoveDatabaseConnectionOutput, error) {
			return removeDatabaseConnectionHandler(ctx, req, input, deps)
		},
	)
}

func removeDatabaseConnectionHandler(ctx context.Context, req *mcp.CallToolRequest, input RemoveDatabaseConnectionInput, deps *Deps) (*mcp.CallToolResult, RemoveDatabaseConnectionOutput, error) {
	if input.Name == "" {
		return textResult("Error: name is required"), RemoveDatabaseConnectionOutput{}, nil
	}

	// The registry has no notion of a protected entry; business rule enforced
	// here at the tool boundary.
	if input.Name == registry.PrimaryName {
		return textResult("Cannot remove the primary database connection."), RemoveDatabaseConnectionOutput{
			Message: "Cannot remove the primary database connection.",
		}, nil
	}

	if deps.Registry.Remove(input.Name) {
		logger.LogConnectionEvent("remove_database_connection", input.Name, nil)
		msg := fmt.Sprintf("Successfully removed database connection: %s", input.Name)
		return textResult(msg), RemoveDatabaseConnectionOutput{Success: true, Message: msg}, nil
	}

	msg := fmt.Sprintf("Database connection '%s' not found.", input.Name)
	return textResult(msg), RemoveDatabaseConnectionOutput{Message: msg}, nil
}
