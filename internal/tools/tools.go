package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools wires every tool onto the server.
func RegisterTools(s *mcp.Server, deps *Deps) {
	// Connection management
	GetListDatabasesTool(deps).Register(s)
	GetSwitchDatabaseTool(deps).Register(s)
	GetCurrentDatabaseTool(deps).Register(s)
	GetAddDatabaseConnectionTool(deps).Register(s)
	GetRemoveDatabaseConnectionTool(deps).Register(s)
	// Query execution
	GetQueryTool(deps).Register(s)
	// Schema introspection
	GetListSchemasTool(deps).Register(s)
	GetListTablesTool(deps).Register(s)
	GetDescribeTableTool(deps).Register(s)
	// Relationships
	GetForeignKeysTool(deps).Register(s)
	GetFindRelationshipsTool(deps).Register(s)
}
