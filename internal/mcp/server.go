// Package mcp exposes the artifact store to AI agents over the Model
// Context Protocol. Each tool follows the same pattern: a struct
// holding the service, Definition() returning the schema, and Handle()
// processing one call.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"axiom/internal/usecase"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all axiom tools registered.
func New(svc *usecase.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"axiom",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	add := &AddTool{svc: svc}
	s.AddTool(add.Definition(), add.Handle)

	get := &GetTool{svc: svc}
	s.AddTool(get.Definition(), get.Handle)

	update := &UpdateTool{svc: svc}
	s.AddTool(update.Definition(), update.Handle)

	remove := &RemoveTool{svc: svc}
	s.AddTool(remove.Definition(), remove.Handle)

	list := &ListTool{svc: svc}
	s.AddTool(list.Definition(), list.Handle)

	search := &SearchTool{svc: svc}
	s.AddTool(search.Definition(), search.Handle)

	history := &HistoryTool{svc: svc}
	s.AddTool(history.Definition(), history.Handle)

	diff := &DiffTool{svc: svc}
	s.AddTool(diff.Definition(), diff.Handle)

	reindex := &ReindexTool{svc: svc}
	s.AddTool(reindex.Definition(), reindex.Handle)

	stats := &StatsTool{svc: svc}
	s.AddTool(stats.Definition(), stats.Handle)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client closes
// the stream.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringArg extracts a string argument and whether it was present at
// all, which update tools need to tell "unset" from "empty".
func stringArg(req mcp.CallToolRequest, key string) (string, bool) {
	v, ok := req.GetArguments()[key].(string)
	return v, ok
}

// floatArg extracts a numeric argument and whether it was present.
func floatArg(req mcp.CallToolRequest, key string) (float64, bool) {
	v, ok := req.GetArguments()[key].(float64)
	return v, ok
}

func serverInstructions() string {
	return `You have access to axiom, a store of atomic truth statements about a
software system: intents, invariants, contracts, and similar facts.

Statements are retrieved by meaning (axiom_search), so search before
asserting anything about how the system is supposed to behave. When the
user states a durable fact about the system, save it with axiom_add
under the most specific registered kind. Keep each statement atomic:
one fact per artifact, with the context field explaining when the fact
applies.

Every mutation creates a new store version; use axiom_history and
axiom_diff to see how a statement evolved, and axiom_update rather
than add-plus-remove when refining an existing statement.`
}
