package mcp

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/hpungsan/uwu/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"uwuify", "history"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"uwuify": {
		def:     uwuifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUwuify },
	},
	"uwuify_batch": {
		def:     uwuifyBatchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUwuifyBatch },
	},
	"history_list": {
		def:     historyListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryList },
	},
	"history_fetch": {
		def:     historyFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryFetch },
	},
	"history_purge": {
		def:     historyPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryPurge },
	},
}

// AllToolNames returns a sorted list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type" or "type_action" (e.g., "history_list" → "history").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return toolName
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with uwu tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes are
// excluded from registration. Without a database the history tools are
// not registered.
func NewServer(db *sql.DB, cfg *config.Config, logger zerolog.Logger, version string) *server.MCPServer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := server.NewMCPServer(
		"uwu",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(db, cfg, logger)

	// Build set of disabled tools: first expand types, then add individual tools
	disabledTypes := cfg.DisabledTypes
	if db == nil {
		disabledTypes = append(append([]string(nil), disabledTypes...), "history")
	}
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(disabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, logger zerolog.Logger, version string) error {
	s := NewServer(db, cfg, logger, version)
	return server.ServeStdio(s)
}
