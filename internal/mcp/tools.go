package mcp

import "github.com/mark3labs/mcp-go/mcp"

// optionsSchema describes the per-call engine overrides shared by the
// transform tools. Omitted fields keep the configured defaults.
var optionsSchema = map[string]any{
	"lowercase":           map[string]any{"type": "boolean", "description": "Lowercase ASCII letters"},
	"expressions":         map[string]any{"type": "boolean", "description": "Replace expressions (love → luv, ...)"},
	"letter_substitution": map[string]any{"type": "boolean", "description": "Replace l and r with w"},
	"stutter":             map[string]any{"type": "boolean", "description": "Stutter word starts"},
	"stutter_chance":      map[string]any{"type": "integer", "minimum": 1, "maximum": 255, "description": "Stutter about 1 in N words"},
	"decoration":          map[string]any{"type": "boolean", "description": "Insert emoticons after punctuation"},
	"decoration_chance":   map[string]any{"type": "integer", "minimum": 1, "maximum": 255, "description": "Decorate about 1 in N punctuation marks"},
}

var uwuifyToolDef = mcp.NewTool("uwuify",
	mcp.WithDescription("Uwuify text. Deterministic: the same text and options always give the same output. "+
		"On an engine failure the input is returned unchanged with fallback=true."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Text to transform")),
	mcp.WithObject("options", mcp.Description("Engine overrides"), mcp.Properties(optionsSchema)),
	mcp.WithBoolean("markdown", mcp.Description("Only transform prose; keep code, HTML and links intact")),
	mcp.WithBoolean("save", mcp.Description("Record the transform in history (default: config history)")),
)

var uwuifyBatchToolDef = mcp.NewTool("uwuify_batch",
	mcp.WithDescription("Uwuify several texts with the same options. Results keep input order."),
	mcp.WithArray("texts", mcp.Required(), mcp.Description("Texts to transform (max 100)"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithObject("options", mcp.Description("Engine overrides"), mcp.Properties(optionsSchema)),
	mcp.WithBoolean("markdown", mcp.Description("Only transform prose; keep code, HTML and links intact")),
	mcp.WithBoolean("save", mcp.Description("Record the transforms in history (default: config history)")),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List recorded transforms, newest first. Returns summaries without full text."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithString("source", mcp.Description("Filter by source"), mcp.Enum("cli", "web", "mcp")),
	mcp.WithString("text", mcp.Description("Only transforms of exactly this input")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var historyFetchToolDef = mcp.NewTool("history_fetch",
	mcp.WithDescription("Fetch one recorded transform by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Record id (ULID)")),
	mcp.WithBoolean("include_text", mcp.Description("Include input and output (default true)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var historyPurgeToolDef = mcp.NewTool("history_purge",
	mcp.WithDescription("Permanently delete recorded transforms."),
	mcp.WithNumber("older_than_days", mcp.Description("Only delete transforms older than N days")),
	mcp.WithDestructiveHintAnnotation(true),
)
