package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/ops"
	"github.com/hpungsan/uwu/internal/record"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, logger zerolog.Logger) *Handlers {
	return &Handlers{db: db, cfg: cfg, logger: logger}
}

// Request types for each tool

// UwuifyRequest represents the arguments for uwuify.
type UwuifyRequest struct {
	Text     *string     `json:"text"`
	Options  ops.Options `json:"options"`
	Markdown bool        `json:"markdown,omitempty"`
	Save     *bool       `json:"save,omitempty"`
}

// UwuifyBatchRequest represents the arguments for uwuify_batch.
type UwuifyBatchRequest struct {
	Texts    []string    `json:"texts"`
	Options  ops.Options `json:"options"`
	Markdown bool        `json:"markdown,omitempty"`
	Save     *bool       `json:"save,omitempty"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text,omitempty"`
}

// HistoryFetchRequest represents the arguments for history_fetch.
type HistoryFetchRequest struct {
	ID          string `json:"id"`
	IncludeText *bool  `json:"include_text,omitempty"`
}

// HistoryPurgeRequest represents the arguments for history_purge.
type HistoryPurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// Handler implementations

// HandleUwuify handles the uwuify tool call.
func (h *Handlers) HandleUwuify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UwuifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Text == nil {
		return errorResult(errors.NewInvalidRequest("text is required")), nil
	}

	result, err := ops.Uwuify(h.withLogger(ctx), h.db, h.cfg, ops.UwuifyInput{
		Text:     *input.Text,
		Options:  input.Options,
		Markdown: input.Markdown,
		Save:     h.save(input.Save),
		Source:   record.SourceMCP,
		Fallback: true,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUwuifyBatch handles the uwuify_batch tool call.
func (h *Handlers) HandleUwuifyBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UwuifyBatchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UwuifyBatch(h.withLogger(ctx), h.db, h.cfg, ops.BatchInput{
		Texts:    input.Texts,
		Options:  input.Options,
		Markdown: input.Markdown,
		Save:     h.save(input.Save),
		Source:   record.SourceMCP,
		Fallback: true,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Limit:  input.Limit,
		Offset: input.Offset,
		Source: input.Source,
		Text:   input.Text,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryFetch handles the history_fetch tool call.
func (h *Handlers) HandleHistoryFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryFetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:          input.ID,
		IncludeText: input.IncludeText,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryPurge handles the history_purge tool call.
func (h *Handlers) HandleHistoryPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryPurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// withLogger attaches the handler logger unless ctx already carries one.
func (h *Handlers) withLogger(ctx context.Context) context.Context {
	if zerolog.Ctx(ctx).GetLevel() != zerolog.Disabled {
		return ctx
	}
	return h.logger.WithContext(ctx)
}

// save resolves the per-call save flag. Without a database nothing is saved.
func (h *Handlers) save(requested *bool) *bool {
	if h.db == nil {
		off := false
		return &off
	}
	return requested
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: UNKNOWN error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	uErr := errors.As(err)

	errorObj := map[string]any{
		"code":    uErr.Code,
		"message": errors.Message(err),
		"status":  uErr.Status,
	}
	if uErr.Code == errors.ErrUnknown || uErr.Code == errors.ErrIO {
		errorObj["message"] = "an internal error occurred"
	} else if uErr.Details != nil {
		errorObj["details"] = uErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
