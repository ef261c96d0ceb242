package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/uwu/internal/db"
	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/record"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
	Source string // optional: cli, web, mcp
	Text   string // optional: only records whose input is exactly this text
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []record.Summary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// List retrieves history summaries, newest first, with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	source := strings.TrimSpace(input.Source)
	if source != "" && !record.ValidSource(source) {
		return nil, errors.NewInvalidRequest("source must be one of: cli, web, mcp")
	}

	filters := db.ListFilters{Source: source}
	if input.Text != "" {
		filters.InputHash = record.Fingerprint(input.Text)
	}

	limit, offset := clampPage(input.Limit, input.Offset)

	summaries, total, err := db.List(ctx, database, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []record.Summary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID          string
	IncludeText *bool // default: true (nil means default)
}

// FetchOutput is a full history record.
type FetchOutput struct {
	ID          string          `json:"id"`
	InputHash   string          `json:"input_hash"`
	Input       string          `json:"input,omitempty"`
	Output      string          `json:"output,omitempty"`
	InputChars  int             `json:"input_chars"`
	OutputChars int             `json:"output_chars"`
	Options     json.RawMessage `json:"options"`
	Source      string          `json:"source"`
	Markdown    bool            `json:"markdown"`
	Fallback    bool            `json:"fallback"`
	CreatedAt   int64           `json:"created_at"`
}

// Fetch retrieves one history record by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	r, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	out := &FetchOutput{
		ID:          r.ID,
		InputHash:   r.InputHash,
		Input:       r.Input,
		Output:      r.Output,
		InputChars:  r.InputChars,
		OutputChars: r.OutputChars,
		Options:     json.RawMessage(r.Options),
		Source:      r.Source,
		Markdown:    r.Markdown,
		Fallback:    r.Fallback,
		CreatedAt:   r.CreatedAt,
	}

	if input.IncludeText != nil && !*input.IncludeText {
		out.Input = ""
		out.Output = ""
	}

	return out, nil
}

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int // optional, only purge records created more than N days ago
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes history records.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if input.OlderThanDays != nil && *input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}

	count, err := db.Purge(ctx, database, input.OlderThanDays)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, olderThanDays *int) string {
	if count == 0 {
		return "No records to purge"
	}

	word := "record"
	if count > 1 {
		word = "records"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)
	if olderThanDays != nil {
		msg += fmt.Sprintf(" (created more than %d days ago)", *olderThanDays)
	}
	return msg
}
