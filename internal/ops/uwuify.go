package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/db"
	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/markdown"
	"github.com/hpungsan/uwu/internal/record"
	"github.com/hpungsan/uwu/internal/uwu"
)

// UwuifyInput contains parameters for the Uwuify operation.
type UwuifyInput struct {
	Text     string  // may be empty
	Options  Options // overrides on top of the configured defaults
	Markdown bool    // transform prose only, keep code and markup
	Save     *bool   // default: cfg.History
	Source   string  // default: record.SourceCLI

	// Fallback returns the input unchanged, flagged, when the engine fails
	// instead of returning the error. Invalid options are still rejected.
	Fallback bool
}

// UwuifyOutput contains the result of the Uwuify operation.
type UwuifyOutput struct {
	ID       string     `json:"id,omitempty"`
	Output   string     `json:"output"`
	Fallback bool       `json:"fallback,omitempty"`
	Config   uwu.Config `json:"config"`
}

// Uwuify transforms one text and optionally records it in history.
// The logger is taken from ctx (zerolog.Ctx).
func Uwuify(ctx context.Context, database *sql.DB, cfg *config.Config, input UwuifyInput) (*UwuifyOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewUnknown(err)
	}

	if input.Source == "" {
		input.Source = record.SourceCLI
	}
	if !record.ValidSource(input.Source) {
		return nil, errors.NewInvalidRequest("source must be one of: cli, web, mcp")
	}
	// Local CLI input is not capped.
	if cfg.MaxInputChars > 0 && input.Source != record.SourceCLI {
		if n := record.CountChars(input.Text); n > cfg.MaxInputChars {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("text too large: %d chars (max %d)", n, cfg.MaxInputChars))
		}
	}

	save := cfg.History
	if input.Save != nil {
		save = *input.Save
	}
	if save && database == nil {
		return nil, errors.NewInvalidRequest("history database is not available")
	}

	engineCfg, err := ResolveConfig(cfg, input.Options)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	pipeline, err := uwu.NewPipeline(engineCfg, uwu.WithLogger(*logger))
	if err != nil {
		return nil, err
	}

	var output string
	if input.Markdown {
		output, err = markdown.Transform(input.Text, pipeline.Run)
	} else {
		output, err = pipeline.Run(input.Text)
	}

	out := &UwuifyOutput{Output: output, Config: engineCfg}
	if err != nil {
		if !input.Fallback {
			return nil, errors.As(err)
		}
		logger.Warn().Err(err).Str("source", input.Source).Msg("transform failed, returning input unchanged")
		out.Output = input.Text
		out.Fallback = true
	}

	if save {
		r, err := record.New(input.Text, out.Output, engineCfg, input.Source)
		if err != nil {
			return nil, errors.NewUnknown(err)
		}
		r.Markdown = input.Markdown
		r.Fallback = out.Fallback
		if err := db.Insert(ctx, database, r); err != nil {
			return nil, err
		}
		out.ID = r.ID
		logger.Debug().Str("id", r.ID).Str("input_hash", r.InputHash).Msg("transform saved")
	}

	return out, nil
}
