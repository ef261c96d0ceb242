package ops

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/errors"
)

// BatchInput contains parameters for the UwuifyBatch operation.
// Every text shares the same options.
type BatchInput struct {
	Texts    []string // 1..MaxBatchItems
	Options  Options
	Markdown bool
	Save     *bool
	Source   string
	Fallback bool
}

// BatchOutput contains one result per input text, in input order.
type BatchOutput struct {
	Items []UwuifyOutput `json:"items"`
	Count int            `json:"count"`
}

// UwuifyBatch transforms texts concurrently, bounded by cfg.BatchWorkers.
// The first failure cancels the remaining work and is returned.
func UwuifyBatch(ctx context.Context, database *sql.DB, cfg *config.Config, input BatchInput) (*BatchOutput, error) {
	if len(input.Texts) == 0 {
		return nil, errors.NewInvalidRequest("texts must not be empty")
	}
	if len(input.Texts) > MaxBatchItems {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("too many texts: %d (max %d)", len(input.Texts), MaxBatchItems))
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Reject bad options once, before any work starts.
	if _, err := ResolveConfig(cfg, input.Options); err != nil {
		return nil, err
	}

	workers := cfg.BatchWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	items := make([]UwuifyOutput, len(input.Texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range input.Texts {
		g.Go(func() error {
			out, err := Uwuify(gctx, database, cfg, UwuifyInput{
				Text:     text,
				Options:  input.Options,
				Markdown: input.Markdown,
				Save:     input.Save,
				Source:   input.Source,
				Fallback: input.Fallback,
			})
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = *out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BatchOutput{Items: items, Count: len(items)}, nil
}
