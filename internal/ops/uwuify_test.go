package ops

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/db"
	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/record"
)

func TestUwuify_Default(t *testing.T) {
	out, err := Uwuify(context.Background(), nil, nil, UwuifyInput{Text: "very nice"})
	if err != nil {
		t.Fatalf("Uwuify failed: %v", err)
	}
	if out.Output != "vewy nyice" {
		t.Errorf("Output = %q, want %q", out.Output, "vewy nyice")
	}
	if out.ID != "" {
		t.Errorf("ID = %q, want empty when not saved", out.ID)
	}
	if out.Fallback {
		t.Error("Fallback = true, want false")
	}
}

func TestUwuify_Vectors(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello world!", "hewwo wowwd! o.O"},
		{"master! suki!", "mastew! o.O suki! ^•ﻌ•^"},
		{"The quick brown fox jumps over the lazy dog", "the qwuick b-bwown fox j-jumps ovew the wazy dog"},
		{"", ""},
	}
	for _, tt := range tests {
		out, err := Uwuify(context.Background(), nil, nil, UwuifyInput{Text: tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.Output, "input %q", tt.in)
	}
}

func TestUwuify_Options(t *testing.T) {
	out, err := Uwuify(context.Background(), nil, nil, UwuifyInput{
		Text: "Very Nice",
		Options: Options{
			Expressions: boolPtr(false),
			Stutter:     boolPtr(false),
			Decoration:  boolPtr(false),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "vewy nice", out.Output)
	assert.False(t, out.Config.Stutter)
}

func TestUwuify_Markdown(t *testing.T) {
	out, err := Uwuify(context.Background(), nil, nil, UwuifyInput{
		Text:     "very `really` nice",
		Markdown: true,
		Options:  Options{Stutter: boolPtr(false), Decoration: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Output, "vewy `really` "), "got %q", out.Output)
	assert.Contains(t, out.Output, "nyice")
}

func TestUwuify_InvalidOptions(t *testing.T) {
	// Fallback never masks invalid options.
	_, err := Uwuify(context.Background(), nil, nil, UwuifyInput{
		Text:     "x",
		Options:  Options{StutterChance: intPtr(0)},
		Fallback: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestUwuify_InvalidSource(t *testing.T) {
	_, err := Uwuify(context.Background(), nil, nil, UwuifyInput{Text: "x", Source: "email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestUwuify_TooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxInputChars = 3

	for _, source := range []string{record.SourceWeb, record.SourceMCP} {
		_, err := Uwuify(context.Background(), nil, cfg, UwuifyInput{Text: "four", Source: source})
		require.Error(t, err, source)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), source)

		// Runes, not bytes.
		_, err = Uwuify(context.Background(), nil, cfg, UwuifyInput{Text: "ʘwʘ", Source: source})
		assert.NoError(t, err, source)
	}
}

func TestUwuify_CLIInputUncapped(t *testing.T) {
	text := strings.Repeat("a", config.DefaultConfig().MaxInputChars+1)

	out, err := Uwuify(context.Background(), nil, nil, UwuifyInput{Text: text, Source: record.SourceCLI})
	require.NoError(t, err)
	assert.Contains(t, out.Output, text)

	_, err = Uwuify(context.Background(), nil, nil, UwuifyInput{Text: text, Source: record.SourceWeb})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestUwuify_MaxInputCharsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxInputChars = 0

	_, err := Uwuify(context.Background(), nil, cfg, UwuifyInput{Text: strings.Repeat("a", 200000), Source: record.SourceMCP})
	assert.NoError(t, err)
}

func TestUwuify_SaveWithoutDatabase(t *testing.T) {
	_, err := Uwuify(context.Background(), nil, nil, UwuifyInput{Text: "x", Save: boolPtr(true)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestUwuify_Save(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	out, err := Uwuify(ctx, database, nil, UwuifyInput{
		Text:   "very nice",
		Save:   boolPtr(true),
		Source: record.SourceWeb,
	})
	require.NoError(t, err)
	require.Len(t, out.ID, 26)

	r, err := db.GetByID(ctx, database, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "very nice", r.Input)
	assert.Equal(t, "vewy nyice", r.Output)
	assert.Equal(t, record.SourceWeb, r.Source)
	assert.Equal(t, record.Fingerprint("very nice"), r.InputHash)
}

func TestUwuify_HistoryFromConfig(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	cfg := config.DefaultConfig()
	cfg.History = true

	out, err := Uwuify(ctx, database, cfg, UwuifyInput{Text: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)

	// Explicit Save=false wins over config.
	out, err = Uwuify(ctx, database, cfg, UwuifyInput{Text: "hi", Save: boolPtr(false)})
	require.NoError(t, err)
	assert.Empty(t, out.ID)
}

func TestUwuify_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Uwuify(ctx, nil, nil, UwuifyInput{Text: "x"})
	assert.Error(t, err)
}

func TestUwuify_LogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	_, err := Uwuify(ctx, nil, nil, UwuifyInput{Text: "very nice"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"stage":"lowercase"`)
}
