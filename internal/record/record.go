package record

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/uwu/internal/uwu"
)

// Sources a record can originate from.
const (
	SourceCLI = "cli"
	SourceWeb = "web"
	SourceMCP = "mcp"
)

// PreviewChars is the rune length of Summary.Preview.
const PreviewChars = 80

// Record is one stored transform in the history database.
type Record struct {
	// ID is a ULID, so records sort by creation time
	ID string

	// InputHash is the xxhash64 fingerprint of Input, hex encoded
	InputHash string

	Input  string
	Output string

	// InputChars and OutputChars count runes, not bytes
	InputChars  int
	OutputChars int

	// Options is the engine configuration used, JSON encoded
	Options string

	// Source is one of SourceCLI, SourceWeb, SourceMCP
	Source string

	// Markdown is true when only prose segments were transformed
	Markdown bool

	// Fallback is true when the engine failed and Output is the untouched input
	Fallback bool

	// CreatedAt is the Unix timestamp when the transform ran
	CreatedAt int64
}

// New builds a record for a finished transform.
func New(input, output string, cfg uwu.Config, source string) (*Record, error) {
	options, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	return &Record{
		ID:          ulid.Make().String(),
		InputHash:   Fingerprint(input),
		Input:       input,
		Output:      output,
		InputChars:  CountChars(input),
		OutputChars: CountChars(output),
		Options:     string(options),
		Source:      source,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// Fingerprint returns the hex xxhash64 digest of s.
func Fingerprint(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// ValidSource reports whether s names a known source.
func ValidSource(s string) bool {
	switch s {
	case SourceCLI, SourceWeb, SourceMCP:
		return true
	}
	return false
}
