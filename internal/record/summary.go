package record

// Summary represents a record's metadata without the full input and output.
// Used by history listings to reduce data transfer.
type Summary struct {
	ID          string `json:"id"`
	InputHash   string `json:"input_hash"`
	InputChars  int    `json:"input_chars"`
	OutputChars int    `json:"output_chars"`

	// Preview is the start of the output, at most PreviewChars runes
	Preview string `json:"preview"`

	Source    string `json:"source"`
	Markdown  bool   `json:"markdown"`
	Fallback  bool   `json:"fallback"`
	CreatedAt int64  `json:"created_at"`
}

// ToSummary converts a Record to a Summary by stripping the text content.
func (r *Record) ToSummary() Summary {
	return Summary{
		ID:          r.ID,
		InputHash:   r.InputHash,
		InputChars:  r.InputChars,
		OutputChars: r.OutputChars,
		Preview:     Preview(r.Output, PreviewChars),
		Source:      r.Source,
		Markdown:    r.Markdown,
		Fallback:    r.Fallback,
		CreatedAt:   r.CreatedAt,
	}
}

// Preview truncates s to maxChars runes, appending "..." when cut.
func Preview(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
