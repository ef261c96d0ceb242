package ops

import (
	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/uwu"
)

// Pagination and batch limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxBatchItems    = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Options overrides the configured engine defaults for one request.
// Nil fields keep the configured value.
type Options struct {
	Lowercase          *bool `json:"lowercase,omitempty"`
	Expressions        *bool `json:"expressions,omitempty"`
	LetterSubstitution *bool `json:"letter_substitution,omitempty"`
	Stutter            *bool `json:"stutter,omitempty"`
	StutterChance      *int  `json:"stutter_chance,omitempty"`
	Decoration         *bool `json:"decoration,omitempty"`
	DecorationChance   *int  `json:"decoration_chance,omitempty"`
}

// ResolveConfig applies o on top of cfg and validates the result.
func ResolveConfig(cfg *config.Config, o Options) (uwu.Config, error) {
	c := *config.DefaultConfig()
	if cfg != nil {
		c = *cfg
	}

	setBool(&c.Lowercase, o.Lowercase)
	setBool(&c.Expressions, o.Expressions)
	setBool(&c.LetterSubstitution, o.LetterSubstitution)
	setBool(&c.Stutter, o.Stutter)
	setBool(&c.Decoration, o.Decoration)
	if o.StutterChance != nil {
		c.StutterChance = *o.StutterChance
	}
	if o.DecorationChance != nil {
		c.DecorationChance = *o.DecorationChance
	}

	return c.Engine()
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// clampPage applies limit defaults and bounds and makes offset non-negative.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}
