package uwu

import (
	"github.com/hpungsan/uwu/internal/errors"
)

// Default frequency parameters: stutter one word in four, decorate every
// punctuation mark.
const (
	DefaultStutterChance    uint8 = 4
	DefaultDecorationChance uint8 = 1
)

// Config selects which stages run. Chances are "1 in N": a value of 1 applies
// the stage at every eligible position, 2 at half of them on average.
// Config is a plain value; copies never alias.
type Config struct {
	// Lowercase folds ASCII letters to lowercase, e.g. 'Hello' becomes 'hello'.
	// The other stages assume lowercase input and may misbehave without it.
	Lowercase bool `json:"lowercase"`
	// Expressions replaces phrases, e.g. 'what' becomes 'nani'.
	Expressions bool `json:"expressions"`
	// LetterSubstitution replaces 'l' and 'r' with 'w', e.g. 'lovely' becomes 'wovewy'.
	LetterSubstitution bool `json:"letter_substitution"`
	// Stutter duplicates the first letter of some words, e.g. 'hello' becomes 'h-hello'.
	Stutter       bool  `json:"stutter"`
	StutterChance uint8 `json:"stutter_chance"`
	// Decoration adds a symbol after punctuation, e.g. 'goodbye. ' becomes 'goodbye. OwO '.
	Decoration       bool  `json:"decoration"`
	DecorationChance uint8 `json:"decoration_chance"`
}

// Default returns a configuration with every stage enabled.
func Default() Config {
	return Config{
		Lowercase:          true,
		Expressions:        true,
		LetterSubstitution: true,
		Stutter:            true,
		StutterChance:      DefaultStutterChance,
		Decoration:         true,
		DecorationChance:   DefaultDecorationChance,
	}
}

// Validate reports an enabled random stage whose chance is 0.
func (c Config) Validate() error {
	if c.Stutter && c.StutterChance == 0 {
		return errors.NewInvalidConfig("stutter_chance", "must be >= 1 when stutter is enabled")
	}
	if c.Decoration && c.DecorationChance == 0 {
		return errors.NewInvalidConfig("decoration_chance", "must be >= 1 when decoration is enabled")
	}
	return nil
}

// Builder assembles a Config one feature at a time. Every method returns a
// new Builder, so a partially built value can be shared and extended safely.
//
//	cfg := uwu.NewBuilder().
//		Lowercase().
//		Expressions().
//		LetterSubstitution().
//		Stutter(4).
//		Decoration(1).
//		Build()
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder with every stage disabled.
func NewBuilder() Builder {
	return Builder{}
}

// Lowercase enables case folding.
func (b Builder) Lowercase() Builder {
	b.cfg.Lowercase = true
	return b
}

// Expressions enables expression replacement.
func (b Builder) Expressions() Builder {
	b.cfg.Expressions = true
	return b
}

// LetterSubstitution enables the l/r to w substitution.
func (b Builder) LetterSubstitution() Builder {
	b.cfg.LetterSubstitution = true
	return b
}

// Stutter enables stutter with a 1-in-chance frequency.
func (b Builder) Stutter(chance uint8) Builder {
	b.cfg.Stutter = true
	b.cfg.StutterChance = chance
	return b
}

// Decoration enables decorations after punctuation with a 1-in-chance frequency.
func (b Builder) Decoration(chance uint8) Builder {
	b.cfg.Decoration = true
	b.cfg.DecorationChance = chance
	return b
}

// Build returns the assembled Config.
func (b Builder) Build() Config {
	return b.cfg
}
