// Package uwu converts text to an uwuified version.
//
// A Pipeline pads the input with one space on each side, runs the enabled
// stages in a fixed order (lowercase, expressions, letter substitution,
// stutter, decoration), strips the padding and decodes the result as UTF-8,
// replacing invalid sequences. Stutter and decoration draw from their own
// generator seeded with Seed, so output is reproducible for a given input and
// Config and one stage's draws never depend on another stage being enabled.
//
// Quick start:
//
//	out, err := uwu.Uwuify("Hello world!")
//
// Or, with more control:
//
//	cfg := uwu.NewBuilder().Lowercase().LetterSubstitution().Stutter(2).Build()
//	out, err := uwu.Transform("Hello world!", cfg)
package uwu

import (
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"

	"github.com/hpungsan/uwu/internal/errors"
)

// stage is one buffer transform. The buffer passed to apply is owned by the
// running pipeline and may be modified in place.
type stage struct {
	name    string
	enabled func(Config) bool
	apply   func(buf []byte, cfg Config) ([]byte, error)
}

// stages run in this order; configuration only skips entries.
var stages = []stage{
	{
		name:    "lowercase",
		enabled: func(c Config) bool { return c.Lowercase },
		apply: func(buf []byte, _ Config) ([]byte, error) {
			return Lowercase(buf), nil
		},
	},
	{
		name:    "expressions",
		enabled: func(c Config) bool { return c.Expressions },
		apply: func(buf []byte, _ Config) ([]byte, error) {
			return ReplaceExpressions(buf)
		},
	},
	{
		name:    "letter_substitution",
		enabled: func(c Config) bool { return c.LetterSubstitution },
		apply: func(buf []byte, _ Config) ([]byte, error) {
			return SubstituteLetters(buf), nil
		},
	},
	{
		name:    "stutter",
		enabled: func(c Config) bool { return c.Stutter },
		apply: func(buf []byte, c Config) ([]byte, error) {
			return Stutter(buf, c.StutterChance, newStageRand()), nil
		},
	},
	{
		name:    "decoration",
		enabled: func(c Config) bool { return c.Decoration },
		apply: func(buf []byte, c Config) ([]byte, error) {
			return Decorate(buf, c.DecorationChance, newStageRand())
		},
	},
}

// StageNames lists the stages in execution order.
func StageNames() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Pipeline is a validated Config ready to run. It holds no mutable state and
// may be shared between goroutines.
type Pipeline struct {
	cfg    Config
	logger zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger makes the pipeline log each stage at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline validates cfg and returns a Pipeline for it.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run converts input. Any stage failure aborts the run; no partial output is
// returned.
func (p *Pipeline) Run(input string) (string, error) {
	buf := make([]byte, 0, len(input)+2)
	buf = append(buf, ' ')
	buf = append(buf, input...)
	buf = append(buf, ' ')

	for _, s := range stages {
		if !s.enabled(p.cfg) {
			continue
		}
		in := len(buf)
		out, err := s.apply(buf, p.cfg)
		if err != nil {
			p.logger.Debug().Err(err).Str("stage", s.name).Msg("stage failed")
			return "", err
		}
		buf = out
		p.logger.Debug().Str("stage", s.name).Int("bytes_in", in).Int("bytes_out", len(buf)).Msg("stage applied")
	}

	return decodeLossy(trimPadding(buf))
}

// trimPadding removes one trailing and one leading space, if present.
func trimPadding(buf []byte) []byte {
	if n := len(buf); n > 0 && buf[n-1] == ' ' {
		buf = buf[:n-1]
	}
	if len(buf) > 0 && buf[0] == ' ' {
		buf = buf[1:]
	}
	return buf
}

// decodeLossy converts buf to a string, replacing invalid UTF-8 with U+FFFD.
func decodeLossy(buf []byte) (string, error) {
	if utf8.Valid(buf) {
		return string(buf), nil
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(buf)
	if err != nil {
		return "", errors.NewUnknown(err)
	}
	return string(out), nil
}

// Transform converts input with cfg.
func Transform(input string, cfg Config) (string, error) {
	p, err := NewPipeline(cfg)
	if err != nil {
		return "", err
	}
	return p.Run(input)
}

// Uwuify converts input with the Default configuration.
func Uwuify(input string) (string, error) {
	return Transform(input, Default())
}
