package uwu

import (
	"bytes"
	stderrors "errors"
	"sync"

	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/match"
)

// Matchers are compiled on first use and shared read-only afterwards.
var (
	expressionMatcher = sync.OnceValues(func() (*match.Matcher, error) {
		return match.Compile(expressionPatterns)
	})
	punctuationMatcher = sync.OnceValues(func() (*match.Matcher, error) {
		return match.Compile(punctuationPatterns)
	})
)

// Lowercase folds ASCII uppercase letters in place. Other bytes, including
// every byte of a multi-byte UTF-8 sequence, are left alone.
func Lowercase(buf []byte) []byte {
	for i, b := range buf {
		if 'A' <= b && b <= 'Z' {
			buf[i] = b + ('a' - 'A')
		}
	}
	return buf
}

// ReplaceExpressions substitutes every expression pattern in a single
// left-to-right pass.
func ReplaceExpressions(buf []byte) ([]byte, error) {
	m, err := expressionMatcher()
	if err != nil {
		return nil, errors.NewPatternCompilation("expressions", err)
	}

	out := bytes.NewBuffer(make([]byte, 0, len(buf)+len(buf)/8))
	if err := m.ReplaceAll(out, buf, expressionReplacements); err != nil {
		return nil, scanError("expressions", err)
	}
	return out.Bytes(), nil
}

// SubstituteLetters replaces 'l' and 'r' with 'w' in place.
func SubstituteLetters(buf []byte) []byte {
	for i, b := range buf {
		if sub := letterSubstitutions[b]; sub != 0 {
			buf[i] = sub
		}
	}
	return buf
}

// Stutter visits every space followed by an ASCII letter and, with a
// 1-in-chance draw, repeats that letter followed by a hyphen ("_h" becomes
// "_h-h"). Exactly one draw is consumed per eligible boundary.
func Stutter(buf []byte, chance uint8, rng *Rand) []byte {
	if len(buf) < 2 {
		return buf
	}

	out := make([]byte, 0, len(buf)+len(buf)/4)
	prev := 0
	for i := 0; i < len(buf)-1; i++ {
		if buf[i] != ' ' || !isASCIILetter(buf[i+1]) {
			continue
		}
		if rng.Bounded(chance) != 0 {
			continue
		}
		out = append(out, buf[prev:i+2]...)
		out = append(out, '-')
		prev = i + 1
	}

	return append(out, buf[prev:]...)
}

// Decorate finds every punctuation marker and, with a 1-in-chance draw,
// inserts a symbol from the pool right after it. Draws happen in match order.
func Decorate(buf []byte, chance uint8, rng *Rand) ([]byte, error) {
	m, err := punctuationMatcher()
	if err != nil {
		return nil, errors.NewPatternCompilation("punctuation", err)
	}

	matches := m.FindAll(buf)
	if len(matches) == 0 {
		return buf, nil
	}

	out := make([]byte, 0, len(buf)+len(matches)*8)
	prev := 0
	for _, mt := range matches {
		if rng.Bounded(chance) != 0 {
			continue
		}
		symbol, ok := Choice(rng, decorations)
		if !ok {
			symbol = fallbackSymbol
		}
		out = append(out, buf[prev:mt.End]...)
		out = append(out, symbol...)
		prev = mt.End
	}

	return append(out, buf[prev:]...), nil
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// scanError classifies a matcher failure as a buffer write or a scan error.
func scanError(stage string, err error) error {
	var werr *match.WriteError
	if stderrors.As(err, &werr) {
		return errors.NewBufferIO(stage, werr.Err)
	}
	return errors.NewPatternMatch(stage, err)
}
