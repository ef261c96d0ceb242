// Package match wraps an Aho-Corasick automaton for the multi-pattern
// replacements of the expression and decoration stages.
//
// Matching uses standard semantics: a match is reported as soon as it ends,
// the longest pattern ending at that position wins, and scanning restarts
// immediately after it, so reported matches never overlap. A compiled Matcher
// is read-only and may be shared between goroutines.
package match

import (
	"errors"
	"fmt"
	"io"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// ErrNoPatterns is returned by Compile for an empty pattern table.
var ErrNoPatterns = errors.New("match: no patterns")

// ErrReplacementCount is returned by ReplaceAll when the replacement table
// does not line up with the pattern table.
var ErrReplacementCount = errors.New("match: replacement count does not match pattern count")

// Matcher is a compiled pattern table. It is immutable after Compile.
type Matcher struct {
	ac    ahocorasick.AhoCorasick
	count int
}

// Match is a single pattern occurrence in a haystack.
type Match struct {
	Pattern int
	Start   int
	End     int
}

// Compile builds a Matcher from patterns. Pattern indexes are preserved in
// reported matches; a duplicate pattern reports its first index.
func Compile(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	for i, p := range patterns {
		if p == "" {
			return nil, fmt.Errorf("match: pattern %d is empty", i)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.StandardMatch,
	})
	return &Matcher{ac: builder.Build(patterns), count: len(patterns)}, nil
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	return m.count
}

// Scan calls fn for every match in haystack, left to right. Returning false
// from fn stops the scan.
func (m *Matcher) Scan(haystack []byte, fn func(Match) bool) {
	// The library iterator resumes one byte after each match start, so it
	// also yields matches overlapping the previous one. Those are skipped.
	iter := m.ac.IterByte(haystack)
	prev := 0
	for mt := iter.Next(); mt != nil; mt = iter.Next() {
		if mt.Start() < prev {
			continue
		}
		prev = mt.End()
		if !fn(Match{Pattern: mt.Pattern(), Start: mt.Start(), End: mt.End()}) {
			return
		}
	}
}

// FindAll returns every non-overlapping match in haystack.
func (m *Matcher) FindAll(haystack []byte) []Match {
	var matches []Match
	m.Scan(haystack, func(mt Match) bool {
		matches = append(matches, mt)
		return true
	})
	return matches
}

// ReplaceAll copies haystack to w, substituting replacements[i] for every
// match of pattern i. Bytes outside matches are copied unchanged.
func (m *Matcher) ReplaceAll(w io.Writer, haystack []byte, replacements []string) error {
	if len(replacements) != m.count {
		return ErrReplacementCount
	}

	var werr error
	prev := 0
	m.Scan(haystack, func(mt Match) bool {
		if _, werr = w.Write(haystack[prev:mt.Start]); werr != nil {
			return false
		}
		if _, werr = io.WriteString(w, replacements[mt.Pattern]); werr != nil {
			return false
		}
		prev = mt.End
		return true
	})
	if werr != nil {
		return &WriteError{Err: werr}
	}

	if _, err := w.Write(haystack[prev:]); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// WriteError reports a failure of the destination writer during ReplaceAll.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "match: write failed: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
