// Package markdown applies text transforms to the prose of a markdown
// document while leaving code, raw HTML, autolinks and link destinations
// byte-for-byte intact.
package markdown

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// TransformFunc rewrites one prose segment.
type TransformFunc func(string) (string, error)

// Segments returns the byte ranges of src that hold prose, in order.
func Segments(src []byte) []text.Segment {
	doc := md.Parser().Parse(text.NewReader(src))

	var segs []text.Segment
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeSpan, ast.KindCodeBlock, ast.KindFencedCodeBlock,
			ast.KindHTMLBlock, ast.KindRawHTML, ast.KindAutoLink:
			return ast.WalkSkipChildren, nil
		}
		if t, ok := n.(*ast.Text); ok && t.Segment.Len() > 0 {
			segs = append(segs, t.Segment)
		}
		return ast.WalkContinue, nil
	})

	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	// Drop overlaps so every source byte is rewritten at most once.
	out := segs[:0]
	last := 0
	for _, s := range segs {
		if s.Start < last {
			continue
		}
		out = append(out, s)
		last = s.Stop
	}
	return out
}

// Transform applies fn to each prose segment of src and splices the results
// back into the untouched markup.
func Transform(src string, fn TransformFunc) (string, error) {
	raw := []byte(src)
	segs := Segments(raw)
	if len(segs) == 0 {
		return src, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(raw))
	pos := 0
	for _, s := range segs {
		buf.Write(raw[pos:s.Start])
		out, err := fn(string(s.Value(raw)))
		if err != nil {
			return "", fmt.Errorf("segment at %d: %w", s.Start, err)
		}
		buf.WriteString(out)
		pos = s.Stop
	}
	buf.Write(raw[pos:])
	return buf.String(), nil
}

// Render converts markdown to HTML. Raw HTML in the source is omitted.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
