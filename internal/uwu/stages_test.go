package uwu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowercase(t *testing.T) {
	assert.Equal(t, []byte(" hello, world! "), Lowercase([]byte(" HeLLo, World! ")))
}

func TestSubstituteLetters(t *testing.T) {
	assert.Equal(t, []byte("wovewy Wwaw"), SubstituteLetters([]byte("lovely Rlar")))
}

func TestReplaceExpressions(t *testing.T) {
	got, err := ReplaceExpressions([]byte(" what a cute small meow "))
	require.NoError(t, err)
	assert.Equal(t, " nani a kawaii~ smol nya~ ", string(got))
}

func TestReplaceExpressions_SinglePass(t *testing.T) {
	// "nani" contains " n" only after a replacement; it is not rescanned.
	got, err := ReplaceExpressions([]byte(" what "))
	require.NoError(t, err)
	assert.Equal(t, " nani ", string(got))
}

func TestStutter_ShortBuffers(t *testing.T) {
	assert.Equal(t, []byte(""), Stutter([]byte(""), 1, newStageRand()))
	assert.Equal(t, []byte(" "), Stutter([]byte(" "), 1, newStageRand()))
	assert.Equal(t, []byte(" a-a"), Stutter([]byte(" a"), 1, newStageRand()))
}

func TestStutter_OneDrawPerBoundary(t *testing.T) {
	// Three eligible boundaries consume three draws; non-letters consume none.
	r := newStageRand()
	Stutter([]byte(" a 1 b . c "), 4, r)

	ref := newStageRand()
	for i := 0; i < 3; i++ {
		ref.Bounded(4)
	}
	assert.Equal(t, ref.Uint64(), r.Uint64())
}

func TestDecorate_NoPunctuation(t *testing.T) {
	in := []byte(" plain words ")
	got, err := Decorate(in, 1, newStageRand())
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestDecorate_InsertsFromPool(t *testing.T) {
	got, err := Decorate([]byte(" a, b "), 1, newStageRand())
	require.NoError(t, err)
	assert.Equal(t, " a, o.O b ", string(got))
}

func TestDecorationPool(t *testing.T) {
	assert.Len(t, decorations, 32)
	assert.Equal(t, "o.O ", decorations[3])
	assert.Equal(t, "^•ﻌ•^ ", decorations[27])
	for _, d := range decorations {
		assert.NotContains(t, d, ", ")
		assert.NotContains(t, d, ". ")
		assert.NotContains(t, d, "! ")
	}
}

func TestExpressionTablesAligned(t *testing.T) {
	assert.Equal(t, len(expressionPatterns), len(expressionReplacements))
}
