package uwu

// Expression patterns and their replacements. Whole words first, then the
// filler-letter patterns. Both slices are index-aligned and never mutated.
var (
	expressionPatterns = []string{
		"small", "cute", "fluff", "love", "stupid", "what", "meow",
		" n", "\nn", "\tn", "qu",
	}
	expressionReplacements = []string{
		"smol", "kawaii~", "floof", "luv", "baka", "nani", "nya~",
		" ny", "\nny", "\tny", "qwu",
	}
)

// punctuationPatterns mark the insertion points for decorations.
var punctuationPatterns = []string{", ", ". ", "! "}

// fallbackSymbol is used if the decoration pool is ever empty.
const fallbackSymbol = "uwu "

// decorations is the pool drawn from after punctuation. Order matters: the
// seeded generator indexes into it.
var decorations = []string{
	"rawr x3 ",
	"OwO ",
	"UwU ",
	"o.O ",
	"-.- ",
	">w< ",
	"(⑅˘꒳˘) ",
	"(ꈍᴗꈍ) ",
	"(˘ω˘) ",
	"(U ᵕ U❁) ",
	"σωσ ",
	"òωó ",
	"(///ˬ///✿) ",
	"(U ﹏ U) ",
	"( ͡o ω ͡o ) ",
	"ʘwʘ ",
	":3 ",
	":3 ", // important enough to have twice
	"XD ",
	"nyaa~~ ",
	"mya ",
	">_< ",
	"😳 ",
	"🥺 ",
	"😳😳😳 ",
	"rawr ",
	"^^ ",
	"^•ﻌ•^ ",
	"/(^•ω•^) ",
	"(✿oωo) ",
	"👉👈 ",
	"^w^ ",
}

// letterSubstitutions maps each substituted consonant to its replacement.
var letterSubstitutions = [256]byte{
	'l': 'w',
	'r': 'w',
}
