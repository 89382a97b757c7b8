package linkspec

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SpecLexer tokenizes connection specs such as
// "PWR_OUT -> BUS2 -> CURR -> SHUNT_10R, USB1_IN -> USB1_OUT".
//
// A node name is everything between separators: words, dashes that do not
// start an arrow and inner whitespace, so "-5V", "FOO-" and "USB 1" are all
// single names. Arrow is listed before Dash so "->" always wins.
var SpecLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Space", Pattern: `\s+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Word", Pattern: `[^\s,\-]+`},
})

// LineLexer tokenizes control line identifiers: "D4", "!D30".
var LineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Invert", Pattern: `!`},
	{Name: "Prefix", Pattern: `D`},
	{Name: "Int", Pattern: `[0-9]+`},
})
