package linkspec

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Spec is a parsed connection spec: the full set of paths a caller wants
// active at the same time. Empty path tokens ("", "A -> B, , C -> D") are
// dropped by the grammar.
type Spec struct {
	Paths []*Path `Space? ( @@ )? ( Comma Space? @@? )*`
}

// Path is one arrow chain, in the order the caller wrote it.
type Path struct {
	Pos   lexer.Position
	Names []*Name `@@ ( Arrow Space? @@ )*`
}

// Name is the raw text of one node, possibly with trailing whitespace.
type Name struct {
	Parts []string `@( Word | Dash ) @( Word | Dash | Space )*`
}

// String returns the name with surrounding whitespace removed.
func (n *Name) String() string {
	return strings.TrimSpace(strings.Join(n.Parts, ""))
}

// Nodes returns the trimmed node names of the path.
func (p *Path) Nodes() []string {
	out := make([]string, len(p.Names))
	for i, n := range p.Names {
		out[i] = n.String()
	}
	return out
}

// String renders the path the way it is written in a spec.
func (p *Path) String() string {
	return strings.Join(p.Nodes(), " -> ")
}

// Empty reports whether the spec names no path at all.
func (s *Spec) Empty() bool {
	return len(s.Paths) == 0
}

// Line is a control line identifier. "Dn" drives bit n high, "!Dn" drives it
// low.
type Line struct {
	Inverted bool `@Invert?`
	Bit      int  `Prefix @Int`
}
