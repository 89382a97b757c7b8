package linkspec

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Parser parses connection specs and control line identifiers.
type Parser struct {
	spec *participle.Parser[Spec]
	line *participle.Parser[Line]
}

// NewParser creates a new parser instance.
func NewParser() (*Parser, error) {
	spec, err := participle.Build[Spec](
		participle.Lexer(SpecLexer),
	)
	if err != nil {
		return nil, fmt.Errorf("linkspec: failed to build spec parser: %w", err)
	}

	line, err := participle.Build[Line](
		participle.Lexer(LineLexer),
	)
	if err != nil {
		return nil, fmt.Errorf("linkspec: failed to build line parser: %w", err)
	}

	return &Parser{spec: spec, line: line}, nil
}

// MustParser is NewParser for package-level initialization. The grammars are
// static, so a failure here is a programming error.
func MustParser() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
}

// ParseSpec parses a comma separated list of arrow chains. A blank input
// yields an empty Spec.
func (p *Parser) ParseSpec(input string) (*Spec, error) {
	spec, err := p.spec.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return spec, nil
}

// ParseLine parses a single control line identifier such as "D4" or "!D30".
// Surrounding whitespace is ignored.
func (p *Parser) ParseLine(input string) (*Line, error) {
	line, err := p.line.ParseString("", strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return line, nil
}
