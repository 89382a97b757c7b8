package matrix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenTraceLab/relaymatrix/pkg/linkspec"
)

var parser = linkspec.MustParser()

// ControlLine is one relay control signal: the bitmask bit that drives it and
// the level that makes the connection. "D4" is {4, true}, "!D30" is
// {30, false}.
type ControlLine struct {
	Bit        int
	ActiveHigh bool
}

// ParseControlLine parses the textual form of a control line. Only switch
// bits (below SwitchBits) are accepted.
func ParseControlLine(s string) (ControlLine, error) {
	line, err := parser.ParseLine(s)
	if err != nil {
		return ControlLine{}, fmt.Errorf("%w %q: %v", ErrUnknownSwitch, s, err)
	}
	if line.Bit >= SwitchBits {
		return ControlLine{}, fmt.Errorf("%w %q: bit %d is not a switch bit", ErrUnknownSwitch, s, line.Bit)
	}
	return ControlLine{Bit: line.Bit, ActiveHigh: !line.Inverted}, nil
}

// MustControlLine is ParseControlLine for compiled-in tables.
func MustControlLine(s string) ControlLine {
	l, err := ParseControlLine(s)
	if err != nil {
		panic(err)
	}
	return l
}

func (c ControlLine) String() string {
	if c.ActiveHigh {
		return fmt.Sprintf("D%d", c.Bit)
	}
	return fmt.Sprintf("!D%d", c.Bit)
}

func (c ControlLine) valid() bool {
	return c.Bit >= 0 && c.Bit < SwitchBits
}

// SwitchSet is a set of control lines to activate together.
type SwitchSet map[ControlLine]struct{}

// NewSwitchSet builds a set from lines.
func NewSwitchSet(lines ...ControlLine) SwitchSet {
	s := make(SwitchSet, len(lines))
	for _, l := range lines {
		s.Add(l)
	}
	return s
}

func (s SwitchSet) Add(l ControlLine) {
	s[l] = struct{}{}
}

func (s SwitchSet) Contains(l ControlLine) bool {
	_, ok := s[l]
	return ok
}

// Lines returns the members ordered by bit, inverted before normal.
func (s SwitchSet) Lines() []ControlLine {
	lines := make([]ControlLine, 0, len(s))
	for l := range s {
		lines = append(lines, l)
	}
	sortLines(lines)
	return lines
}

func (s SwitchSet) String() string {
	return joinLines(s.Lines())
}

// conflicts returns the bits requested both high and low.
func (s SwitchSet) conflicts() []ControlLine {
	var out []ControlLine
	for l := range s {
		if l.ActiveHigh && s.Contains(ControlLine{Bit: l.Bit}) {
			out = append(out, ControlLine{Bit: l.Bit}, l)
		}
	}
	sortLines(out)
	return out
}

func sortLines(lines []ControlLine) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Bit != lines[j].Bit {
			return lines[i].Bit < lines[j].Bit
		}
		return !lines[i].ActiveHigh && lines[j].ActiveHigh
	})
}

func joinLines(lines []ControlLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}
