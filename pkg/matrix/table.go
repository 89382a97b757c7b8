package matrix

import (
	"fmt"
	"sort"
)

// Connection is one directly switchable node pair.
type Connection struct {
	A, B string
	Line ControlLine
}

// Table is the immutable, symmetric connection graph of a matrix.
type Table struct {
	nodes map[string]Node
	conns map[string]map[string]ControlLine
	pairs []Connection
}

// NewTable builds a table from the bus names and the connection triples.
// Every node not listed in buses is a leaf. The table is symmetric:
// Lookup(a, b) and Lookup(b, a) return the same line.
func NewTable(buses []string, conns []Connection) (*Table, error) {
	t := &Table{
		nodes: make(map[string]Node),
		conns: make(map[string]map[string]ControlLine),
	}

	busSet := make(map[string]bool, len(buses))
	for _, b := range buses {
		if b == "" {
			return nil, fmt.Errorf("%w: empty bus name", ErrInvalidTable)
		}
		busSet[b] = true
	}

	for _, c := range conns {
		if c.A == "" || c.B == "" {
			return nil, fmt.Errorf("%w: empty node name in %s-%s", ErrInvalidTable, c.A, c.B)
		}
		if c.A == c.B {
			return nil, fmt.Errorf("%w: %s connects to itself", ErrInvalidTable, c.A)
		}
		if !c.Line.valid() {
			return nil, fmt.Errorf("%w: %s-%s uses bit %d outside the switch range", ErrInvalidTable, c.A, c.B, c.Line.Bit)
		}
		if prev, ok := t.conns[c.A][c.B]; ok {
			if prev != c.Line {
				return nil, fmt.Errorf("%w: %s-%s is both %s and %s", ErrConflictingConnection, c.A, c.B, prev, c.Line)
			}
			continue
		}

		for _, name := range []string{c.A, c.B} {
			if _, ok := t.nodes[name]; ok {
				continue
			}
			if busSet[name] {
				t.nodes[name] = Bus(name)
			} else {
				t.nodes[name] = Leaf(name)
			}
			t.conns[name] = make(map[string]ControlLine)
		}

		t.conns[c.A][c.B] = c.Line
		t.conns[c.B][c.A] = c.Line
		t.pairs = append(t.pairs, c)
	}

	for b := range busSet {
		if _, ok := t.nodes[b]; !ok {
			return nil, fmt.Errorf("%w: bus %s has no connections", ErrInvalidTable, b)
		}
	}

	return t, nil
}

// MustTable is NewTable for compiled-in tables.
func MustTable(buses []string, conns []Connection) *Table {
	t, err := NewTable(buses, conns)
	if err != nil {
		panic(err)
	}
	return t
}

// Node returns the node called name.
func (t *Table) Node(name string) (Node, bool) {
	n, ok := t.nodes[name]
	return n, ok
}

// Lookup returns the control line connecting a and b directly.
func (t *Table) Lookup(a, b string) (ControlLine, bool) {
	l, ok := t.conns[a][b]
	return l, ok
}

// Neighbors returns the names directly connectable to name, sorted.
func (t *Table) Neighbors(name string) []string {
	out := make([]string, 0, len(t.conns[name]))
	for n := range t.conns[name] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Leaves returns all leaf names, sorted.
func (t *Table) Leaves() []string {
	return t.names(isLeaf)
}

// Buses returns all bus names, sorted.
func (t *Table) Buses() []string {
	return t.names(isBus)
}

// Connections returns the distinct connections in declaration order.
func (t *Table) Connections() []Connection {
	return append([]Connection(nil), t.pairs...)
}

// MaxBit returns the highest bit used by any control line, or -1.
func (t *Table) MaxBit() int {
	hi := -1
	for _, c := range t.pairs {
		if c.Line.Bit > hi {
			hi = c.Line.Bit
		}
	}
	return hi
}

func (t *Table) names(keep func(Node) bool) []string {
	var out []string
	for name, n := range t.nodes {
		if keep(n) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
