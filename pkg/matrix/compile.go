package matrix

import (
	"fmt"
	"sort"
	"strings"
)

// Compile validates a connection spec and returns the union of the control
// lines its paths need. It has no side effects. The first invalid path
// aborts the whole spec.
//
// Each path must name known nodes, must not contain a node twice, must start
// and end at a leaf with only buses in between, and every hop must be a
// direct connection.
func (t *Table) Compile(spec string) (SwitchSet, error) {
	parsed, err := parser.ParseSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedSpec, spec, err)
	}

	set := make(SwitchSet)
	for _, p := range parsed.Paths {
		if err := t.compilePath(p.Nodes(), set); err != nil {
			return nil, err
		}
	}

	if c := set.conflicts(); len(c) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConflictingLevels, joinLines(c))
	}
	return set, nil
}

func (t *Table) compilePath(names []string, set SwitchSet) error {
	// A node may appear only once anywhere in a path, not just in
	// consecutive hops. This is checked before node lookup so "A -> A" is
	// always reported as a duplicate.
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	var dups []string
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			dups = append(dups, sorted[i])
		}
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateElement, strings.Join(uniqueSorted(dups), ", "))
	}

	var unknown []string
	nodes := make([]Node, 0, len(names))
	for _, name := range names {
		n, ok := t.nodes[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		nodes = append(nodes, n)
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownElement, strings.Join(uniqueSorted(unknown), ", "))
	}

	first, last := nodes[0], nodes[len(nodes)-1]
	if !isLeaf(first) {
		return fmt.Errorf("%w: first element %s is a bus", ErrLeafPlacement, first.Name())
	}
	if !isLeaf(last) {
		return fmt.Errorf("%w: last element %s is a bus", ErrLeafPlacement, last.Name())
	}

	if len(nodes) < 2 {
		return fmt.Errorf("%w: %s", ErrShortPath, strings.Join(names, " -> "))
	}

	var leaves []string
	for _, n := range nodes[1 : len(nodes)-1] {
		if !isBus(n) {
			leaves = append(leaves, n.Name())
		}
	}
	if len(leaves) > 0 {
		return fmt.Errorf("%w: %s", ErrInteriorPlacement, strings.Join(leaves, ", "))
	}

	for i := 1; i < len(nodes); i++ {
		prev, next := nodes[i-1].Name(), nodes[i].Name()
		line, ok := t.Lookup(prev, next)
		if !ok {
			return fmt.Errorf("%w between %s and %s", ErrNoConnection, prev, next)
		}
		set.Add(line)
	}
	return nil
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
