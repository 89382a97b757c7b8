package matrix

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var validSpecs = []string{
	"",
	"USB1_IN -> USB1_OUT",
	"USB2_IN -> USB2_OUT",
	"USB1_IN -> USB1_OUT, USB3_IN -> USB3_OUT",
	"PWR_OUT -> BUS2 -> CURR -> SHUNT_10R",
	"PWR_IN -> BUS1 -> CURR -> SHUNT_130R",
	"5V_0R -> 5V -> BUS1 -> OUT0",
	"5V_1K -> 5V -> BUS1 -> OUT0",
	"5V_1K -> -5V -> BUS1 -> OUT1, USB2_IN -> USB2_OUT",
	"AUX1 -> BUS2 -> VOLT, AUX2 -> BUS1 -> UART_VCC",
}

// expectPath reports whether names form a valid path and, if so, the lines
// it needs.
func expectPath(table *Table, names []string) (SwitchSet, bool) {
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			return nil, false
		}
		seen[n] = true
		if _, ok := table.Node(n); !ok {
			return nil, false
		}
	}
	if len(names) < 2 {
		return nil, false
	}
	for i, n := range names {
		node, _ := table.Node(n)
		endpoint := i == 0 || i == len(names)-1
		if endpoint != isLeaf(node) {
			return nil, false
		}
	}

	set := make(SwitchSet)
	for i := 1; i < len(names); i++ {
		l, ok := table.Lookup(names[i-1], names[i])
		if !ok {
			return nil, false
		}
		set.Add(l)
	}
	if len(set.conflicts()) > 0 {
		return nil, false
	}
	return set, true
}

func switchState(dev map[uint16]uint8) Bitmask {
	var bm Bitmask
	for i, addr := range eetAddrs[:SwitchBits/8] {
		bm |= Bitmask(dev[addr]) << (8 * uint(i))
	}
	return bm
}

func TestCompileProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	table := eetTable(t)
	names := append(table.Leaves(), table.Buses()...)
	names = append(names, "BOGUS")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("compile accepts exactly the valid paths", prop.ForAll(
		func(idx []int) bool {
			if len(idx) == 0 {
				return true
			}
			path := make([]string, len(idx))
			for i, j := range idx {
				path[i] = names[j]
			}

			want, valid := expectPath(table, path)
			got, err := table.Compile(strings.Join(path, " -> "))
			if !valid {
				return err != nil && IsValidation(err) && got == nil
			}
			if err != nil || len(got) != len(want) {
				return false
			}
			for l := range want {
				if !got.Contains(l) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(names)-1)),
	))

	properties.Property("connections are symmetric", prop.ForAll(
		func(i, j int) bool {
			a, aok := table.Lookup(names[i], names[j])
			b, bok := table.Lookup(names[j], names[i])
			return aok == bok && a == b
		},
		gen.IntRange(0, len(names)-1),
		gen.IntRange(0, len(names)-1),
	))

	properties.TestingRun(t)
}

func TestRouterProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("active switches match the last successful link", prop.ForAll(
		func(seq []int) bool {
			h := newHarness(t)
			for _, i := range seq {
				if err := h.router.Link(validSpecs[i], false); err != nil {
					return false
				}
			}
			if len(seq) == 0 {
				return h.router.Active() == 0
			}

			set, _ := h.router.Table().Compile(validSpecs[seq[len(seq)-1]])
			var want Bitmask
			for l := range set {
				want = want.With(l.Bit, l.ActiveHigh)
			}
			return h.router.Active()&SwitchMask == want
		},
		gen.SliceOf(gen.IntRange(0, len(validSpecs)-1)),
	))

	properties.Property("relinking the active spec writes nothing", prop.ForAll(
		func(i int) bool {
			h := newHarness(t)
			if err := h.router.Link(validSpecs[i], false); err != nil {
				return false
			}
			h.reset()
			if err := h.router.Link(validSpecs[i], false); err != nil {
				return false
			}
			return h.sim.WriteCount() == 0 && len(h.sleeps) == 0
		},
		gen.IntRange(0, len(validSpecs)-1),
	))

	properties.Property("old and new connections never coexist", prop.ForAll(
		func(from, to int) bool {
			h := newHarness(t)
			if err := h.router.Link(validSpecs[from], false); err != nil {
				return false
			}
			old := h.router.Active() & SwitchMask

			dev := make(map[uint16]uint8)
			for i, addr := range eetAddrs {
				dev[addr] = h.router.Active().Byte(i)
			}
			var states []Bitmask
			h.sim.OnWrite = func(w expander.Write) error {
				dev[w.Addr] = w.Value
				states = append(states, switchState(dev))
				return nil
			}

			if err := h.router.Link(validSpecs[to], false); err != nil {
				return false
			}
			next := h.router.Active() & SwitchMask
			for _, s := range states {
				if s&^old != 0 && s&^next != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(validSpecs)-1),
		gen.IntRange(0, len(validSpecs)-1),
	))

	properties.Property("rejected specs leave the hardware alone", prop.ForAll(
		func(i int, junk string) bool {
			h := newHarness(t)
			if err := h.router.Link(validSpecs[i], false); err != nil {
				return false
			}
			before := h.router.Active()
			h.reset()

			if err := h.router.Link("BUS1 -> "+junk, false); err == nil {
				return false
			}
			return h.sim.WriteCount() == 0 && h.router.Active() == before && !h.router.Uncertain()
		},
		gen.IntRange(0, len(validSpecs)-1),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
