package matrix

import (
	"testing"
	"time"

	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/stretchr/testify/require"
)

var eetBuses = []string{"BUS1", "BUS2", "CURR", "5V", "-5V"}

var eetConnections = [][3]string{
	{"USB1_IN", "USB1_OUT", "D4"},
	{"USB2_IN", "USB2_OUT", "D6"},
	{"USB3_IN", "USB3_OUT", "D25"},
	{"USB1_IN", "BUS1", "D5"},
	{"USB2_IN", "BUS1", "D7"},
	{"USB3_IN", "BUS1", "D31"},
	{"OUT0", "BUS1", "D17"},
	{"OUT1", "BUS1", "D16"},
	{"UART_VCC", "BUS1", "D18"},
	{"IOBUS_VCC", "BUS1", "D29"},
	{"PWR_IN", "BUS1", "D28"},
	{"PWR_OUT", "BUS2", "D19"},
	{"BUS1", "VOLT", "D21"},
	{"BUS2", "VOLT", "D22"},
	{"BUS1", "CURR", "D23"},
	{"BUS2", "CURR", "D24"},
	{"SHUNT_10R", "CURR", "D1"},
	{"SHUNT_15R", "CURR", "D2"},
	{"SHUNT_68R", "CURR", "D3"},
	{"SHUNT_78R", "CURR", "D12"},
	{"SHUNT_130R", "CURR", "D13"},
	{"AUX1", "BUS1", "D11"},
	{"AUX1", "BUS2", "D10"},
	{"AUX2", "BUS1", "D20"},
	{"AUX3", "BUS1", "D8"},
	{"AUX4", "BUS1", "D9"},
	{"5V_0R", "5V", "!D30"},
	{"5V_1K", "5V", "D30"},
	{"5V_0R", "-5V", "!D30"},
	{"5V_1K", "-5V", "D30"},
	{"5V", "BUS1", "D14"},
	{"-5V", "BUS1", "D15"},
}

var eetAddrs = []uint16{0x20, 0x21, 0x22, 0x23, 0x24}

func eetTable(t testing.TB) *Table {
	t.Helper()
	conns := make([]Connection, len(eetConnections))
	for i, c := range eetConnections {
		conns[i] = Connection{A: c[0], B: c[1], Line: MustControlLine(c[2])}
	}
	table, err := NewTable(eetBuses, conns)
	require.NoError(t, err)
	return table
}

type harness struct {
	router *Router
	sim    *expander.SimBus
	sleeps []time.Duration
}

func newHarness(t testing.TB, opts ...Option) *harness {
	t.Helper()
	h := &harness{sim: expander.NewSimBus()}
	bank, err := expander.NewBank(h.sim, eetAddrs)
	require.NoError(t, err)

	opts = append([]Option{WithSleep(func(d time.Duration) { h.sleeps = append(h.sleeps, d) })}, opts...)
	h.router, err = New(bank, eetTable(t), opts...)
	require.NoError(t, err)

	h.sim.ClearWrites()
	h.sleeps = nil
	return h
}

func (h *harness) reset() {
	h.sim.ClearWrites()
	h.sleeps = nil
}

func (h *harness) output(addr uint16) uint8 {
	v, _ := h.sim.Register(addr, expander.PCA9554OutputReg)
	return v
}
