package matrix

import (
	"fmt"
	"math/bits"
)

// SwitchBits is the number of low bitmask bits reserved for relay switches.
// Higher bits drive indicator outputs.
const SwitchBits = 32

// SwitchMask selects the switch bits of a Bitmask.
const SwitchMask Bitmask = 1<<SwitchBits - 1

// Bitmask mirrors the output registers of all expanders. Byte n is the
// output register of device n.
type Bitmask uint64

// Byte returns the byte written to device n.
func (b Bitmask) Byte(n int) uint8 {
	return uint8(b >> (8 * uint(n)))
}

// Bit reports whether bit i is set.
func (b Bitmask) Bit(i int) bool {
	return b&(1<<uint(i)) != 0
}

// With returns b with bit i forced to level.
func (b Bitmask) With(i int, level bool) Bitmask {
	if level {
		return b | 1<<uint(i)
	}
	return b &^ (1 << uint(i))
}

// Switches returns the number of switch bits set.
func (b Bitmask) Switches() int {
	return bits.OnesCount64(uint64(b & SwitchMask))
}

// String renders the five expander bytes of the default board.
func (b Bitmask) String() string {
	return b.Hex(5)
}

// Hex renders b with two hex digits per device, widening when higher bytes
// are set.
func (b Bitmask) Hex(devices int) string {
	if devices < 1 {
		devices = 1
	}
	return fmt.Sprintf("0x%0*x", 2*devices, uint64(b))
}
