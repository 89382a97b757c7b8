package expander

import (
	"errors"
	"fmt"
)

// PCA9554 register numbers. The output register holds the driven level of
// all eight pins; a zero bit in the configuration register makes the pin an
// output.
const (
	PCA9554OutputReg uint8 = 1
	PCA9554ConfigReg uint8 = 3
)

// Bus abstracts the transport used to reach the port expanders. Writes are
// synchronous: when WriteRegister returns nil the value is on the device.
type Bus interface {
	WriteRegister(addr uint16, reg, value uint8) error
}

// ErrNotSupported is returned by transports that are unavailable on the
// running platform.
var ErrNotSupported = errors.New("expander: not supported on this platform")

// Bank is the ordered list of expanders making up one switch matrix. Device
// i owns bits [8*i, 8*i+8) of the matrix bitmask.
type Bank struct {
	bus       Bus
	addrs     []uint16
	outputReg uint8
	configReg uint8
}

// NewBank binds the device addresses to a bus using the PCA9554 register
// layout.
func NewBank(bus Bus, addrs []uint16) (*Bank, error) {
	return NewBankWithRegisters(bus, addrs, PCA9554OutputReg, PCA9554ConfigReg)
}

// NewBankWithRegisters is NewBank for expanders with a different register
// map.
func NewBankWithRegisters(bus Bus, addrs []uint16, outputReg, configReg uint8) (*Bank, error) {
	if bus == nil {
		return nil, fmt.Errorf("expander: bus is nil")
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("expander: bank has no devices")
	}
	if len(addrs) > 8 {
		return nil, fmt.Errorf("expander: %d devices exceed the 64 bit state", len(addrs))
	}
	seen := make(map[uint16]bool, len(addrs))
	for _, addr := range addrs {
		if addr > 0x7F {
			return nil, fmt.Errorf("expander: address 0x%02X is not a 7 bit I2C address", addr)
		}
		if seen[addr] {
			return nil, fmt.Errorf("expander: duplicate address 0x%02X", addr)
		}
		seen[addr] = true
	}

	return &Bank{
		bus:       bus,
		addrs:     append([]uint16(nil), addrs...),
		outputReg: outputReg,
		configReg: configReg,
	}, nil
}

// Len returns the number of devices in the bank.
func (b *Bank) Len() int {
	return len(b.addrs)
}

// Bits returns the number of output bits the bank provides.
func (b *Bank) Bits() int {
	return 8 * len(b.addrs)
}

// Addr returns the bus address of device i.
func (b *Bank) Addr(i int) uint16 {
	return b.addrs[i]
}

// Bus returns the underlying transport.
func (b *Bank) Bus() Bus {
	return b.bus
}

// Init drives every output low and then switches all pins to output mode.
// The order matters: an expander powers up with all pins as inputs, and
// switching to output before the output register is cleared would briefly
// drive whatever level the register held.
func (b *Bank) Init() error {
	for _, addr := range b.addrs {
		if err := b.bus.WriteRegister(addr, b.outputReg, 0); err != nil {
			return err
		}
		if err := b.bus.WriteRegister(addr, b.configReg, 0); err != nil {
			return err
		}
	}
	return nil
}

// WriteOutput sets the output register of device i.
func (b *Bank) WriteOutput(i int, value uint8) error {
	if i < 0 || i >= len(b.addrs) {
		return fmt.Errorf("expander: device index %d out of range", i)
	}
	return b.bus.WriteRegister(b.addrs[i], b.outputReg, value)
}
