//go:build linux

package expander

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is I2C_SLAVE from linux/i2c-dev.h.
const i2cSlave = 0x0703

// I2CBus writes expander registers through the Linux i2c-dev interface.
type I2CBus struct {
	locator string
	dev     string
	fd      int

	mu    sync.Mutex
	slave uint16
	bound bool
}

// OpenI2C finds the adapter for usbpath and opens its /dev/i2c-N node. Only
// one bus per usbpath may be open in a process; a second call fails with
// ErrAlreadyBound until Close.
func OpenI2C(usbpath string) (*I2CBus, error) {
	n, err := FindAdapter(usbpath)
	if err != nil {
		return nil, err
	}
	if err := claim(usbpath); err != nil {
		return nil, err
	}

	bus, err := OpenI2CDevice(fmt.Sprintf("/dev/i2c-%d", n))
	if err != nil {
		release(usbpath)
		return nil, err
	}
	bus.locator = usbpath
	return bus, nil
}

// OpenI2CDevice opens an i2c-dev node directly.
func OpenI2CDevice(dev string) (*I2CBus, error) {
	fd, err := unix.Open(dev, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("expander: open %s: %w", dev, err)
	}
	return &I2CBus{dev: dev, fd: fd}, nil
}

// WriteRegister selects the slave address and writes one byte to reg.
func (b *I2CBus) WriteRegister(addr uint16, reg, value uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fd < 0 {
		return fmt.Errorf("expander: %s is closed", b.dev)
	}
	if !b.bound || b.slave != addr {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("expander: select 0x%02X on %s: %w", addr, b.dev, err)
		}
		b.slave = addr
		b.bound = true
	}

	n, err := unix.Write(b.fd, []byte{reg, value})
	if err != nil {
		return fmt.Errorf("expander: write 0x%02X reg %d on %s: %w", addr, reg, b.dev, err)
	}
	if n != 2 {
		return fmt.Errorf("expander: short write to 0x%02X on %s", addr, b.dev)
	}
	return nil
}

// Device returns the i2c-dev node path.
func (b *I2CBus) Device() string {
	return b.dev
}

// Close releases the file descriptor and the adapter claim.
func (b *I2CBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	if b.locator != "" {
		release(b.locator)
	}
	return err
}
