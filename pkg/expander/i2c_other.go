//go:build !linux

package expander

// I2CBus is only available on Linux.
type I2CBus struct{}

// OpenI2C returns ErrNotSupported outside Linux.
func OpenI2C(usbpath string) (*I2CBus, error) {
	return nil, ErrNotSupported
}

// OpenI2CDevice returns ErrNotSupported outside Linux.
func OpenI2CDevice(dev string) (*I2CBus, error) {
	return nil, ErrNotSupported
}

func (b *I2CBus) WriteRegister(addr uint16, reg, value uint8) error {
	return ErrNotSupported
}

func (b *I2CBus) Device() string {
	return ""
}

func (b *I2CBus) Close() error {
	return nil
}
