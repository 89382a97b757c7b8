package expander

import (
	"fmt"
	"io"
	"strings"
)

// BusCloser is a Bus that owns its transport.
type BusCloser interface {
	Bus
	io.Closer
}

// ParseAdapterKind accepts the short names used on the command line ("i2c",
// "sim") as well as the kind names.
func ParseAdapterKind(s string) (AdapterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i2c", string(AdapterKindTinyUSB):
		return AdapterKindTinyUSB, nil
	case "sim", string(AdapterKindSim):
		return AdapterKindSim, nil
	default:
		return "", fmt.Errorf("expander: unknown adapter %q (want i2c or sim)", s)
	}
}

// Open returns a bus of the given kind. usbpath selects the i2c-tiny-usb
// adapter; the simulator ignores it.
func Open(kind AdapterKind, usbpath string) (BusCloser, error) {
	switch kind {
	case AdapterKindTinyUSB:
		bus, err := OpenI2C(usbpath)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case AdapterKindSim:
		return NewSimBus(), nil
	default:
		return nil, fmt.Errorf("expander: unsupported adapter kind %q", kind)
	}
}
