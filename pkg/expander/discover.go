package expander

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gousb"
)

// AdapterKind categorizes I2C adapter families.
type AdapterKind string

const (
	AdapterKindTinyUSB AdapterKind = "i2c-tiny-usb"
	AdapterKindSim     AdapterKind = "simulator"
)

// ErrAdapterNotFound is returned when no I2C adapter matches a USB path.
var ErrAdapterNotFound = errors.New("expander: i2c adapter not found")

// ErrAlreadyBound is returned when an adapter is opened twice in one process.
var ErrAlreadyBound = errors.New("expander: adapter already bound")

// SysfsRoot is where the i2c-tiny-usb driver directory is looked up.
var SysfsRoot = "/sys"

// AdapterInfo describes a detected I2C adapter.
type AdapterInfo struct {
	Kind        AdapterKind
	Description string
	VendorID    uint16
	ProductID   uint16
	USBPath     string
}

// Label returns a user-friendly description for the adapter.
func (a AdapterInfo) Label() string {
	if a.Description != "" {
		return a.Description
	}
	return fmt.Sprintf("%s (%04X:%04X)", string(a.Kind), a.VendorID, a.ProductID)
}

type knownUSBDevice struct {
	VendorID    uint16
	ProductID   uint16
	Description string
}

var knownTinyUSBVIDPIDs = []knownUSBDevice{
	{VendorID: 0x0403, ProductID: 0xc631, Description: "i2c-tiny-usb"},
	{VendorID: 0x1c40, ProductID: 0x0534, Description: "i2c-tiny-usb (EZPrototypes)"},
}

// DiscoverAdapters enumerates connected i2c-tiny-usb adapters. It always
// returns the simulator entry so the tools can be exercised without
// hardware.
func DiscoverAdapters(ctx context.Context) ([]AdapterInfo, error) {
	var results []AdapterInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := classifyUSBDevice(desc); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}

	results = append(results, AdapterInfo{
		Kind:        AdapterKindSim,
		Description: "Simulator (no hardware)",
	})

	return results, nil
}

func classifyUSBDevice(desc *gousb.DeviceDesc) (AdapterInfo, bool) {
	for _, known := range knownTinyUSBVIDPIDs {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return AdapterInfo{
				Kind:        AdapterKindTinyUSB,
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
				USBPath:     usbPath(desc.Bus, desc.Path),
			}, true
		}
	}
	return AdapterInfo{}, false
}

// usbPath renders the sysfs interface name, e.g. "1-1.2:1.0".
func usbPath(bus int, ports []int) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%d-%s:1.0", bus, strings.Join(parts, "."))
}

// FindAdapter resolves the i2c bus number of the i2c-tiny-usb adapter bound
// to usbpath (e.g. "1-1.2:1.0").
func FindAdapter(usbpath string) (int, error) {
	if usbpath == "" || strings.ContainsAny(usbpath, "/*?[") {
		return 0, fmt.Errorf("%w: invalid usb path %q", ErrAdapterNotFound, usbpath)
	}

	pattern := filepath.Join(SysfsRoot, "bus", "usb", "drivers", "i2c-tiny-usb", usbpath, "i2c-*")
	candidates, err := filepath.Glob(pattern)
	if err != nil {
		return 0, fmt.Errorf("expander: glob %s: %w", pattern, err)
	}
	sort.Strings(candidates)

	for _, candidate := range candidates {
		name := filepath.Base(candidate)
		n, err := strconv.Atoi(strings.TrimPrefix(name, "i2c-"))
		if err != nil {
			continue
		}
		return n, nil
	}

	return 0, fmt.Errorf("%w: no adapter at %s", ErrAdapterNotFound, usbpath)
}

var (
	claimsMu sync.Mutex
	claims   = make(map[string]bool)
)

// claim records that locator is bound to an open bus.
func claim(locator string) error {
	claimsMu.Lock()
	defer claimsMu.Unlock()
	if claims[locator] {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, locator)
	}
	claims[locator] = true
	return nil
}

func release(locator string) {
	claimsMu.Lock()
	defer claimsMu.Unlock()
	delete(claims, locator)
}
