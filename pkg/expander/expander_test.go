package expander

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddrs = []uint16{0x20, 0x21, 0x22}

func TestNewBankValidation(t *testing.T) {
	sim := NewSimBus()

	_, err := NewBank(nil, testAddrs)
	assert.Error(t, err, "nil bus")

	_, err = NewBank(sim, nil)
	assert.Error(t, err, "no devices")

	_, err = NewBank(sim, []uint16{0x20, 0x20})
	assert.Error(t, err, "duplicate address")

	_, err = NewBank(sim, []uint16{0x80})
	assert.Error(t, err, "10 bit address")

	_, err = NewBank(sim, []uint16{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Error(t, err, "too many devices")

	bank, err := NewBank(sim, testAddrs)
	require.NoError(t, err)
	assert.Equal(t, 3, bank.Len())
	assert.Equal(t, 24, bank.Bits())
	assert.Equal(t, uint16(0x21), bank.Addr(1))
}

func TestBankInitOrder(t *testing.T) {
	sim := NewSimBus()
	bank, err := NewBank(sim, testAddrs)
	require.NoError(t, err)

	require.NoError(t, bank.Init())

	want := []Write{
		{Addr: 0x20, Reg: PCA9554OutputReg, Value: 0},
		{Addr: 0x20, Reg: PCA9554ConfigReg, Value: 0},
		{Addr: 0x21, Reg: PCA9554OutputReg, Value: 0},
		{Addr: 0x21, Reg: PCA9554ConfigReg, Value: 0},
		{Addr: 0x22, Reg: PCA9554OutputReg, Value: 0},
		{Addr: 0x22, Reg: PCA9554ConfigReg, Value: 0},
	}
	assert.Equal(t, want, sim.Writes())
}

func TestBankInitStopsOnError(t *testing.T) {
	sim := NewSimBus()
	boom := errors.New("nack")
	sim.OnWrite = func(w Write) error {
		if w.Addr == 0x21 {
			return boom
		}
		return nil
	}
	bank, err := NewBank(sim, testAddrs)
	require.NoError(t, err)

	err = bank.Init()
	assert.Same(t, boom, err, "transport error must be returned unchanged")
	assert.Equal(t, 2, sim.WriteCount())
}

func TestBankWriteOutput(t *testing.T) {
	sim := NewSimBus()
	bank, err := NewBankWithRegisters(sim, testAddrs, 2, 6)
	require.NoError(t, err)

	require.NoError(t, bank.WriteOutput(2, 0xA5))
	v, ok := sim.Register(0x22, 2)
	require.True(t, ok)
	assert.Equal(t, uint8(0xA5), v)

	assert.Error(t, bank.WriteOutput(3, 0))
	assert.Error(t, bank.WriteOutput(-1, 0))
}

func TestSimBusClearWrites(t *testing.T) {
	sim := NewSimBus()
	require.NoError(t, sim.WriteRegister(0x20, 1, 7))
	sim.ClearWrites()
	assert.Zero(t, sim.WriteCount())

	v, ok := sim.Register(0x20, 1)
	assert.True(t, ok)
	assert.Equal(t, uint8(7), v)

	_, ok = sim.Register(0x30, 1)
	assert.False(t, ok)
}

func fakeSysfs(t *testing.T, usbpath string, adapters ...string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "bus", "usb", "drivers", "i2c-tiny-usb", usbpath)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, a := range adapters {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, a), 0o755))
	}

	old := SysfsRoot
	SysfsRoot = root
	t.Cleanup(func() { SysfsRoot = old })
}

func TestFindAdapter(t *testing.T) {
	fakeSysfs(t, "1-1.2:1.0", "i2c-7")

	n, err := FindAdapter("1-1.2:1.0")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = FindAdapter("1-1.3:1.0")
	assert.ErrorIs(t, err, ErrAdapterNotFound)

	_, err = FindAdapter("")
	assert.ErrorIs(t, err, ErrAdapterNotFound)

	_, err = FindAdapter("../../etc")
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}

func TestFindAdapterSkipsNonNumeric(t *testing.T) {
	fakeSysfs(t, "2-1:1.0", "i2c-dev", "i2c-12")

	n, err := FindAdapter("2-1:1.0")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestClaimRelease(t *testing.T) {
	require.NoError(t, claim("3-1:1.0"))
	err := claim("3-1:1.0")
	assert.ErrorIs(t, err, ErrAlreadyBound)

	release("3-1:1.0")
	require.NoError(t, claim("3-1:1.0"))
	release("3-1:1.0")
}

func TestUSBPath(t *testing.T) {
	assert.Equal(t, "1-1.2:1.0", usbPath(1, []int{1, 2}))
	assert.Equal(t, "3-4:1.0", usbPath(3, []int{4}))
}

func TestAdapterLabel(t *testing.T) {
	assert.Equal(t, "Simulator", AdapterInfo{Kind: AdapterKindSim, Description: "Simulator"}.Label())
	assert.Equal(t, "i2c-tiny-usb (0403:C631)", AdapterInfo{Kind: AdapterKindTinyUSB, VendorID: 0x0403, ProductID: 0xc631}.Label())
}

// Hardware test - only runs with a USB stack available
func TestDiscoverAdapters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping USB enumeration in short mode")
	}

	infos, err := DiscoverAdapters(t.Context())
	if err != nil {
		t.Skipf("USB enumeration unavailable: %v", err)
	}
	require.NotEmpty(t, infos)
	assert.Equal(t, AdapterKindSim, infos[len(infos)-1].Kind)
	for _, info := range infos {
		t.Logf("adapter %s [%s] %s", info.Label(), info.Kind, info.USBPath)
	}
}
