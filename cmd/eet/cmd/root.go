package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/relaymatrix/internal/logging"
	"github.com/OpenTraceLab/relaymatrix/pkg/board"
	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/OpenTraceLab/relaymatrix/pkg/matrix"
)

var (
	// Global flags
	verbose     bool
	boardPath   string
	usbPath     string
	adapterType string
)

var rootCmd = &cobra.Command{
	Use:   "eet",
	Short: "Switch matrix control for the LXA TAC electrical emulation board",
	Long: `Route signals on a relay switch matrix driven by I2C port expanders.

Connections are requested symbolically as paths from leaf to leaf over buses;
every change releases all relays before the new combination is applied.
Each command initializes the expanders, so state does not carry over between
invocations. Use "eet serve" to keep a matrix bound across requests.

Examples:
  eet link "USB1_IN -> USB1_OUT"                     # Pass USB port 1 through
  eet link "PWR_OUT -> BUS2 -> CURR -> SHUNT_10R"    # Measure supply current
  eet link                                           # Disconnect everything
  eet check "USB1_IN -> BUS1 -> OUT0"                # Validate without hardware
  eet --adapter sim link "OUT0 -> BUS1 -> VOLT"      # Run against the simulator`,
	Version:       "0.9.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&boardPath, "board", "b", "",
		"board description file (default: built-in LXA TAC EET board)")
	rootCmd.PersistentFlags().StringVarP(&usbPath, "usbpath", "u", os.Getenv("EET_USBPATH"),
		"USB interface path of the i2c-tiny-usb adapter, e.g. 1-1.2:1.0 (env EET_USBPATH)")
	rootCmd.PersistentFlags().StringVarP(&adapterType, "adapter", "a", "i2c",
		"I2C adapter type (i2c, sim)")
}

func newLogger() *slog.Logger {
	return logging.New(logging.Level(verbose))
}

func loadBoard() (*board.Board, error) {
	if boardPath == "" {
		return board.Default(), nil
	}
	return board.Load(boardPath)
}

// openBus opens the adapter selected by the global flags.
func openBus(usbpath string) (expander.BusCloser, error) {
	kind, err := expander.ParseAdapterKind(adapterType)
	if err != nil {
		return nil, err
	}
	if kind == expander.AdapterKindTinyUSB && usbpath == "" {
		return nil, fmt.Errorf("no adapter selected: pass --usbpath or set EET_USBPATH")
	}
	return expander.Open(kind, usbpath)
}

// openRouter initializes the matrix on the selected adapter. The returned
// bus must be closed by the caller.
func openRouter() (*matrix.Router, expander.BusCloser, error) {
	b, err := loadBoard()
	if err != nil {
		return nil, nil, err
	}

	bus, err := openBus(usbPath)
	if err != nil {
		return nil, nil, err
	}

	router, err := b.NewRouter(bus, matrix.WithLogger(newLogger()))
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("initialize %s: %w", b.Name, err)
	}
	return router, bus, nil
}

func printState(r *matrix.Router) {
	set := r.Switches()
	if len(set) == 0 {
		fmt.Println("Active switches: none")
	} else {
		fmt.Printf("Active switches: %s\n", set)
	}
	fmt.Printf("Bitmask: %s\n", r.Active().Hex(r.Devices()))
}
