package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List available I2C adapters",
	Long: `Scan the host for i2c-tiny-usb adapters and print their USB paths. Pass
a path to --usbpath (or EET_USBPATH) to select the adapter for other commands.`,
	RunE: runInterfaces,
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	infos, err := expander.DiscoverAdapters(ctx)
	if err != nil {
		return fmt.Errorf("discover adapters: %w", err)
	}

	fmt.Println("Detected I2C adapters:")
	for _, info := range infos {
		if info.USBPath == "" {
			fmt.Printf("  - %s [%s]\n", info.Label(), info.Kind)
			continue
		}
		fmt.Printf("  - %s [%s] (VID:PID %04X:%04X) usbpath %s\n",
			info.Label(), info.Kind, info.VendorID, info.ProductID, info.USBPath)
	}

	return nil
}
