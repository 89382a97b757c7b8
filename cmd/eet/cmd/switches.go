package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var switchesCmd = &cobra.Command{
	Use:   "switches [line...]",
	Short: "Drive raw control lines (diagnostics)",
	Long: `Apply control lines directly, bypassing path validation and the
exclusion sets. Lines are written as D<n> or !D<n>. Break-before-make still
applies.

Example:
  eet switches D1 !D30`,
	RunE: runSwitches,
}

func init() {
	rootCmd.AddCommand(switchesCmd)
}

func runSwitches(cmd *cobra.Command, args []string) error {
	router, bus, err := openRouter()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := router.SetSwitchIdentifiers(args...); err != nil {
		return fmt.Errorf("switches: %w", err)
	}

	printState(router)
	return nil
}
