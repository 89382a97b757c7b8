package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ledCmd = &cobra.Command{
	Use:   "led <index> on|off",
	Short: "Switch an indicator LED",
	Long: `Drive one of the indicator outputs above the switch bits. Indicator
polarity comes from the board description.

Examples:
  eet led 0 on
  eet led 3 off`,
	Args: cobra.ExactArgs(2),
	RunE: runLED,
}

func init() {
	rootCmd.AddCommand(ledCmd)
}

func runLED(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid indicator index %q", args[0])
	}

	var on bool
	switch args[1] {
	case "on", "1", "true":
		on = true
	case "off", "0", "false":
		on = false
	default:
		return fmt.Errorf("invalid state %q (want on or off)", args[1])
	}

	router, bus, err := openRouter()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := router.SetIndicator(idx, on); err != nil {
		return fmt.Errorf("led: %w", err)
	}

	state := "off"
	if on {
		state = "on"
	}
	fmt.Printf("Indicator %d: %s\n", idx, state)
	return nil
}
