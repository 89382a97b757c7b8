package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var linkIgnoreExclusive bool

var linkCmd = &cobra.Command{
	Use:   "link [spec]",
	Short: "Connect nodes of the switch matrix",
	Long: `Apply a connection spec: comma separated paths of node names joined by "->".
Every path starts and ends at a leaf and only passes through buses. All other
connections are released first. Without a spec every switch is opened.

Examples:
  eet link "USB1_IN -> USB1_OUT, USB2_IN -> USB2_OUT"
  eet link "5V_1K -> 5V -> BUS1 -> OUT0"
  eet link`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)

	linkCmd.Flags().BoolVar(&linkIgnoreExclusive, "ignore-exclusive", false,
		"apply even if mutually exclusive outputs would be active together")
}

func runLink(cmd *cobra.Command, args []string) error {
	spec := ""
	if len(args) == 1 {
		spec = args[0]
	}

	router, bus, err := openRouter()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := router.Link(spec, linkIgnoreExclusive); err != nil {
		return fmt.Errorf("link: %w", err)
	}

	printState(router)
	return nil
}
