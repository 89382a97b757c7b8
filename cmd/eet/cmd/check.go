package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/relaymatrix/pkg/matrix"
)

var checkIgnoreExclusive bool

var checkCmd = &cobra.Command{
	Use:   "check <spec>",
	Short: "Validate a connection spec without touching hardware",
	Long: `Compile a connection spec against the board's connection table and
exclusion sets and print the control lines it would drive.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkIgnoreExclusive, "ignore-exclusive", false,
		"skip the mutual exclusion check")
}

func runCheck(cmd *cobra.Command, args []string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	table, err := b.Table()
	if err != nil {
		return err
	}

	set, err := table.Compile(args[0])
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if !checkIgnoreExclusive {
		sets, err := b.ExclusionSets()
		if err != nil {
			return err
		}
		if err := matrix.CheckExclusive(set, sets); err != nil {
			return fmt.Errorf("check: %w", err)
		}
	}

	if len(set) == 0 {
		fmt.Println("Spec is valid: no switches")
		return nil
	}
	fmt.Printf("Spec is valid: %s\n", set)
	return nil
}
