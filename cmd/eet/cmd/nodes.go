package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List the nodes and connections of the board",
	RunE:  runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
	b, err := loadBoard()
	if err != nil {
		return err
	}
	table, err := b.Table()
	if err != nil {
		return err
	}

	fmt.Printf("Board: %s\n", b.Name)
	fmt.Printf("Leaves: %s\n", strings.Join(table.Leaves(), ", "))
	fmt.Printf("Buses:  %s\n", strings.Join(table.Buses(), ", "))
	fmt.Println()
	fmt.Println("Connections:")
	for _, c := range table.Connections() {
		fmt.Printf("  %-12s %-12s %s\n", c.A, c.B, c.Line)
	}
	return nil
}
