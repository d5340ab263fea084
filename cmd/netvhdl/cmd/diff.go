package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
)

var diffContext int

var diffCmd = &cobra.Command{
	Use:   "diff <old_netlist> <new_netlist>",
	Short: "Compare two resolved designs",
	Long: `Resolve both netlists and print a unified diff of their YAML dumps.
Nothing is printed when the designs are equivalent.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().IntVarP(&diffContext, "context", "U", 3, "lines of context")
}

func runDiff(cmd *cobra.Command, args []string) error {
	_, before, err := loadDesign(args[0])
	if err != nil {
		return err
	}
	_, after, err := loadDesign(args[1])
	if err != nil {
		return err
	}

	d, err := hdl.Diff(before, after, args[0], args[1], diffContext)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), d)
	return nil
}
