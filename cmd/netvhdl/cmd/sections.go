package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <netlist_file>",
	Short: "Show the top-level sections of a netlist",
	Long: `Split a netlist into its five top-level sections (design, components,
libparts, libraries, nets) and print the line range of each.`,
	Args: cobra.ExactArgs(1),
	RunE: runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "error opening netlist")
	}
	defer f.Close()

	blocks, err := netlist.SplitBlocks(f)
	if err != nil {
		return errors.Wrap(err, "error splitting netlist")
	}

	out := cmd.OutOrStdout()
	for i, b := range blocks {
		name := netlist.SectionName(i)
		if name == "" {
			name = "(unexpected)"
		}
		head := strings.TrimSpace(strings.SplitN(b.Text, "\n", 2)[0])
		fmt.Fprintf(out, "%-12s lines %4d-%-4d %s\n", name, b.StartLine, b.EndLine, head)
	}
	if len(blocks) != 5 {
		return netlist.NewFormatError(netlist.CodeSectionCount, "", "expected 5 sections, found %d", len(blocks))
	}
	return nil
}
