package cmd

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

var fmtOutput string

var fmtCmd = &cobra.Command{
	Use:   "fmt <netlist_file>",
	Short: "Rewrite a netlist in canonical form",
	Long: `Parse a netlist and write it back with one record per line. Sections
the converter does not read (sheet paths, time stamps, footprints) are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().StringVarP(&fmtOutput, "output", "o", "", "write to file instead of stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	doc, err := netlist.ParseFile(args[0])
	if err != nil {
		return errors.Wrap(err, "error parsing netlist")
	}
	return writeOutput(cmd, fmtOutput, func(w io.Writer) error {
		return netlist.Encode(w, doc)
	})
}
