package cmd

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
)

var (
	resolveFormat string
	resolveOutput string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <netlist_file>",
	Short: "Resolve a netlist and dump the design",
	Long: `Parse a netlist, resolve components, pins, nets and top-level ports, and
write the resolved design as JSON or YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", "json", "output format (json, yaml)")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "write to file instead of stdout")
}

func runResolve(cmd *cobra.Command, args []string) error {
	emitter, err := hdl.EmitterFor(resolveFormat)
	if err != nil {
		return err
	}

	_, design, err := loadDesign(args[0])
	if err != nil {
		return err
	}

	return writeOutput(cmd, resolveOutput, func(w io.Writer) error {
		return emitter.Emit(w, design)
	})
}

// writeOutput runs write against the named file, or stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating output file")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "error closing output file")
}
