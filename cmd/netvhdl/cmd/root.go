package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/netvhdl/internal/config"
	"github.com/OpenTraceLab/netvhdl/internal/logging"
	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
	"github.com/OpenTraceLab/netvhdl/pkg/resolve"
)

var (
	// Global flags
	verbose    bool
	configPath string
	logJSON    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "netvhdl",
	Short: "netvhdl - KiCad netlist to HDL model converter",
	Long: `netvhdl reads KiCad netlist exports (.net) and resolves them into a
hardware description model: component instances, generics, internal signals
and the ports of the top-level entity.

Top-level ports are placed in the schematic as TOP_IN / TOP_OUT symbols with
a SignalName field. Component fields starting with G_ become generics.

Examples:
  netvhdl info design.net                 # Show netlist summary
  netvhdl resolve design.net -f yaml      # Dump the resolved design
  netvhdl check design.net                # Validate structure and connectivity
  netvhdl diff old.net new.net            # Compare two resolved designs`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./netvhdl.toml)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := c.Log.Level
	if verbose {
		level = "debug"
	}
	l, err := logging.New(level, c.Log.JSON || logJSON)
	if err != nil {
		return err
	}

	cfg = c
	logger = l
	return nil
}

// loadDesign parses and resolves a netlist file.
func loadDesign(filename string) (*netlist.Document, *hdl.Design, error) {
	doc, err := netlist.ParseFile(filename)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error parsing netlist %s", filename)
	}

	log := logger.With(zap.String("file", filename))
	design, err := resolve.New(cfg.ResolveOptions(log)).Resolve(doc)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error resolving netlist %s", filename)
	}
	return doc, design, nil
}

// reportError prints err with its hints and details.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, pterm.Red("error: ")+err.Error())
	if fe, ok := netlist.AsFormatError(err); ok && fe.Reference != "" {
		fmt.Fprintf(w, "  component: %s\n", fe.Reference)
	}
	if details := errors.FlattenDetails(err); details != "" {
		fmt.Fprintf(w, "  detail: %s\n", details)
	}
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintln(w, pterm.Yellow("  hint: ")+hints)
	}
}
