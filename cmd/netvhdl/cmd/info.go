package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

var infoCmd = &cobra.Command{
	Use:   "info <netlist_file> [reference]",
	Short: "Show netlist information",
	Long: `Display information about a KiCad netlist.

Without reference argument: shows the design summary
With reference argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, design, err := loadDesign(args[0])
	if err != nil {
		return err
	}

	if len(args) >= 2 {
		return showComponentDetails(cmd, doc, design, args[1])
	}
	return showSummary(cmd, doc, design)
}

func showSummary(cmd *cobra.Command, doc *netlist.Document, design *hdl.Design) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Design: %s\n", design.Name)
	if doc.Design.Source != "" {
		fmt.Fprintf(out, "Source: %s\n", doc.Design.Source)
	}
	if doc.Design.Tool != "" {
		fmt.Fprintf(out, "Tool: %s\n", doc.Design.Tool)
	}
	fmt.Fprintln(out)

	// Statistics
	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Components: %d (%d ports, %d instances)\n",
		len(doc.Components), len(design.TopLevel()), len(design.Instances()))
	fmt.Fprintf(out, "  Types: %d\n", doc.Library.Len())
	fmt.Fprintf(out, "  Libraries: %d\n", len(doc.Libraries))
	fmt.Fprintf(out, "  Nets: %d\n", len(doc.Nets))
	fmt.Fprintf(out, "  Local signals: %d\n", len(design.Signals()))
	fmt.Fprintln(out)

	ports := pterm.TableData{{"Port", "Direction", "Width", "Reference"}}
	for _, p := range design.Ports() {
		ports = append(ports, []string{p.Name, p.Direction.String(), widthString(p.Width, p.WidthParam), p.Reference})
	}
	if err := renderTable(cmd, ports); err != nil {
		return err
	}

	instances := pterm.TableData{{"Reference", "Type", "Pins", "Generics"}}
	for _, c := range design.Instances() {
		instances = append(instances, []string{
			c.Reference, c.TypeName, strconv.Itoa(len(c.Pins)), strconv.Itoa(len(c.ActiveGenerics())),
		})
	}
	return renderTable(cmd, instances)
}

func showComponentDetails(cmd *cobra.Command, doc *netlist.Document, design *hdl.Design, ref string) error {
	comp := design.Component(ref)
	if comp == nil {
		return fmt.Errorf("component %s not found", ref)
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Component: %s\n", comp.Reference)
	fmt.Fprintf(out, "Type: %s\n", comp.TypeName)
	if rec, ok := doc.Component(ref); ok && rec.Part != "" {
		fmt.Fprintf(out, "Library part: %s\n", rec.Part)
	}
	if comp.IsTopLevel {
		fmt.Fprintln(out, "Top-level port")
	} else {
		fmt.Fprintf(out, "Package: %s\n", comp.PackageName())
	}
	fmt.Fprintln(out)

	if len(comp.Generics) > 0 {
		generics := pterm.TableData{{"Generic", "Value", "Type", "Active"}}
		for _, g := range comp.Generics {
			generics = append(generics, []string{g.UniqueName(), g.Value, g.DataType, strconv.FormatBool(g.Active)})
		}
		if err := renderTable(cmd, generics); err != nil {
			return err
		}
	}

	pins := pterm.TableData{{"Pin", "Name", "Direction", "Width", "Signal"}}
	for _, p := range comp.Pins {
		signal := p.SignalName
		if signal == "" {
			signal = pterm.Gray("unconnected")
		}
		pins = append(pins, []string{
			strconv.Itoa(p.Number), p.Name, p.Direction.String(), widthString(p.Width, p.WidthParam), signal,
		})
	}
	return renderTable(cmd, pins)
}

func renderTable(cmd *cobra.Command, data pterm.TableData) error {
	if len(data) < 2 {
		return nil
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func widthString(width int, param string) string {
	switch {
	case width > 0:
		return strconv.Itoa(width)
	case param != "":
		return param
	}
	return "1"
}
