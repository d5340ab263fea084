package resolve

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

// generics converts the fields of rec. Fields starting with the generic
// prefix become active generics named without the prefix. The signal name
// field becomes an inactive generic whose value has its width suffix
// removed. Other fields are ignored.
func (w *workset) generics(rec netlist.ComponentRecord) ([]hdl.Generic, error) {
	var out []hdl.Generic
	for _, f := range rec.Fields {
		switch {
		case strings.HasPrefix(f.Name, w.opts.GenericPrefix):
			g := hdl.Generic{
				Name:     strings.TrimPrefix(f.Name, w.opts.GenericPrefix),
				Value:    f.Value,
				DataType: w.opts.DefaultGenericType,
				Owner:    rec.Reference,
				Active:   true,
			}
			// Values such as "(others => '0')" are kept verbatim; only a
			// well-formed suffix contributes a width.
			if l, err := netlist.ParseLabel(f.Value); err == nil && l.HasWidth() {
				g.Width = l.Width
				g.WidthParam = l.WidthParam
			}
			out = append(out, g)

		case strings.HasPrefix(f.Name, w.opts.SignalNameField):
			l, err := netlist.ParseLabel(f.Value)
			if err != nil {
				return nil, errors.WithDetail(
					netlist.NewFormatError(CodeSignalWidth, rec.Reference, "%v", err),
					"signal names take the form name or name[width]")
			}
			out = append(out, hdl.Generic{
				Name:       w.opts.SignalNameField,
				Value:      l.Name,
				DataType:   w.opts.DefaultGenericType,
				Width:      l.Width,
				WidthParam: l.WidthParam,
				Owner:      rec.Reference,
			})
		}
	}
	return out, nil
}
