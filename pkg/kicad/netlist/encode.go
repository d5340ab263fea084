package netlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Encode writes doc in the export grammar understood by Parse. Each top-level
// section closes on its own line so the written document splits back into the
// same five sections. Parse(Encode(doc)) yields the same components, library
// and nets.
func Encode(w io.Writer, doc *Document) error {
	if doc == nil {
		return errors.New("netlist: nil document")
	}
	bw := bufio.NewWriter(w)
	enc := &encoder{w: bw}

	enc.line("(export (version D)")

	enc.line("  (design")
	enc.printf("    (source %s)\n", quoteIfNeeded(doc.Design.Source))
	enc.printf("    (date %s)\n", quoteIfNeeded(doc.Design.Date))
	enc.printf("    (tool %s))\n", quoteIfNeeded(doc.Design.Tool))

	enc.line("  (components")
	for _, c := range doc.Components {
		enc.printf("    (comp (ref %s)\n", quoteIfNeeded(c.Reference))
		enc.printf("      (value %s)\n", quoteIfNeeded(c.Value))
		if len(c.Fields) > 0 {
			enc.line("      (fields")
			for _, f := range c.Fields {
				enc.printf("        (field (name %s) %s)\n", quoteIfNeeded(f.Name), quoteIfNeeded(f.Value))
			}
			enc.line("      )")
		}
		switch {
		case c.Lib != "" && c.Part != "":
			enc.printf("      (libsource (lib %s) (part %s))\n", quoteIfNeeded(c.Lib), quoteIfNeeded(c.Part))
		case c.Part != "":
			enc.printf("      (libsource (part %s))\n", quoteIfNeeded(c.Part))
		case c.Lib != "":
			enc.printf("      (libsource (lib %s))\n", quoteIfNeeded(c.Lib))
		}
		enc.line("    )")
	}
	enc.line("  )")

	enc.line("  (libparts")
	if doc.Library != nil {
		for _, t := range doc.Library.Templates() {
			if t.Lib != "" {
				enc.printf("    (libpart (lib %s) (part %s)\n", quoteIfNeeded(t.Lib), quoteIfNeeded(t.Name))
			} else {
				enc.printf("    (libpart (part %s)\n", quoteIfNeeded(t.Name))
			}
			if len(t.Aliases) > 0 {
				enc.line("      (aliases")
				for _, a := range t.Aliases {
					enc.printf("        (alias %s)\n", quoteIfNeeded(a))
				}
				enc.line("      )")
			}
			enc.line("      (pins")
			for _, p := range t.Pins {
				enc.printf("        (pin (num %d) (name %s) (type %s))\n",
					p.Number, quoteIfNeeded(p.Label()), p.Direction.KiCadType())
			}
			enc.line("      )")
			enc.line("    )")
		}
	}
	enc.line("  )")

	enc.line("  (libraries")
	for _, l := range doc.Libraries {
		enc.printf("    (library (logical %s)\n", quoteIfNeeded(l.Logical))
		enc.printf("      (uri %s))\n", quoteIfNeeded(l.URI))
	}
	enc.line("  )")

	enc.line("  (nets")
	for _, n := range doc.Nets {
		code := n.Code
		if code == "" {
			code = fmt.Sprint(n.Index + 1)
		}
		enc.printf("    (net (code %s) (name %s)\n", quoteIfNeeded(code), quoteIfNeeded(n.Name))
		for _, c := range n.Connections {
			enc.printf("      (node (ref %s) (pin %d))\n", quoteIfNeeded(c.Reference), c.Pin)
		}
		enc.line("    )")
	}
	enc.line("  )")
	enc.line(")")

	if enc.err != nil {
		return errors.Wrap(enc.err, "failed to write netlist")
	}
	return errors.Wrap(bw.Flush(), "failed to write netlist")
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s + "\n")
}

func (e *encoder) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// quoteIfNeeded wraps s in double quotes when it is empty or holds whitespace
// or structural markers. Embedded quotes cannot be represented and are dropped.
func quoteIfNeeded(s string) string {
	s = strings.ReplaceAll(s, string(quoteMarker), "")
	if s == "" || strings.ContainsAny(s, " \t\r\n()") {
		return string(quoteMarker) + s + string(quoteMarker)
	}
	return s
}
