package netlist

import "strings"

// Design is the metadata carried by the design section.
type Design struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
	Tool   string `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// Schematic file extensions recognized when deriving the schematic name.
var schematicExtensions = []string{".kicad_sch", ".sch"}

// ParseDesign extracts the source, date and tool entries of the design block.
// Missing entries stay empty.
func ParseDesign(b Block) Design {
	var d Design
	if v, _, ok := tagValue(b.Text, "source", 0, -1); ok {
		d.Source = stripQuotes(v)
	}
	if v, _, ok := tagValue(b.Text, "date", 0, -1); ok {
		d.Date = unquoteValue(v)
	}
	if v, _, ok := tagValue(b.Text, "tool", 0, -1); ok {
		d.Tool = unquoteValue(v)
	}
	return d
}

// SchematicName derives the design name from the source path: the file name
// after the last path separator (either slash) up to the schematic extension.
// A source without a separator is used whole.
func (d Design) SchematicName() string {
	name := d.Source
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		name = name[i+1:]
	}
	for _, ext := range schematicExtensions {
		if i := strings.Index(name, ext); i >= 0 {
			return name[:i]
		}
	}
	return name
}
