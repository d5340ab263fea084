// Package netlist reads KiCad netlist export documents.
//
// The reader is a positional offset scanner rather than a full s-expression
// parser: the document is split into its five top-level sections by line
// depth counting, and each section is searched for the anchors it needs.
// Double-quoted text is treated as literal when locating the end of a record,
// so names such as "Net-(U1-Pad1)" are safe.
package netlist

import (
	"io"
	"os"
	"strings"
)

// LibraryRef is one entry of the libraries section.
type LibraryRef struct {
	Logical string `json:"logical" yaml:"logical"`
	URI     string `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// Document is a fully parsed netlist export.
type Document struct {
	Design     Design
	Components []ComponentRecord
	Library    *Library
	Libraries  []LibraryRef
	Nets       []NetGroup
	Sections   *Sections
}

// Component returns the record with the given reference.
func (d *Document) Component(ref string) (ComponentRecord, bool) {
	for _, c := range d.Components {
		if c.Reference == ref {
			return c, true
		}
	}
	return ComponentRecord{}, false
}

// ParseFile opens and parses a netlist file.
func ParseFile(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, ioError(err, "failed to open netlist")
	}
	defer file.Close()

	return Parse(file)
}

// ParseString parses a netlist held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads a netlist document from r.
func Parse(r io.Reader) (*Document, error) {
	sections, err := SplitSections(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{Sections: sections}

	// Parse design
	doc.Design = ParseDesign(sections.Design)

	// Parse components
	if doc.Components, err = ParseComponents(sections.Components); err != nil {
		return nil, err
	}

	// Parse libparts
	if doc.Library, err = ParseLibParts(sections.LibParts); err != nil {
		return nil, err
	}

	// Parse libraries
	doc.Libraries = ParseLibraries(sections.Libraries)

	// Parse nets
	if doc.Nets, err = ParseNets(sections.Nets); err != nil {
		return nil, err
	}

	return doc, nil
}

// ParseLibraries lists the logical libraries of the libraries block.
func ParseLibraries(b Block) []LibraryRef {
	text := b.Text
	var libs []LibraryRef

	for pos := tagIndex(text, "library", 0); pos >= 0; {
		end, ok := FindBlockEnd(text, pos)
		if !ok {
			break
		}
		body := text[pos : end+1]
		var ref LibraryRef
		if v, _, ok := tagValue(body, "logical", 0, -1); ok {
			ref.Logical = stripQuotes(v)
		}
		if v, _, ok := tagValue(body, "uri", 0, -1); ok {
			ref.URI = stripQuotes(v)
		}
		libs = append(libs, ref)
		pos = tagIndex(text, "library", end+1)
	}

	return libs
}
