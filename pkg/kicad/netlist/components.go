package netlist

import "strings"

// Field is a named attribute attached to a component instance.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ComponentRecord is one placed component as written in the components section.
type ComponentRecord struct {
	Reference string  `json:"reference" yaml:"reference"`
	Value     string  `json:"value" yaml:"value"`
	Lib       string  `json:"lib,omitempty" yaml:"lib,omitempty"`
	Part      string  `json:"part,omitempty" yaml:"part,omitempty"`
	Fields    []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldByName returns the first field whose name matches case-insensitively.
func (c ComponentRecord) FieldByName(name string) (Field, bool) {
	for _, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// ParseComponents extracts every "(comp ...)" record of the components block
// in document order. References must be unique ignoring case.
func ParseComponents(b Block) ([]ComponentRecord, error) {
	text := b.Text
	var comps []ComponentRecord
	seen := make(map[string]bool)

	for pos := tagIndex(text, "comp", 0); pos >= 0; {
		end, ok := FindBlockEnd(text, pos)
		if !ok {
			return nil, NewFormatError(CodeComponentRecord, "", "unterminated component record")
		}

		rec, err := parseComponent(text[pos : end+1])
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(rec.Reference)
		if seen[key] {
			return nil, NewFormatError(CodeDuplicateRef, rec.Reference, "reference used by more than one component")
		}
		seen[key] = true
		comps = append(comps, rec)

		pos = tagIndex(text, "comp", end+1)
	}

	return comps, nil
}

func parseComponent(body string) (ComponentRecord, error) {
	var rec ComponentRecord

	ref, refEnd, ok := tagValue(body, "ref", 0, -1)
	if !ok || stripQuotes(ref) == "" {
		return rec, NewFormatError(CodeComponentRecord, "", "component record without reference")
	}
	rec.Reference = stripQuotes(ref)

	value, valueEnd, ok := tagValue(body, "value", refEnd+1, -1)
	if !ok {
		return rec, NewFormatError(CodeComponentRecord, rec.Reference, "component record without value")
	}
	rec.Value = stripQuotes(value)

	if ls, _, ok := tagValue(body, "libsource", 0, -1); ok {
		if lib, _, ok := tagValue(ls, "lib", 0, -1); ok {
			rec.Lib = stripQuotes(lib)
		}
		if part, _, ok := tagValue(ls, "part", 0, -1); ok {
			rec.Part = stripQuotes(part)
		}
	}

	// Fields
	for at := tagIndex(body, "field", valueEnd+1); at >= 0; {
		fieldEnd, ok := FindBlockEnd(body, at)
		if !ok {
			return rec, NewFormatError(CodeComponentRecord, rec.Reference, "unterminated field")
		}
		name, nameEnd, ok := tagValue(body, "name", at, fieldEnd)
		if !ok || nameEnd > fieldEnd {
			return rec, NewFormatError(CodeComponentRecord, rec.Reference, "field without name")
		}
		rec.Fields = append(rec.Fields, Field{
			Name:  stripQuotes(name),
			Value: unquoteValue(body[nameEnd+1 : fieldEnd]),
		})
		at = tagIndex(body, "field", fieldEnd+1)
	}

	return rec, nil
}
