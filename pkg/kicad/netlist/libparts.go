package netlist

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Direction is the signal direction of a pin as seen from its component.
type Direction int

const (
	DirUnknown Direction = iota
	DirIn
	DirOut
	DirInOut
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	default:
		return "unknown"
	}
}

// Inverse swaps in and out. Other directions are returned unchanged.
func (d Direction) Inverse() Direction {
	switch d {
	case DirIn:
		return DirOut
	case DirOut:
		return DirIn
	}
	return d
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in":
		*d = DirIn
	case "out":
		*d = DirOut
	case "inout":
		*d = DirInOut
	case "unknown", "":
		*d = DirUnknown
	default:
		return errors.Newf("unknown direction %q", text)
	}
	return nil
}

// ParseDirection maps a KiCad electrical pin type to a direction.
func ParseDirection(kicadType string) Direction {
	switch strings.ToLower(strings.TrimSpace(kicadType)) {
	case "input":
		return DirIn
	case "output":
		return DirOut
	case "bidi", "bidirectional":
		return DirInOut
	default:
		return DirUnknown
	}
}

// KiCadType is the inverse of ParseDirection.
func (d Direction) KiCadType() string {
	switch d {
	case DirIn:
		return "input"
	case DirOut:
		return "output"
	case DirInOut:
		return "BiDi"
	default:
		return "passive"
	}
}

// PinSpec is one pin of a component type template.
type PinSpec struct {
	Number     int       `json:"number" yaml:"number"`
	Name       string    `json:"name" yaml:"name"`
	Direction  Direction `json:"direction" yaml:"direction"`
	Width      int       `json:"width,omitempty" yaml:"width,omitempty"`
	WidthParam string    `json:"width_param,omitempty" yaml:"width_param,omitempty"`
}

// IsVector reports whether the pin is wider than one bit.
func (p PinSpec) IsVector() bool {
	return p.Width > 0 || p.WidthParam != ""
}

// Label returns the pin name with its width suffix.
func (p PinSpec) Label() string {
	return FormatLabel(Label{Name: p.Name, Width: p.Width, WidthParam: p.WidthParam})
}

// TypePinTemplate is the pin list of one component type. Lib is the symbol
// library the type was defined in, empty when unknown.
type TypePinTemplate struct {
	Name    string    `json:"name" yaml:"name"`
	Lib     string    `json:"lib,omitempty" yaml:"lib,omitempty"`
	Aliases []string  `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Pins    []PinSpec `json:"pins" yaml:"pins"`
}

// Library indexes type templates by case-insensitive name and alias.
//
// Every template is reachable by its bare name and by its library-qualified
// name. The same name may carry different pin lists in two different
// libraries; the bare name then refers to the first definition and the
// others are only reachable through LookupIn.
type Library struct {
	templates []TypePinTemplate
	index     map[string]int // bare name or alias
	qualified map[string]int // lib + name or alias
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		index:     make(map[string]int),
		qualified: make(map[string]int),
	}
}

// Len returns the number of distinct templates.
func (l *Library) Len() int {
	return len(l.templates)
}

// Templates returns copies of all templates in definition order.
func (l *Library) Templates() []TypePinTemplate {
	out := make([]TypePinTemplate, len(l.templates))
	for i, t := range l.templates {
		out[i] = t.clone()
	}
	return out
}

// Lookup returns a copy of the template registered under typeName or one of
// its aliases.
func (l *Library) Lookup(typeName string) (TypePinTemplate, bool) {
	i, ok := l.index[strings.ToLower(typeName)]
	if !ok {
		return TypePinTemplate{}, false
	}
	return l.templates[i].clone(), true
}

// LookupIn returns the template typeName defined in lib. When lib is empty or
// does not define the type, it falls back to Lookup.
func (l *Library) LookupIn(lib, typeName string) (TypePinTemplate, bool) {
	if lib != "" {
		if i, ok := l.qualified[qualify(lib, typeName)]; ok {
			return l.templates[i].clone(), true
		}
	}
	return l.Lookup(typeName)
}

// Add registers t. A type defined again with an identical pin list is merged
// (aliases are unioned). A redefinition with different pins is an error
// unless both definitions name different libraries.
func (l *Library) Add(t TypePinTemplate) error {
	idx, err := l.place(t)
	if err != nil {
		return err
	}
	for _, alias := range t.Aliases {
		if err := l.bind(t.Lib, alias, idx); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) place(t TypePinTemplate) (int, error) {
	qkey := qualify(t.Lib, t.Name)
	if idx, ok := l.qualified[qkey]; ok {
		if !slices.Equal(l.templates[idx].Pins, t.Pins) {
			return -1, NewFormatError(CodeTypeConflict, t.Name, "type defined twice with different pins")
		}
		return idx, nil
	}

	key := strings.ToLower(t.Name)
	if idx, ok := l.index[key]; ok {
		if slices.Equal(l.templates[idx].Pins, t.Pins) {
			l.qualified[qkey] = idx
			return idx, nil
		}
		if !distinctLibs(l.templates[idx].Lib, t.Lib) {
			return -1, NewFormatError(CodeTypeConflict, t.Name, "type defined twice with different pins")
		}
		idx = l.append(t)
		l.qualified[qkey] = idx
		return idx, nil
	}

	idx := l.append(t)
	l.index[key] = idx
	l.qualified[qkey] = idx
	return idx, nil
}

func (l *Library) bind(lib, alias string, idx int) error {
	pins := l.templates[idx].Pins
	qkey := qualify(lib, alias)
	if other, ok := l.qualified[qkey]; ok {
		if other != idx && !slices.Equal(l.templates[other].Pins, pins) {
			return NewFormatError(CodeTypeConflict, alias, "alias of %s clashes with a different type", l.templates[idx].Name)
		}
	} else {
		l.qualified[qkey] = idx
	}

	key := strings.ToLower(alias)
	other, ok := l.index[key]
	switch {
	case !ok:
		l.index[key] = idx
	case other != idx:
		if !slices.Equal(l.templates[other].Pins, pins) && !distinctLibs(l.templates[other].Lib, lib) {
			return NewFormatError(CodeTypeConflict, alias, "alias of %s clashes with a different type", l.templates[idx].Name)
		}
		return nil
	}

	if !slices.ContainsFunc(l.templates[idx].Aliases, func(a string) bool { return strings.EqualFold(a, alias) }) {
		l.templates[idx].Aliases = append(l.templates[idx].Aliases, alias)
	}
	return nil
}

func (l *Library) append(t TypePinTemplate) int {
	l.templates = append(l.templates, TypePinTemplate{Name: t.Name, Lib: t.Lib, Pins: slices.Clone(t.Pins)})
	return len(l.templates) - 1
}

func qualify(lib, name string) string {
	return strings.ToLower(lib) + ":" + strings.ToLower(name)
}

// distinctLibs reports whether a and b are two known, different libraries.
func distinctLibs(a, b string) bool {
	return a != "" && b != "" && !strings.EqualFold(a, b)
}

func (t TypePinTemplate) clone() TypePinTemplate {
	return TypePinTemplate{
		Name:    t.Name,
		Lib:     t.Lib,
		Aliases: slices.Clone(t.Aliases),
		Pins:    slices.Clone(t.Pins),
	}
}

// ParseLibParts builds the type library from the libparts block.
func ParseLibParts(b Block) (*Library, error) {
	text := b.Text
	lib := NewLibrary()

	for pos := tagIndex(text, "libpart", 0); pos >= 0; {
		end, ok := FindBlockEnd(text, pos)
		if !ok {
			return nil, NewFormatError(CodeLibPartRecord, "", "unterminated libpart record")
		}

		tmpl, err := parseLibPart(text[pos : end+1])
		if err != nil {
			return nil, err
		}
		if err := lib.Add(tmpl); err != nil {
			return nil, err
		}

		pos = tagIndex(text, "libpart", end+1)
	}

	return lib, nil
}

func parseLibPart(body string) (TypePinTemplate, error) {
	var tmpl TypePinTemplate

	part, partEnd, ok := tagValue(body, "part", 0, -1)
	if !ok || stripQuotes(part) == "" {
		return tmpl, NewFormatError(CodeLibPartRecord, "", "libpart record without part name")
	}
	tmpl.Name = stripQuotes(part)
	if lib, _, ok := tagValue(body, "lib", 0, -1); ok {
		tmpl.Lib = stripQuotes(lib)
	}

	if aliases, _, ok := tagValue(body, "aliases", 0, -1); ok {
		for at := tagIndex(aliases, "alias", 0); at >= 0; {
			v, aEnd, ok := tagValue(aliases, "alias", at, -1)
			if !ok {
				break
			}
			if name := stripQuotes(v); name != "" {
				tmpl.Aliases = append(tmpl.Aliases, name)
			}
			at = tagIndex(aliases, "alias", aEnd+1)
		}
	}

	// Pins
	for at := tagIndex(body, "pin", partEnd+1); at >= 0; {
		pinEnd, ok := FindBlockEnd(body, at)
		if !ok {
			return tmpl, NewFormatError(CodeLibPartRecord, tmpl.Name, "unterminated pin record")
		}
		pin, err := parsePin(body[at:pinEnd+1], tmpl.Name)
		if err != nil {
			return tmpl, err
		}
		tmpl.Pins = append(tmpl.Pins, pin)
		at = tagIndex(body, "pin", pinEnd+1)
	}

	return tmpl, nil
}

func parsePin(body, typeName string) (PinSpec, error) {
	var pin PinSpec

	num, _, ok := tagValue(body, "num", 0, -1)
	if !ok {
		return pin, NewFormatError(CodePinNumber, typeName, "pin without number")
	}
	n, err := strconv.Atoi(stripQuotes(num))
	if err != nil {
		return pin, NewFormatError(CodePinNumber, typeName, "pin number %q is not an integer", stripQuotes(num))
	}
	pin.Number = n

	if name, _, ok := tagValue(body, "name", 0, -1); ok {
		label, err := ParseLabel(stripQuotes(name))
		if err != nil {
			return pin, errors.WithDetailf(
				NewFormatError(CodePinWidth, typeName, "pin %d: %v", n, err),
				"pin label %q", stripQuotes(name))
		}
		pin.Name = label.Name
		pin.Width = label.Width
		pin.WidthParam = label.WidthParam
	}

	if typ, _, ok := tagValue(body, "type", 0, -1); ok {
		pin.Direction = ParseDirection(stripQuotes(typ))
	}

	return pin, nil
}
