// Package hdl holds the resolved hardware description model: components with
// concrete pins and generics, the signals that connect them and the ports of
// the enclosing top-level entity. A Design is produced by package resolve and
// consumed by emitters.
package hdl

import (
	"strings"

	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

// Direction is re-exported from netlist so emitters need not import it.
type Direction = netlist.Direction

const (
	DirUnknown = netlist.DirUnknown
	DirIn      = netlist.DirIn
	DirOut     = netlist.DirOut
	DirInOut   = netlist.DirInOut
)

// Pin is a component pin after net resolution.
//
// For top-level pins Direction is the internal direction: a top-level input
// drives the design, so its pin is DirOut. Use PortDirection for the direction
// of the entity port.
type Pin struct {
	netlist.PinSpec `yaml:",inline"`

	SignalName       string `json:"signal_name,omitempty" yaml:"signal_name,omitempty"`
	NeedsLocalSignal bool   `json:"needs_local_signal,omitempty" yaml:"needs_local_signal,omitempty"`
	DataType         string `json:"data_type" yaml:"data_type"`
	IsTopLevel       bool   `json:"is_top_level,omitempty" yaml:"is_top_level,omitempty"`
}

// Connected reports whether the pin was attached to a multi-pin net.
func (p *Pin) Connected() bool {
	return p.SignalName != ""
}

// PortDirection returns the direction seen from outside the entity.
func (p *Pin) PortDirection() Direction {
	if p.IsTopLevel {
		return p.Direction.Inverse()
	}
	return p.Direction
}

// Generic is a compile-time parameter taken from a component field.
type Generic struct {
	Name       string `json:"name" yaml:"name"`
	Value      string `json:"value" yaml:"value"`
	DataType   string `json:"data_type" yaml:"data_type"`
	Width      int    `json:"width,omitempty" yaml:"width,omitempty"`
	WidthParam string `json:"width_param,omitempty" yaml:"width_param,omitempty"`
	Owner      string `json:"owner" yaml:"owner"`
	Active     bool   `json:"active" yaml:"active"`
}

// UniqueName qualifies the generic with its owner so generics of different
// instances never collide.
func (g *Generic) UniqueName() string {
	return g.Owner + "_" + g.Name
}

// Component is one resolved component instance.
type Component struct {
	Reference  string    `json:"reference" yaml:"reference"`
	TypeName   string    `json:"type" yaml:"type"`
	Pins       []Pin     `json:"pins" yaml:"pins"`
	Generics   []Generic `json:"generics,omitempty" yaml:"generics,omitempty"`
	IsTopLevel bool      `json:"is_top_level,omitempty" yaml:"is_top_level,omitempty"`
	IsInline   bool      `json:"is_inline,omitempty" yaml:"is_inline,omitempty"`
}

// PinByNumber returns the pin with number n, or nil.
func (c *Component) PinByNumber(n int) *Pin {
	for i := range c.Pins {
		if c.Pins[i].Number == n {
			return &c.Pins[i]
		}
	}
	return nil
}

// GenericByName returns the first generic whose name matches
// case-insensitively, or nil.
func (c *Component) GenericByName(name string) *Generic {
	for i := range c.Generics {
		if strings.EqualFold(c.Generics[i].Name, name) {
			return &c.Generics[i]
		}
	}
	return nil
}

// ActiveGenerics returns the generics that appear in the generic map of the
// instance.
func (c *Component) ActiveGenerics() []Generic {
	var out []Generic
	for _, g := range c.Generics {
		if g.Active {
			out = append(out, g)
		}
	}
	return out
}

// PackageName is the name of the package declaring the component type.
func (c *Component) PackageName() string {
	return c.TypeName + "_pkg"
}

// Design is the resolved model of one schematic. Top-level components come
// first, in document order, followed by the regular components.
type Design struct {
	Name       string       `json:"name" yaml:"name"`
	Components []*Component `json:"components" yaml:"components"`
}

// Component returns the component with the given reference, or nil.
func (d *Design) Component(ref string) *Component {
	for _, c := range d.Components {
		if c.Reference == ref {
			return c
		}
	}
	return nil
}

// TopLevel returns the top-level marker components.
func (d *Design) TopLevel() []*Component {
	var out []*Component
	for _, c := range d.Components {
		if c.IsTopLevel {
			out = append(out, c)
		}
	}
	return out
}

// Instances returns the regular components.
func (d *Design) Instances() []*Component {
	var out []*Component
	for _, c := range d.Components {
		if !c.IsTopLevel {
			out = append(out, c)
		}
	}
	return out
}
