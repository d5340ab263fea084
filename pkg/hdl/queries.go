package hdl

// Port is one port of the top-level entity.
type Port struct {
	Name       string    `json:"name" yaml:"name"`
	Direction  Direction `json:"direction" yaml:"direction"`
	Width      int       `json:"width,omitempty" yaml:"width,omitempty"`
	WidthParam string    `json:"width_param,omitempty" yaml:"width_param,omitempty"`
	DataType   string    `json:"data_type" yaml:"data_type"`
	Reference  string    `json:"reference" yaml:"reference"`
}

// Signal is an internal signal connecting regular component pins.
type Signal struct {
	Name     string `json:"name" yaml:"name"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	WidthRef string `json:"width_ref,omitempty" yaml:"width_ref,omitempty"`
	DataType string `json:"data_type" yaml:"data_type"`
	Owner    string `json:"owner" yaml:"owner"`
}

// Ports lists the entity ports, one per top-level component, in document
// order. Port direction is the inverse of the internal pin direction.
func (d *Design) Ports() []Port {
	var ports []Port
	for _, c := range d.TopLevel() {
		for i := range c.Pins {
			p := &c.Pins[i]
			ports = append(ports, Port{
				Name:       p.Name,
				Direction:  p.PortDirection(),
				Width:      p.Width,
				WidthParam: p.WidthParam,
				DataType:   p.DataType,
				Reference:  c.Reference,
			})
		}
	}
	return ports
}

// Signals lists the local signals that must be declared, unique by name, in
// first-occurrence order. A vector sized by a generic refers to the generic by
// its unique name.
func (d *Design) Signals() []Signal {
	var signals []Signal
	seen := make(map[string]bool)
	for _, c := range d.Instances() {
		for i := range c.Pins {
			p := &c.Pins[i]
			if !p.NeedsLocalSignal || seen[p.SignalName] {
				continue
			}
			seen[p.SignalName] = true

			s := Signal{
				Name:     p.SignalName,
				Width:    p.Width,
				DataType: p.DataType,
				Owner:    c.Reference,
			}
			if p.WidthParam != "" {
				s.WidthRef = c.Reference + "_" + p.WidthParam
			}
			signals = append(signals, s)
		}
	}
	return signals
}
