// Package resolve turns a parsed netlist into a resolved hdl.Design.
//
// Resolution runs four passes over a private working set: classification of
// components into top-level ports and regular instances, pin attachment from
// the type library, net resolution with signal naming, and promotion of
// top-level signal names. Any error aborts the whole run.
package resolve

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

// Diagnostic codes for resolution errors.
const (
	CodeMissingSignalName = "RESOLVE:000"
	CodePinNotFound       = "RESOLVE:001"
	CodeUnknownReference  = "RESOLVE:002"
	CodeMultipleDrivers   = "RESOLVE:003"
	CodeSignalWidth       = "RESOLVE:004"
	CodePinOnTwoNets      = "RESOLVE:005"
)

// Resolver converts netlist documents into designs. It holds no state between
// runs and may be used concurrently.
type Resolver struct {
	opts Options
	log  *zap.Logger
}

// New returns a resolver. Zero fields of opts take their defaults.
func New(opts Options) *Resolver {
	opts = opts.withDefaults()
	return &Resolver{opts: opts, log: opts.Logger}
}

// Options returns the effective options.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve builds the design for doc. doc is not modified.
func (r *Resolver) Resolve(doc *netlist.Document) (*hdl.Design, error) {
	if doc == nil {
		return nil, errors.New("resolve: nil document")
	}

	w := &workset{
		opts:  r.opts,
		log:   r.log,
		byRef: make(map[string]*hdl.Component),
	}

	if err := w.classify(doc.Components); err != nil {
		return nil, err
	}
	w.attachPins(doc.Components, doc.Library)
	if err := w.resolveNets(doc.Nets); err != nil {
		return nil, err
	}
	if err := w.promote(); err != nil {
		return nil, err
	}

	design := &hdl.Design{
		Name:       doc.Design.SchematicName(),
		Components: append(w.top, w.regular...),
	}
	r.log.Debug("design resolved",
		zap.String("design", design.Name),
		zap.Int("ports", len(w.top)),
		zap.Int("instances", len(w.regular)),
		zap.Int("signals", len(design.Signals())))

	return design, nil
}

// workset is the mutable state of one resolution run.
type workset struct {
	opts    Options
	log     *zap.Logger
	top     []*hdl.Component
	regular []*hdl.Component
	// byRef indexes components by lower-cased reference.
	byRef map[string]*hdl.Component
}

func (w *workset) classify(records []netlist.ComponentRecord) error {
	for _, rec := range records {
		var (
			comp *hdl.Component
			err  error
		)
		switch {
		case strings.EqualFold(rec.Value, w.opts.InputMarker):
			comp, err = w.newTopLevel(rec, hdl.DirOut)
		case strings.EqualFold(rec.Value, w.opts.OutputMarker):
			comp, err = w.newTopLevel(rec, hdl.DirIn)
		default:
			comp, err = w.newRegular(rec)
		}
		if err != nil {
			return err
		}

		if comp.IsTopLevel {
			w.top = append(w.top, comp)
		} else {
			w.regular = append(w.regular, comp)
		}
	}

	for _, group := range [][]*hdl.Component{w.top, w.regular} {
		for _, c := range group {
			key := strings.ToLower(c.Reference)
			if other, taken := w.byRef[key]; taken {
				return netlist.NewFormatError(netlist.CodeDuplicateRef, c.Reference,
					"reference clashes with %s", other.Reference)
			}
			w.byRef[key] = c
		}
	}

	w.log.Debug("components classified",
		zap.Int("top_level", len(w.top)),
		zap.Int("regular", len(w.regular)))
	return nil
}

// newTopLevel builds a port component. internal is the direction of its
// single pin as seen from inside the design.
func (w *workset) newTopLevel(rec netlist.ComponentRecord, internal hdl.Direction) (*hdl.Component, error) {
	generics, err := w.generics(rec)
	if err != nil {
		return nil, err
	}
	comp := &hdl.Component{
		Reference:  rec.Reference,
		TypeName:   rec.Value,
		Generics:   generics,
		IsTopLevel: true,
		IsInline:   true,
	}

	pin := hdl.Pin{
		PinSpec:    netlist.PinSpec{Number: 1, Direction: internal},
		DataType:   w.opts.DefaultPinType,
		IsTopLevel: true,
	}
	if g := comp.GenericByName(w.opts.SignalNameField); g != nil {
		pin.Width = g.Width
		pin.WidthParam = g.WidthParam
	}
	comp.Pins = []hdl.Pin{pin}

	return comp, nil
}

func (w *workset) newRegular(rec netlist.ComponentRecord) (*hdl.Component, error) {
	generics, err := w.generics(rec)
	if err != nil {
		return nil, err
	}
	comp := &hdl.Component{
		Reference: rec.Reference,
		TypeName:  rec.Value,
		Generics:  generics,
	}
	for _, t := range w.opts.InlineTypes {
		if strings.EqualFold(t, rec.Value) {
			comp.IsInline = true
			break
		}
	}
	return comp, nil
}

// attachPins copies the template pins onto every regular component. The
// template is looked up in the component's source library first. A type
// missing from the library leaves the component without pins.
func (w *workset) attachPins(records []netlist.ComponentRecord, lib *netlist.Library) {
	if lib == nil {
		lib = netlist.NewLibrary()
	}
	sources := make(map[string]netlist.ComponentRecord, len(records))
	for _, rec := range records {
		sources[rec.Reference] = rec
	}

	for _, comp := range w.regular {
		src := sources[comp.Reference]
		tmpl, ok := lib.LookupIn(src.Lib, comp.TypeName)
		if !ok && src.Part != "" {
			tmpl, ok = lib.LookupIn(src.Lib, src.Part)
		}
		if !ok {
			w.log.Debug("no pin template for component",
				zap.String("ref", comp.Reference),
				zap.String("type", comp.TypeName))
			continue
		}

		comp.Pins = make([]hdl.Pin, 0, len(tmpl.Pins))
		for _, spec := range tmpl.Pins {
			comp.Pins = append(comp.Pins, hdl.Pin{
				PinSpec:  spec,
				DataType: w.opts.DefaultPinType,
			})
		}
	}
}

type endpoint struct {
	comp *hdl.Component
	pin  *hdl.Pin
}

// resolveNets names every pin on a multi-pin net. All endpoints of a net are
// located and checked for a single driver before any name is written.
func (w *workset) resolveNets(nets []netlist.NetGroup) error {
	named := 0
	for _, net := range nets {
		if len(net.Connections) < 2 {
			continue
		}

		endpoints := make([]endpoint, 0, len(net.Connections))
		var driver *endpoint
		for _, conn := range net.Connections {
			comp, ok := w.byRef[strings.ToLower(conn.Reference)]
			if !ok {
				return errors.WithHint(
					netlist.NewFormatError(CodeUnknownReference, conn.Reference,
						"net %d refers to an unknown component", net.Index+1),
					"every node reference must match a component in the components section")
			}
			pin := comp.PinByNumber(conn.Pin)
			if pin == nil {
				if comp.IsTopLevel {
					return netlist.NewFormatError(CodePinNotFound, comp.Reference,
						"top-level component has no pin %d", conn.Pin)
				}
				return errors.WithHintf(
					netlist.NewFormatError(CodePinNotFound, comp.Reference,
						"pin %d not found on type %s", conn.Pin, comp.TypeName),
					"check that the libparts section defines %s with this pin", comp.TypeName)
			}

			if slices.ContainsFunc(endpoints, func(e endpoint) bool { return e.pin == pin }) {
				w.log.Debug("repeated node ignored",
					zap.String("ref", comp.Reference),
					zap.Int("pin", pin.Number),
					zap.Int("net", net.Index+1))
				continue
			}
			if pin.SignalName != "" {
				return netlist.NewFormatError(CodePinOnTwoNets, comp.Reference,
					"pin %d is on net %d and on an earlier net (%s)", pin.Number, net.Index+1, pin.SignalName)
			}

			ep := endpoint{comp: comp, pin: pin}
			endpoints = append(endpoints, ep)
			if pin.Direction == hdl.DirOut {
				if driver != nil {
					return errors.WithDetailf(
						netlist.NewFormatError(CodeMultipleDrivers, comp.Reference,
							"net %d has more than one output", net.Index+1),
						"pin %d of %s and pin %d of %s both drive the net",
						driver.pin.Number, driver.comp.Reference, pin.Number, comp.Reference)
				}
				driver = &ep
			}
		}

		if len(endpoints) < 2 {
			continue
		}

		name := w.opts.NetPrefix + strconv.Itoa(net.Index+1)
		for _, ep := range endpoints {
			ep.pin.SignalName = name
			if !ep.comp.IsTopLevel {
				ep.pin.NeedsLocalSignal = true
			}
		}
		named++
	}

	w.log.Debug("nets resolved", zap.Int("nets", len(nets)), zap.Int("named", named))
	return nil
}

// promote replaces the generated name of each top-level net with the name
// given by its SignalName field.
func (w *workset) promote() error {
	for _, top := range w.top {
		g := top.GenericByName(w.opts.SignalNameField)
		if g == nil {
			return errors.WithHintf(
				netlist.NewFormatError(CodeMissingSignalName, top.Reference,
					"top-level component has no %s field", w.opts.SignalNameField),
				"add a %s field naming the port", w.opts.SignalNameField)
		}

		pin := &top.Pins[0]
		if generated := pin.SignalName; generated != "" {
			for _, comp := range w.regular {
				for i := range comp.Pins {
					if comp.Pins[i].SignalName == generated {
						comp.Pins[i].SignalName = g.Value
						comp.Pins[i].NeedsLocalSignal = false
					}
				}
			}
		}
		pin.SignalName = g.Value
		pin.Name = g.Value

		w.log.Debug("port promoted",
			zap.String("ref", top.Reference),
			zap.String("signal", g.Value),
			zap.Stringer("direction", pin.PortDirection()))
	}
	return nil
}
