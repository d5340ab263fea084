package resolve

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/OpenTraceLab/netvhdl/pkg/hdl"
	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

func testResolver(t *testing.T) *Resolver {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	return New(opts)
}

func gateLibrary(t *testing.T) *netlist.Library {
	t.Helper()
	lib := netlist.NewLibrary()
	for _, tmpl := range []netlist.TypePinTemplate{
		{Name: "BUF", Pins: []netlist.PinSpec{
			{Number: 1, Name: "A", Direction: netlist.DirIn},
			{Number: 2, Name: "Y", Direction: netlist.DirOut},
		}},
		{Name: "RES", Pins: []netlist.PinSpec{
			{Number: 1, Name: "P1"},
			{Number: 2, Name: "P2"},
		}},
	} {
		if err := lib.Add(tmpl); err != nil {
			t.Fatalf("Failed to build library: %v", err)
		}
	}
	return lib
}

func nets(groups ...[]netlist.Connection) []netlist.NetGroup {
	out := make([]netlist.NetGroup, len(groups))
	for i, g := range groups {
		out[i] = netlist.NetGroup{Index: i, Connections: g}
	}
	return out
}

func TestResolveFixture(t *testing.T) {
	doc, err := netlist.ParseFile("../kicad/netlist/testdata/edge_detector.net")
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	if design.Name != "edge_detector" {
		t.Errorf("Expected name edge_detector, got %s", design.Name)
	}

	wantPorts := []hdl.Port{
		{Name: "clk", Direction: hdl.DirIn, DataType: "std_logic", Reference: "TOP1"},
		{Name: "din", Direction: hdl.DirIn, DataType: "std_logic", Reference: "TOP2"},
		{Name: "edge", Direction: hdl.DirOut, DataType: "std_logic", Reference: "TOP3"},
	}
	if got := design.Ports(); !reflect.DeepEqual(got, wantPorts) {
		t.Errorf("Expected ports %+v, got %+v", wantPorts, got)
	}

	signals := design.Signals()
	if len(signals) != 1 || signals[0].Name != "net_3" {
		t.Errorf("Expected only net_3 as local signal, got %+v", signals)
	}

	u1 := design.Component("U1")
	want := map[int]string{1: "din", 2: "clk", 3: "net_3", 4: ""}
	for num, name := range want {
		if got := u1.PinByNumber(num).SignalName; got != name {
			t.Errorf("U1 pin %d: expected %q, got %q", num, name, got)
		}
	}
	if u1.PinByNumber(2).NeedsLocalSignal {
		t.Error("Expected promoted clk pin to need no local signal")
	}

	if g := u1.GenericByName("INIT"); g == nil || !g.Active || g.Value != "(others => '0')" {
		t.Errorf("Unexpected INIT generic %+v", g)
	}
	if len(u1.Generics) != 1 {
		t.Errorf("Expected non-generic fields to be ignored, got %+v", u1.Generics)
	}

	u2 := design.Component("U2")
	if got := u2.PinByNumber(3).SignalName; got != "edge" {
		t.Errorf("Expected U2 output promoted to edge, got %q", got)
	}
}

func TestResolveNetRoundTrip(t *testing.T) {
	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "R1", Value: "RES"},
			{Reference: "R2", Value: "RES"},
		},
		Library: gateLibrary(t),
		Nets: nets(
			[]netlist.Connection{{Reference: "R1", Pin: 1}, {Reference: "R2", Pin: 2}},
		),
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	for _, ref := range []string{"R1", "R2"} {
		comp := design.Component(ref)
		var named []int
		for _, p := range comp.Pins {
			if p.SignalName == "net_1" && p.NeedsLocalSignal {
				named = append(named, p.Number)
			}
		}
		if len(named) != 1 {
			t.Errorf("%s: expected exactly one pin on net_1, got %v", ref, named)
		}
	}
	if p := design.Component("R2").PinByNumber(2); p.SignalName != "net_1" {
		t.Errorf("Expected R2 pin 2 on net_1, got %q", p.SignalName)
	}
}

func TestResolveMultipleDriversCommitsNothing(t *testing.T) {
	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "U1", Value: "BUF"},
			{Reference: "U2", Value: "BUF"},
			{Reference: "U3", Value: "BUF"},
		},
		Library: gateLibrary(t),
		Nets: nets(
			[]netlist.Connection{{Reference: "U1", Pin: 2}, {Reference: "U3", Pin: 1}, {Reference: "U2", Pin: 2}},
		),
	}

	_, err := testResolver(t).Resolve(doc)
	fe, ok := netlist.AsFormatError(err)
	if !ok || fe.Code != CodeMultipleDrivers {
		t.Fatalf("Expected %s, got %v", CodeMultipleDrivers, err)
	}
	if fe.Reference != "U2" {
		t.Errorf("Expected second driver U2, got %s", fe.Reference)
	}

	// Run the passes by hand to inspect the working set.
	w := &workset{opts: DefaultOptions().withDefaults(), log: zaptest.NewLogger(t), byRef: map[string]*hdl.Component{}}
	if err := w.classify(doc.Components); err != nil {
		t.Fatalf("classify: %v", err)
	}
	w.attachPins(doc.Components, doc.Library)
	if err := w.resolveNets(doc.Nets); err == nil {
		t.Fatal("Expected driver conflict")
	}
	for _, c := range w.regular {
		for _, p := range c.Pins {
			if p.SignalName != "" {
				t.Errorf("%s pin %d: expected no name committed, got %q", c.Reference, p.Number, p.SignalName)
			}
		}
	}
}

func TestResolvePromotion(t *testing.T) {
	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "TOP1", Value: "top_in", Fields: []netlist.Field{{Name: "SignalName", Value: "clk"}}},
			{Reference: "U1", Value: "BUF"},
			{Reference: "U2", Value: "BUF"},
		},
		Library: gateLibrary(t),
		Nets: nets(
			[]netlist.Connection{{Reference: "TOP1", Pin: 1}, {Reference: "U1", Pin: 1}, {Reference: "U2", Pin: 1}},
		),
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	top := design.Component("TOP1")
	if !top.IsTopLevel || top.Pins[0].Name != "clk" || top.Pins[0].SignalName != "clk" {
		t.Errorf("Unexpected top-level pin %+v", top.Pins[0])
	}
	if top.Pins[0].Direction != hdl.DirOut || top.Pins[0].PortDirection() != hdl.DirIn {
		t.Errorf("Expected internal out and port in, got %v/%v", top.Pins[0].Direction, top.Pins[0].PortDirection())
	}
	for _, ref := range []string{"U1", "U2"} {
		p := design.Component(ref).PinByNumber(1)
		if p.SignalName != "clk" || p.NeedsLocalSignal {
			t.Errorf("%s: expected promoted clk without local signal, got %+v", ref, p)
		}
	}
	if design.Components[0] != top {
		t.Error("Expected top-level components first")
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	doc, err := netlist.ParseFile("../kicad/netlist/testdata/edge_detector.net")
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}

	r := testResolver(t)
	first, err := r.Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	second, err := r.Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical designs from repeated runs")
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      func(t *testing.T) *netlist.Document
		wantCode string
		wantRef  string
	}{
		{
			name: "unknown reference",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{{Reference: "U1", Value: "BUF"}},
					Library:    gateLibrary(t),
					Nets:       nets([]netlist.Connection{{Reference: "U1", Pin: 1}, {Reference: "U9", Pin: 1}}),
				}
			},
			wantCode: CodeUnknownReference,
			wantRef:  "U9",
		},
		{
			name: "pin not on type",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{{Reference: "U1", Value: "BUF"}, {Reference: "U2", Value: "BUF"}},
					Library:    gateLibrary(t),
					Nets:       nets([]netlist.Connection{{Reference: "U1", Pin: 2}, {Reference: "U2", Pin: 7}}),
				}
			},
			wantCode: CodePinNotFound,
			wantRef:  "U2",
		},
		{
			name: "top-level pin other than 1",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{
						{Reference: "TOP1", Value: "TOP_OUT", Fields: []netlist.Field{{Name: "SignalName", Value: "q"}}},
						{Reference: "U1", Value: "BUF"},
					},
					Library: gateLibrary(t),
					Nets:    nets([]netlist.Connection{{Reference: "U1", Pin: 2}, {Reference: "TOP1", Pin: 2}}),
				}
			},
			wantCode: CodePinNotFound,
			wantRef:  "TOP1",
		},
		{
			name: "pin on two nets",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{{Reference: "U1", Value: "BUF"}, {Reference: "U2", Value: "BUF"}},
					Library:    gateLibrary(t),
					Nets: nets(
						[]netlist.Connection{{Reference: "U1", Pin: 2}, {Reference: "U2", Pin: 1}},
						[]netlist.Connection{{Reference: "U2", Pin: 2}, {Reference: "U2", Pin: 1}},
					),
				}
			},
			wantCode: CodePinOnTwoNets,
			wantRef:  "U2",
		},
		{
			name: "missing signal name",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{{Reference: "TOP1", Value: "TOP_IN"}},
					Library:    gateLibrary(t),
				}
			},
			wantCode: CodeMissingSignalName,
			wantRef:  "TOP1",
		},
		{
			name: "references differing in case",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{
						{Reference: "U1", Value: "BUF"},
						{Reference: "u1", Value: "BUF"},
						{Reference: "U2", Value: "BUF"},
					},
					Library: gateLibrary(t),
					Nets:    nets([]netlist.Connection{{Reference: "u1", Pin: 2}, {Reference: "U2", Pin: 1}}),
				}
			},
			wantCode: netlist.CodeDuplicateRef,
			wantRef:  "u1",
		},
		{
			name: "malformed signal width",
			doc: func(t *testing.T) *netlist.Document {
				return &netlist.Document{
					Components: []netlist.ComponentRecord{
						{Reference: "TOP1", Value: "TOP_IN", Fields: []netlist.Field{{Name: "SignalName", Value: "data[8"}}},
					},
					Library: gateLibrary(t),
				}
			},
			wantCode: CodeSignalWidth,
			wantRef:  "TOP1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testResolver(t).Resolve(tt.doc(t))
			fe, ok := netlist.AsFormatError(err)
			if !ok {
				t.Fatalf("Expected format error, got %v", err)
			}
			if fe.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, fe.Code)
			}
			if fe.Reference != tt.wantRef {
				t.Errorf("Expected reference %q, got %q", tt.wantRef, fe.Reference)
			}
		})
	}
}

func TestResolvePinsAreCopies(t *testing.T) {
	lib := gateLibrary(t)
	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{{Reference: "U1", Value: "BUF"}, {Reference: "U2", Value: "buf"}},
		Library:    lib,
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	design.Component("U1").Pins[0].Name = "changed"
	if got := design.Component("U2").Pins[0].Name; got != "A" {
		t.Errorf("Expected U2 pin to be independent, got %s", got)
	}
	tmpl, _ := lib.Lookup("BUF")
	if tmpl.Pins[0].Name != "A" {
		t.Errorf("Expected template unchanged, got %s", tmpl.Pins[0].Name)
	}
}

func TestResolveTemplateFallbackAndInline(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	opts.InlineTypes = []string{"res"}

	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "U1", Value: "74HC125", Part: "BUF"},
			{Reference: "R1", Value: "RES"},
			{Reference: "X1", Value: "MYSTERY"},
		},
		Library: gateLibrary(t),
	}

	design, err := New(opts).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	if got := len(design.Component("U1").Pins); got != 2 {
		t.Errorf("Expected libsource part fallback to attach 2 pins, got %d", got)
	}
	if !design.Component("R1").IsInline || design.Component("U1").IsInline {
		t.Error("Expected only R1 to be inline")
	}
	if got := len(design.Component("X1").Pins); got != 0 {
		t.Errorf("Expected unknown type to have no pins, got %d", got)
	}
}

func TestResolveUnconnectedTopLevel(t *testing.T) {
	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "TOP1", Value: "TOP_IN", Fields: []netlist.Field{{Name: "SignalName", Value: "bus[8]"}}},
			{Reference: "U1", Value: "BUF"},
		},
		Library: gateLibrary(t),
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	ports := design.Ports()
	if len(ports) != 1 || ports[0].Name != "bus" || ports[0].Width != 8 {
		t.Errorf("Unexpected ports %+v", ports)
	}
	for _, p := range design.Component("U1").Pins {
		if p.SignalName != "" {
			t.Errorf("Expected unconnected pins to stay unnamed, got %q", p.SignalName)
		}
	}
}

func TestResolveRepeatedNode(t *testing.T) {
	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "U1", Value: "BUF"},
			{Reference: "U2", Value: "BUF"},
			{Reference: "U3", Value: "BUF"},
		},
		Library: gateLibrary(t),
		Nets: nets(
			[]netlist.Connection{{Reference: "U1", Pin: 2}, {Reference: "U2", Pin: 1}, {Reference: "U1", Pin: 2}},
			[]netlist.Connection{{Reference: "U3", Pin: 2}, {Reference: "u3", Pin: 2}},
		),
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Expected repeated node to be tolerated, got %v", err)
	}

	for _, conn := range []netlist.Connection{{Reference: "U1", Pin: 2}, {Reference: "U2", Pin: 1}} {
		pin := design.Component(conn.Reference).PinByNumber(conn.Pin)
		if pin.SignalName != "net_1" || !pin.NeedsLocalSignal {
			t.Errorf("%s: expected net_1, got %+v", conn.Reference, pin)
		}
	}
	if got := design.Component("U3").PinByNumber(2).SignalName; got != "" {
		t.Errorf("Expected net with a single distinct pin to stay unnamed, got %q", got)
	}
}

func TestResolveLibraryQualifiedTemplates(t *testing.T) {
	lib := netlist.NewLibrary()
	for _, tmpl := range []netlist.TypePinTemplate{
		{Name: "BUF", Lib: "gates", Pins: []netlist.PinSpec{
			{Number: 1, Name: "A", Direction: netlist.DirIn},
			{Number: 2, Name: "Y", Direction: netlist.DirOut},
		}},
		{Name: "BUF", Lib: "tristate", Pins: []netlist.PinSpec{
			{Number: 1, Name: "A", Direction: netlist.DirIn},
			{Number: 2, Name: "OE", Direction: netlist.DirIn},
			{Number: 3, Name: "Y", Direction: netlist.DirOut},
		}},
	} {
		if err := lib.Add(tmpl); err != nil {
			t.Fatalf("Failed to build library: %v", err)
		}
	}

	doc := &netlist.Document{
		Components: []netlist.ComponentRecord{
			{Reference: "U1", Value: "BUF", Lib: "tristate"},
			{Reference: "U2", Value: "BUF", Lib: "gates"},
			{Reference: "U3", Value: "BUF"},
		},
		Library: lib,
	}

	design, err := testResolver(t).Resolve(doc)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	want := map[string]int{"U1": 3, "U2": 2, "U3": 2}
	for ref, n := range want {
		if got := len(design.Component(ref).Pins); got != n {
			t.Errorf("%s: expected %d pins, got %d", ref, n, got)
		}
	}
}
