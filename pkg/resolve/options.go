package resolve

import "go.uber.org/zap"

// Options controls naming conventions and defaults of the resolver.
type Options struct {
	// GenericPrefix marks component fields that become active generics.
	GenericPrefix string
	// SignalNameField names the field carrying a top-level signal name.
	SignalNameField string
	// NetPrefix is prepended to the one-based net index to name signals.
	NetPrefix string

	// InputMarker and OutputMarker are the component values of top-level
	// ports. Matching is case-insensitive.
	InputMarker  string
	OutputMarker string

	DefaultPinType     string
	DefaultGenericType string

	// InlineTypes lists component types emitted inline rather than as
	// instances of a separately declared entity.
	InlineTypes []string

	Logger *zap.Logger
}

// DefaultOptions returns the standard KiCad naming conventions.
func DefaultOptions() Options {
	return Options{
		GenericPrefix:      "G_",
		SignalNameField:    "SignalName",
		NetPrefix:          "net_",
		InputMarker:        "TOP_IN",
		OutputMarker:       "TOP_OUT",
		DefaultPinType:     "std_logic",
		DefaultGenericType: "integer",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.GenericPrefix == "" {
		o.GenericPrefix = def.GenericPrefix
	}
	if o.SignalNameField == "" {
		o.SignalNameField = def.SignalNameField
	}
	if o.NetPrefix == "" {
		o.NetPrefix = def.NetPrefix
	}
	if o.InputMarker == "" {
		o.InputMarker = def.InputMarker
	}
	if o.OutputMarker == "" {
		o.OutputMarker = def.OutputMarker
	}
	if o.DefaultPinType == "" {
		o.DefaultPinType = def.DefaultPinType
	}
	if o.DefaultGenericType == "" {
		o.DefaultGenericType = def.DefaultGenericType
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
