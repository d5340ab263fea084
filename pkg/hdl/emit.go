package hdl

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Emitter renders a resolved design. Emitters must not modify d.
type Emitter interface {
	Emit(w io.Writer, d *Design) error
}

// DumpVersion is the version of the structured dump layout.
const DumpVersion = "1.0"

// Dump is the serializable view written by JSONEmitter and YAMLEmitter.
type Dump struct {
	Version     string       `json:"version" yaml:"version"`
	Name        string       `json:"name" yaml:"name"`
	Ports       []Port       `json:"ports" yaml:"ports"`
	Signals     []Signal     `json:"signals" yaml:"signals"`
	Components  []*Component `json:"components" yaml:"components"`
	GeneratedBy string       `json:"generated_by" yaml:"generated_by"`
}

// NewDump collects the dump view of d.
func NewDump(d *Design) Dump {
	return Dump{
		Version:     DumpVersion,
		Name:        d.Name,
		Ports:       d.Ports(),
		Signals:     d.Signals(),
		Components:  d.Components,
		GeneratedBy: "netvhdl",
	}
}

// JSONEmitter writes the design as indented JSON.
type JSONEmitter struct {
	Indent string
}

func (e JSONEmitter) Emit(w io.Writer, d *Design) error {
	if d == nil {
		return errors.New("hdl: nil design")
	}
	indent := e.Indent
	if indent == "" {
		indent = "  "
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return errors.Wrap(enc.Encode(NewDump(d)), "failed to write json dump")
}

// YAMLEmitter writes the design as YAML.
type YAMLEmitter struct{}

func (YAMLEmitter) Emit(w io.Writer, d *Design) error {
	if d == nil {
		return errors.New("hdl: nil design")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDump(d)); err != nil {
		return errors.Wrap(err, "failed to write yaml dump")
	}
	return errors.Wrap(enc.Close(), "failed to write yaml dump")
}

// EmitterFor returns the emitter registered for format ("json" or "yaml").
func EmitterFor(format string) (Emitter, error) {
	switch format {
	case "json":
		return JSONEmitter{}, nil
	case "yaml", "yml":
		return YAMLEmitter{}, nil
	}
	return nil, errors.WithHint(
		errors.Newf("unknown output format %q", format),
		"supported formats are json and yaml")
}
