package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/netvhdl/pkg/kicad/netlist"
)

const fixture = "../../../pkg/kicad/netlist/testdata/edge_detector.net"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	pterm.DisableColor()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSectionsCommand(t *testing.T) {
	out, err := execute(t, "sections", fixture)
	require.NoError(t, err)

	for _, name := range []string{"design", "components", "libparts", "libraries", "nets"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "2-5")
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "info", fixture)
	require.NoError(t, err)

	assert.Contains(t, out, "Design: edge_detector")
	assert.Contains(t, out, "Components: 5 (3 ports, 2 instances)")
	assert.Contains(t, out, "Local signals: 1")
	assert.Contains(t, out, "clk")
	assert.Contains(t, out, "DFF")
}

func TestInfoComponentCommand(t *testing.T) {
	out, err := execute(t, "info", fixture, "U1")
	require.NoError(t, err)

	assert.Contains(t, out, "Component: U1")
	assert.Contains(t, out, "Package: DFF_pkg")
	assert.Contains(t, out, "U1_INIT")
	assert.Contains(t, out, "unconnected")

	_, err = execute(t, "info", fixture, "U42")
	assert.Error(t, err)
}

func TestResolveCommandJSON(t *testing.T) {
	out, err := execute(t, "resolve", "--format", "json", fixture)
	require.NoError(t, err)

	var dump struct {
		Name  string `json:"name"`
		Ports []struct {
			Name      string `json:"name"`
			Direction string `json:"direction"`
		} `json:"ports"`
		Signals []struct {
			Name string `json:"name"`
		} `json:"signals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dump))

	assert.Equal(t, "edge_detector", dump.Name)
	require.Len(t, dump.Ports, 3)
	assert.Equal(t, "edge", dump.Ports[2].Name)
	assert.Equal(t, "out", dump.Ports[2].Direction)
	require.Len(t, dump.Signals, 1)
	assert.Equal(t, "net_3", dump.Signals[0].Name)
}

func TestResolveCommandYAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.yaml")
	_, err := execute(t, "resolve", "--format", "yaml", "-o", path, fixture)
	require.NoError(t, err)
	resolveOutput = ""

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var dump map[string]any
	require.NoError(t, yaml.Unmarshal(data, &dump))
	assert.Equal(t, "edge_detector", dump["name"])
}

func TestResolveCommandBadFormat(t *testing.T) {
	_, err := execute(t, "resolve", "--format", "vhdl", fixture)
	assert.Error(t, err)
	resolveFormat = "json"
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	broken := filepath.Join(t.TempDir(), "broken.net")
	require.NoError(t, os.WriteFile(broken, []byte("(export (version D)\n  (design\n"), 0o644))

	out, err = execute(t, "check", broken)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, err.Error(), "line 2")
}

func TestDiffCommand(t *testing.T) {
	out, err := execute(t, "diff", fixture, fixture)
	require.NoError(t, err)
	assert.Empty(t, out)

	src, err := os.ReadFile(fixture)
	require.NoError(t, err)
	changed := filepath.Join(t.TempDir(), "changed.net")
	edited := strings.Replace(string(src), "(field (name SignalName) clk)", "(field (name SignalName) sysclk)", 1)
	require.NoError(t, os.WriteFile(changed, []byte(edited), 0o644))

	out, err = execute(t, "diff", fixture, changed)
	require.NoError(t, err)
	assert.Contains(t, out, "sysclk")
	assert.Contains(t, out, "+++ "+changed)
}

func TestFmtCommand(t *testing.T) {
	out, err := execute(t, "fmt", fixture)
	require.NoError(t, err)

	doc, err := netlist.ParseString(out)
	require.NoError(t, err)
	assert.Len(t, doc.Components, 5)
	assert.Len(t, doc.Nets, 5)
	assert.NotContains(t, out, "tstamp")
}

func TestReportError(t *testing.T) {
	pterm.DisableColor()
	_, err := execute(t, "resolve", "--format", "json", filepath.Join(t.TempDir(), "missing.net"))
	require.Error(t, err)

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "error:")
	assert.Contains(t, buf.String(), "NETLIST:001")
}
