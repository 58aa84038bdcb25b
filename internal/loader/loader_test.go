package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/dfg2blif/internal/validator"
)

func newLoader(t *testing.T) *Loader {
	t.Helper()
	v, err := validator.New()
	require.NoError(t, err)
	return New(v)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.dot":        FormatDOT,
		"a.GV":         FormatDOT,
		"a.cue":        FormatCUE,
		"dir/a.json":   FormatJSON,
		"a.yaml":       FormatYAML,
		"a.yml":        FormatYAML,
		"a.blif":       FormatUnknown,
		"no_extension": FormatUnknown,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", path, got, want)
		}
	}
}

const chainJSON = `{"name": "chain", "attrs": {"channel_width": 16}, "nodes": [
	{"name": "start", "attrs": {"type": "Entry", "out": "x:4"}},
	{"name": "b", "attrs": {"type": "Buffer", "in": "y:4", "out": "z:4"}},
	{"name": "end", "attrs": {"type": "Exit", "in": "w:4"}}],
	"edges": [{"tail": "start", "head": "b", "attrs": {"from": "x", "to": "y"}},
	          {"tail": "b", "head": "end", "attrs": {"from": "z", "to": "w"}}]}`

const chainYAML = `
name: chain
attrs:
  channel_width: 16
nodes:
  - name: start
    attrs: {type: Entry, out: "x:4"}
  - name: b
    attrs: {type: Buffer, in: "y:4", out: "z:4"}
  - name: end
    attrs: {type: Exit, in: "w:4"}
edges:
  - {tail: start, head: b, attrs: {from: x, to: y}}
  - {tail: b, head: end, attrs: {from: z, to: w}}
`

func TestLoadEachFormat(t *testing.T) {
	l := newLoader(t)
	sources := map[string]string{
		"g.dot":  chainDOT,
		"g.json": chainJSON,
		"g.yaml": chainYAML,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			d, err := l.Load(writeFile(t, name, src))
			require.NoError(t, err)
			require.Equal(t, "chain", d.Name)
			require.Equal(t, "16", d.Attrs["channel_width"])
			require.Len(t, d.Nodes, 3)
			require.Equal(t, "b", d.Nodes[1].Name)
			require.Equal(t, "y:4", d.Nodes[1].Attrs["in"])
			require.Len(t, d.Edges, 2)
			require.Equal(t, "end", d.Edges[1].Head)
			require.Equal(t, "w", d.Edges[1].Attrs["to"])
		})
	}
}

func TestLoadNamesGraphAfterFile(t *testing.T) {
	d, err := newLoader(t).Load(writeFile(t, "adder.dot", `digraph { a }`))
	require.NoError(t, err)
	require.Equal(t, "adder", d.Name)
}

func TestLoadErrors(t *testing.T) {
	l := newLoader(t)

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.dot"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(writeFile(t, "graph.txt", "digraph {}"))
	require.True(t, errors.Is(err, ErrUnknownFormat), "got %v", err)

	_, err = l.Load(writeFile(t, "bad.yaml", "nodes: []\nnodez: []\n"))
	require.Error(t, err, "unknown YAML keys must be rejected")

	_, err = l.Load(writeFile(t, "bad.json", `{"nodes": [{"name": ""}]}`))
	require.Error(t, err)
}
