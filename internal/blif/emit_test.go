package blif

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
	"github.com/robert-at-pretension-io/dfg2blif/internal/extractor"
	"github.com/robert-at-pretension-io/dfg2blif/internal/fanout"
	"github.com/robert-at-pretension-io/dfg2blif/internal/linker"
)

func compile(t *testing.T, d *dfg.Description) *dfg.Graph {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := dfg.FromDescription(d)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	if _, err := extractor.New(extractor.Options{}, log).Extract(g); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := linker.Link(g, log); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if _, err := fanout.Reduce(g, log); err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	return g
}

func emit(t *testing.T, g *dfg.Graph, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Emit(&buf, g, opts); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return buf.String()
}

func bufferChain() *dfg.Description {
	return &dfg.Description{
		Nodes: []dfg.NodeDescription{
			{Name: "start", Attrs: map[string]string{"type": "Entry", "out": "x:4"}},
			{Name: "b", Attrs: map[string]string{"type": "Buffer", "in": "y:4", "out": "z:4"}},
			{Name: "end", Attrs: map[string]string{"type": "Exit", "in": "w:4"}},
		},
		Edges: []dfg.EdgeDescription{
			{Tail: "start", Head: "b", Attrs: map[string]string{"from": "x", "to": "y"}},
			{Tail: "b", Head: "end", Attrs: map[string]string{"from": "z", "to": "w"}},
		},
	}
}

func TestEmitBufferChain(t *testing.T) {
	g := compile(t, bufferChain())
	if g.ChannelWidth != 32 {
		t.Fatalf("channel width = %d, want 32", g.ChannelWidth)
	}

	got := emit(t, g, Options{})
	want := `#### BLIF netlist of DFG circuit
.model my_circuit
.inputs\
    start_x_to_b_y
.outputs\
    b_z_to_end_w
#Node start
#Skipped
#Node b
.subckt Buffer\
    y=start_x_to_b_y z=b_z_to_end_w
#Node end
#Skipped
.end
`
	if got != want {
		t.Fatalf("netlist mismatch\n--- got ---\n%s--- want ---\n%s", got, want)
	}
}

func TestEmitIsReadOnly(t *testing.T) {
	g := compile(t, bufferChain())
	first := emit(t, g, Options{})
	second := emit(t, g, Options{})
	if first != second {
		t.Fatalf("second emission differs")
	}
}

func TestEmitOptions(t *testing.T) {
	g := compile(t, bufferChain())
	ts := time.Date(2024, time.March, 5, 9, 7, 3, 0, time.UTC)
	got := emit(t, g, Options{ModelName: "adder", Header: "generated", Timestamp: ts})

	lines := strings.Split(got, "\n")
	if lines[0] != "#### File Created: Tue Mar  5 09:07:03 2024" {
		t.Fatalf("timestamp line = %q", lines[0])
	}
	if lines[1] != "#### generated" || lines[2] != ".model adder" {
		t.Fatalf("preamble = %q", lines[:3])
	}
}

func TestEmitOperatorsAndEmptyLists(t *testing.T) {
	g := compile(t, &dfg.Description{
		Nodes: []dfg.NodeDescription{
			{Name: "k", Attrs: map[string]string{"type": "Constant", "out": "v"}},
			{Name: "st", Attrs: map[string]string{"type": "Operator", "op": "store", "in": "addr data"}},
			{Name: "note", Attrs: map[string]string{"label": "free text"}},
		},
		Edges: []dfg.EdgeDescription{
			{Tail: "k", Head: "st", Attrs: map[string]string{"from": "v", "to": "data"}},
		},
	})
	got := emit(t, g, Options{})

	for _, want := range []string{
		".inputs\n.outputs\\\n    st_out1_to_st_sink_in1\n",
		"#Node k\n.subckt Constant\\\n    v=k_v_to_st_data\n",
		// addr is never connected and is left out.
		"#Node st\n#Op store\n.subckt Operator\\\n    data=k_v_to_st_data out1=st_out1_to_st_sink_in1\n",
		"#Node note\n#Skipped\n",
		"#Node st_sink\n#Skipped\n.end\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}
}

func TestEmitValidNodeWithoutConnections(t *testing.T) {
	g := compile(t, &dfg.Description{
		Nodes: []dfg.NodeDescription{{Name: "m", Attrs: map[string]string{"type": "Merge", "in": "a b"}}},
	})
	if got := emit(t, g, Options{}); !strings.Contains(got, "#Node m\n.subckt Merge\n.end\n") {
		t.Fatalf("unexpected netlist\n%s", got)
	}
}

func TestEmitAfterFanoutReduction(t *testing.T) {
	g := compile(t, &dfg.Description{
		Nodes: []dfg.NodeDescription{
			{Name: "src", Attrs: map[string]string{"type": "Entry", "out": "x"}},
			{Name: "F", Attrs: map[string]string{"type": "Fork", "in": "i", "out": "a b c"}},
			{Name: "e1", Attrs: map[string]string{"type": "Exit", "in": "w"}},
			{Name: "e2", Attrs: map[string]string{"type": "Exit", "in": "w"}},
			{Name: "e3", Attrs: map[string]string{"type": "Exit", "in": "w"}},
		},
		Edges: []dfg.EdgeDescription{
			{Tail: "src", Head: "F", Attrs: map[string]string{"from": "x", "to": "i"}},
			{Tail: "F", Head: "e1", Attrs: map[string]string{"from": "a", "to": "w"}},
			{Tail: "F", Head: "e2", Attrs: map[string]string{"from": "b", "to": "w"}},
			{Tail: "F", Head: "e3", Attrs: map[string]string{"from": "c", "to": "w"}},
		},
	})
	got := emit(t, g, Options{})

	if !strings.Contains(got, "#Node F\n#Skipped\n") {
		t.Fatalf("reduced fork must be skipped\n%s", got)
	}
	if !strings.Contains(got, ".outputs\\\n    F_fork1_out2_to_e1_w F_fork1_out1_to_e2_w F_fork0_out1_to_e3_w\n") {
		t.Fatalf("unexpected outputs\n%s", got)
	}
	want := "#Node F_fork0\n.subckt Fork\\\n    in1=src_x_to_F_fork0_in1 out1=F_fork0_out1_to_e3_w out2=F_fork0_out2_to_F_fork1_in1\n" +
		"#Node F_fork1\n.subckt Fork\\\n    in1=F_fork0_out2_to_F_fork1_in1 out1=F_fork1_out1_to_e2_w out2=F_fork1_out2_to_e1_w\n.end\n"
	if !strings.HasSuffix(got, want) {
		t.Fatalf("unexpected fork tree\n%s", got)
	}
}
