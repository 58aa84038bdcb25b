package dfg

import (
	"errors"
	"testing"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		raw     string
		want    Kind
		wantErr error
	}{
		{"Operator", KindOperator, nil},
		{"Buffer", KindBuffer, nil},
		{"Demux", KindDemux, nil},
		{"Entry", KindEntry, nil},
		{"Exit", KindExit, nil},
		{" Fork ", KindFork, nil},
		{"", KindUnspecified, nil},
		{"   ", KindUnspecified, nil},
		{"buffer", KindUnrecognized, ErrUnrecognizedKind},
		{"Frobnicator", KindUnrecognized, ErrUnrecognizedKind},
	}

	for _, tt := range tests {
		got, err := ResolveKind(tt.raw)
		if got != tt.want {
			t.Fatalf("ResolveKind(%q) = %v, want %v", tt.raw, got, tt.want)
		}
		if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
			t.Fatalf("ResolveKind(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
		}
	}
}

func TestKindEmittable(t *testing.T) {
	for _, k := range []Kind{KindOperator, KindBuffer, KindConstant, KindFork, KindMerge, KindSelect, KindBranch, KindDemux} {
		if !k.Emittable() {
			t.Fatalf("%v should be emittable", k)
		}
	}
	for _, k := range []Kind{KindEntry, KindExit, KindUnrecognized, KindUnspecified} {
		if k.Emittable() {
			t.Fatalf("%v should not be emittable", k)
		}
	}
}

func TestResolveOperation(t *testing.T) {
	for _, name := range []string{"load", "store", "mul", "add", "icmp", "sub"} {
		op, err := ResolveOperation(name)
		if err != nil {
			t.Fatalf("ResolveOperation(%q): %v", name, err)
		}
		if op.String() != name {
			t.Fatalf("ResolveOperation(%q) = %v", name, op)
		}
	}
	for _, bad := range []string{"", "div", "ADD", "store ", " add", " "} {
		if _, err := ResolveOperation(bad); !errors.Is(err, ErrMissingOperation) {
			t.Fatalf("ResolveOperation(%q) error = %v, want ErrMissingOperation", bad, err)
		}
	}
}

func TestPortRejectsDuplicateWire(t *testing.T) {
	p := NewPort(ModeInput, 32)
	if err := p.Add(&Wire{Name: "in1", Width: 32}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Add(&Wire{Name: "in1", Width: 8}); !errors.Is(err, ErrDuplicateWire) {
		t.Fatalf("expected ErrDuplicateWire, got %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 wire, got %d", p.Len())
	}
	var nilPort *Port
	if nilPort.Lookup("in1") != nil || nilPort.Len() != 0 {
		t.Fatalf("nil port should have no wires")
	}
}

func TestGraphEdgeOrderAndDetach(t *testing.T) {
	g := New("g")
	a, _ := g.AddNode("a", nil)
	b, _ := g.AddNode("b", nil)
	c, _ := g.AddNode("c", nil)

	e1 := g.AddEdge(b, c, "o", "i")
	e2 := g.AddEdge(a, b, "o", "i")
	e3 := g.AddEdge(a, c, "o2", "i2")

	got := g.Edges()
	want := []EdgeID{e2, e3, e1}
	if len(got) != len(want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Edges() = %v, want %v", got, want)
		}
	}

	g.Detach(e2)
	if out := g.OutEdges(a); len(out) != 1 || out[0] != e3 {
		t.Fatalf("OutEdges(a) after detach = %v", out)
	}
	if in := g.InEdges(b); len(in) != 0 {
		t.Fatalf("InEdges(b) after detach = %v", in)
	}
	if g.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges())
	}
}

func TestGraphHandlesSurviveAppend(t *testing.T) {
	g := New("g")
	a, _ := g.AddNode("a", nil)
	first := g.Node(a)
	for i := 0; i < 100; i++ {
		if _, err := g.AddNode(g.UniqueName("n"), nil); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	if g.Node(a) != first {
		t.Fatalf("node handle moved after appends")
	}
	if _, err := g.AddNode("a", nil); !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
	if g.UniqueName("n") != "n100" {
		t.Fatalf("UniqueName = %q", g.UniqueName("n"))
	}
}

func TestFromDescription(t *testing.T) {
	d := &Description{
		Name:  "g",
		Attrs: map[string]string{AttrChannelWidth: "8"},
		Nodes: []NodeDescription{
			{Name: "src", Attrs: map[string]string{AttrType: "Entry", AttrOut: "x"}},
			{Name: "dst", Attrs: map[string]string{AttrType: "Exit", AttrIn: "y"}},
		},
		Edges: []EdgeDescription{
			{Tail: "src", Head: "dst", Attrs: map[string]string{AttrFrom: "x", AttrTo: "y"}},
		},
	}
	g, err := FromDescription(d)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	if g.NumNodes() != 2 || g.NumEdges() != 1 {
		t.Fatalf("got %d nodes, %d edges", g.NumNodes(), g.NumEdges())
	}
	e := g.Edge(g.Edges()[0])
	if e.From != "x" || e.To != "y" {
		t.Fatalf("edge wires = %q -> %q", e.From, e.To)
	}
	if g.Attrs[AttrChannelWidth] != "8" {
		t.Fatalf("graph attrs not copied: %v", g.Attrs)
	}

	d.Edges = append(d.Edges, EdgeDescription{Tail: "src", Head: "nowhere"})
	if _, err := FromDescription(d); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}
