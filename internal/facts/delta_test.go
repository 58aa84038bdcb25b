package facts

import "testing"

func TestComputeDeltaAddsAndRemoves(t *testing.T) {
	prev := Tables{
		Nodes: []NodeRow{
			{Name: "a", Kind: "Buffer", Valid: true},
		},
		Connections: []ConnectionRow{
			{Label: "a_o_to_c_i", Tail: "a", TailWire: "o", Head: "c", HeadWire: "i"},
		},
	}
	next := Tables{
		Nodes: []NodeRow{
			{Name: "b", Kind: "Buffer", Valid: true},
		},
		Connections: []ConnectionRow{
			{Label: "b_o_to_c_i", Tail: "b", TailWire: "o", Head: "c", HeadWire: "i"},
		},
	}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Nodes) != 1 || delta.Added.Nodes[0].Name != "b" {
		t.Fatalf("expected node b added, got %+v", delta.Added.Nodes)
	}
	if len(delta.Removed.Nodes) != 1 || delta.Removed.Nodes[0].Name != "a" {
		t.Fatalf("expected node a removed, got %+v", delta.Removed.Nodes)
	}
	if len(delta.Added.Connections) != 1 || delta.Added.Connections[0].Tail != "b" {
		t.Fatalf("expected connection added, got %+v", delta.Added.Connections)
	}
	if len(delta.Removed.Connections) != 1 || delta.Removed.Connections[0].Tail != "a" {
		t.Fatalf("expected connection removed, got %+v", delta.Removed.Connections)
	}
	if delta.Empty() {
		t.Fatalf("delta with rows reported empty")
	}
}

func TestComputeDeltaSeesAttributeChanges(t *testing.T) {
	prev := Tables{Wires: []WireRow{{Node: "b", Direction: "in", Name: "y", Width: 4}}}
	next := Tables{Wires: []WireRow{{Node: "b", Direction: "in", Name: "y", Width: 8}}}

	delta := ComputeDelta(prev, next)
	if len(delta.Added.Wires) != 1 || delta.Added.Wires[0].Width != 8 {
		t.Fatalf("expected widened wire added, got %+v", delta.Added.Wires)
	}
	if len(delta.Removed.Wires) != 1 || delta.Removed.Wires[0].Width != 4 {
		t.Fatalf("expected old wire removed, got %+v", delta.Removed.Wires)
	}
}

func TestComputeDeltaOfIdenticalSnapshots(t *testing.T) {
	tables := BuildTables(compiled(t, chain()))
	if delta := ComputeDelta(tables, tables); !delta.Empty() {
		t.Fatalf("expected empty delta, got %+v", delta)
	}
}
