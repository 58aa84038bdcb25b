package validator

import (
	"testing"

	"github.com/robert-at-pretension-io/dfg2blif/internal/facts"
)

func TestFactsValidatorAcceptsValidTables(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	tables := facts.Tables{
		Nodes: []facts.NodeRow{
			{Name: "add", Kind: "Operator", Operation: "add", Valid: true},
			{Name: "st_sink", Kind: "Exit", Synthesized: true},
		},
		Wires: []facts.WireRow{{
			Node:       "add",
			Direction:  "in",
			Name:       "a",
			Position:   0,
			Width:      32,
			Connection: "k_v_to_add_a",
		}},
		Connections: []facts.ConnectionRow{{
			Label:    "k_v_to_add_a",
			Tail:     "k",
			TailWire: "v",
			Head:     "add",
			HeadWire: "a",
		}},
		Boundary: []facts.BoundaryRow{{Label: "k_v_to_add_a", Direction: "in"}},
	}

	if err := v.Validate(tables); err != nil {
		t.Fatalf("expected valid tables, got %v", err)
	}
}

func TestFactsValidatorRejectsInvalidRows(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	tests := []struct {
		name   string
		tables facts.Tables
	}{
		{"unknown kind", facts.Tables{Nodes: []facts.NodeRow{{Name: "x", Kind: "Frobnicator"}}}},
		{"unknown operation", facts.Tables{Nodes: []facts.NodeRow{{Name: "x", Kind: "Operator", Operation: "div"}}}},
		{"zero width", facts.Tables{Wires: []facts.WireRow{{Node: "x", Direction: "in", Name: "a", Width: 0}}}},
		{"bad direction", facts.Tables{Boundary: []facts.BoundaryRow{{Label: "l", Direction: "both"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Validate(tt.tables); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
