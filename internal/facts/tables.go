package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/dfg2blif/internal/blif"
	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
)

// Tables is the relational view of a compiled netlist.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Nodes       []NodeRow       `json:"nodes"`
	Wires       []WireRow       `json:"wires"`
	Connections []ConnectionRow `json:"connections"`
	Boundary    []BoundaryRow   `json:"boundary"`
}

type NodeRow struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Operation   string `json:"operation"`
	Valid       bool   `json:"valid"`
	Synthesized bool   `json:"synthesized"`
}

type WireRow struct {
	Node       string `json:"node"`
	Direction  string `json:"direction"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Width      int    `json:"width"`
	Connection string `json:"connection"`
}

// ConnectionRow is one attached edge after linking.
type ConnectionRow struct {
	Label    string `json:"label"`
	Tail     string `json:"tail"`
	TailWire string `json:"tail_wire"`
	Head     string `json:"head"`
	HeadWire string `json:"head_wire"`
}

// BoundaryRow is a connection listed in the netlist's .inputs or .outputs.
type BoundaryRow struct {
	Label     string `json:"label"`
	Direction string `json:"direction"`
}

// BuildTables flattens g into fact tables. Rows are sorted so that equal
// graphs give equal tables.
func BuildTables(g *dfg.Graph) Tables {
	tables := emptyTables()

	for _, n := range g.Nodes() {
		row := NodeRow{
			Name:        n.Name,
			Kind:        n.Kind.String(),
			Valid:       n.Valid,
			Synthesized: n.Synthesized,
		}
		if n.Kind == dfg.KindOperator {
			row.Operation = n.Operation.String()
		}
		tables.Nodes = append(tables.Nodes, row)

		for _, p := range []*dfg.Port{n.In, n.Out} {
			if p == nil {
				continue
			}
			for i, w := range p.Wires {
				tables.Wires = append(tables.Wires, WireRow{
					Node:       n.Name,
					Direction:  p.Mode.String(),
					Name:       w.Name,
					Position:   i,
					Width:      w.Width,
					Connection: w.Connection,
				})
			}
		}
	}

	for _, id := range g.Edges() {
		e := g.Edge(id)
		tail, head := g.Node(e.Tail), g.Node(e.Head)
		var label string
		if w := tail.Out.Lookup(e.From); w != nil {
			label = w.Connection
		}
		tables.Connections = append(tables.Connections, ConnectionRow{
			Label:    label,
			Tail:     tail.Name,
			TailWire: e.From,
			Head:     head.Name,
			HeadWire: e.To,
		})
	}

	for _, label := range blif.Inputs(g) {
		tables.Boundary = append(tables.Boundary, BoundaryRow{Label: label, Direction: "in"})
	}
	for _, label := range blif.Outputs(g) {
		tables.Boundary = append(tables.Boundary, BoundaryRow{Label: label, Direction: "out"})
	}

	sortTables(&tables)
	return tables
}

func sortTables(tables *Tables) {
	sort.Slice(tables.Nodes, func(i, j int) bool { return tables.Nodes[i].Name < tables.Nodes[j].Name })
	sort.Slice(tables.Wires, func(i, j int) bool {
		a, b := tables.Wires[i], tables.Wires[j]
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		return a.Position < b.Position
	})
	sort.Slice(tables.Connections, func(i, j int) bool { return tables.Connections[i].Label < tables.Connections[j].Label })
	sort.SliceStable(tables.Boundary, func(i, j int) bool {
		return tables.Boundary[i].Direction < tables.Boundary[j].Direction
	})
}

func emptyTables() Tables {
	return Tables{
		Nodes:       []NodeRow{},
		Wires:       []WireRow{},
		Connections: []ConnectionRow{},
		Boundary:    []BoundaryRow{},
	}
}
