package facts

import "strings"

// FilterTablesByNodes returns a new Tables object containing only rows that
// mention a node in the provided set. A connection row is kept when either
// endpoint is in the set, and a boundary row when its connection is kept.
func FilterTablesByNodes(tables Tables, nodes map[string]bool) Tables {
	out := emptyTables()
	if len(nodes) == 0 {
		return out
	}

	for _, row := range tables.Nodes {
		if nodes[row.Name] {
			out.Nodes = append(out.Nodes, row)
		}
	}
	for _, row := range tables.Wires {
		if nodes[row.Node] {
			out.Wires = append(out.Wires, row)
		}
	}
	labels := make(map[string]bool)
	for _, row := range tables.Connections {
		if nodes[row.Tail] || nodes[row.Head] {
			out.Connections = append(out.Connections, row)
			labels[row.Label] = true
		}
	}
	for _, row := range tables.Boundary {
		if labels[row.Label] {
			out.Boundary = append(out.Boundary, row)
		}
	}
	return out
}

// FilterDeltaByNodes applies FilterTablesByNodes to both sides of a delta.
func FilterDeltaByNodes(delta Delta, nodes map[string]bool) Delta {
	return Delta{
		Added:   FilterTablesByNodes(delta.Added, nodes),
		Removed: FilterTablesByNodes(delta.Removed, nodes),
	}
}

// ParseNodeSet turns a comma-separated list into a node set. Blank items
// are dropped.
func ParseNodeSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = true
		}
	}
	return set
}
