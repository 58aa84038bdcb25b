package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// Empty reports whether the delta has no rows.
func (d Delta) Empty() bool {
	return d.Added.rowCount()+d.Removed.rowCount() == 0
}

func (t Tables) rowCount() int {
	return len(t.Nodes) + len(t.Wires) + len(t.Connections) + len(t.Boundary)
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Nodes = diffRows(from.Nodes, to.Nodes, func(r NodeRow) string {
		return r.Name + "|" + r.Kind + "|" + r.Operation + "|" + boolKey(r.Valid) + "|" + boolKey(r.Synthesized)
	})
	out.Wires = diffRows(from.Wires, to.Wires, func(r WireRow) string {
		return r.Node + "|" + r.Direction + "|" + r.Name + "|" + strconv.Itoa(r.Position) + "|" +
			strconv.Itoa(r.Width) + "|" + r.Connection
	})
	out.Connections = diffRows(from.Connections, to.Connections, func(r ConnectionRow) string {
		return r.Label + "|" + r.Tail + "|" + r.TailWire + "|" + r.Head + "|" + r.HeadWire
	})
	out.Boundary = diffRows(from.Boundary, to.Boundary, func(r BoundaryRow) string {
		return r.Label + "|" + r.Direction
	})

	return out
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
