// Package linker binds every edge to the wires it connects and gives both
// wires a shared connection label.
package linker

import (
	"fmt"
	"log/slog"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
)

// Label returns the connection label of the edge from tail's wire tailWire
// to head's wire headWire. It depends on nothing else, so linking an
// unchanged graph twice gives identical labels.
func Label(tail, tailWire, head, headWire string) string {
	return tail + "_" + tailWire + "_to_" + head + "_" + headWire
}

// Link resolves every attached edge of g in iteration order.
func Link(g *dfg.Graph, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	for _, id := range g.Edges() {
		if err := LinkEdge(g, id); err != nil {
			return err
		}
		e := g.Edge(id)
		log.Debug("visited edge",
			slog.String("tail", g.Node(e.Tail).Name), slog.String("from", e.From),
			slog.String("head", g.Node(e.Head).Name), slog.String("to", e.To))
	}
	return nil
}

// LinkEdge resolves a single edge: the tail's output wire and the head's
// input wire are looked up by exact name and both receive the label.
func LinkEdge(g *dfg.Graph, id dfg.EdgeID) error {
	e := g.Edge(id)
	tail, head := g.Node(e.Tail), g.Node(e.Head)

	from := tail.Out.Lookup(e.From)
	to := head.In.Lookup(e.To)
	if from == nil || to == nil {
		return fmt.Errorf("%w: invalid edge connection from %s(%s) to %s(%s)",
			dfg.ErrUnresolvedConnection, tail.Name, e.From, head.Name, e.To)
	}

	label := Label(tail.Name, e.From, head.Name, e.To)
	from.Connection = label
	to.Connection = label
	return nil
}
