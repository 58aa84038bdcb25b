// Package fanout rewrites forks whose outputs exceed what the netlist's
// distribution primitive supports into trees of binary forks.
//
// A fork F with N successors and a single predecessor P is replaced by a
// tree of synthesized forks (in1 -> out1, out2) rooted at a node fed from
// P. Each internal node splits its remaining fanout n into floor(n/2) for
// out1 and n-floor(n/2) for out2. A slot with fanout 1 is a leaf and takes
// the next successor popped from the end of F's out-edge list, so leaves
// see the successors in reverse order. A slot with fanout 0 stays
// unconnected.
//
// Edges that the tree supersedes are detached and F is marked invalid. F
// itself stays in the graph.
package fanout

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
	"github.com/robert-at-pretension-io/dfg2blif/internal/linker"
)

// MaxFanout is the number of outputs a fork may drive directly.
const MaxFanout = 2

// Ports of every synthesized fork.
const (
	InWire   = "in1"
	OutWire1 = "out1"
	OutWire2 = "out2"
)

// Stats summarizes one transform.
type Stats struct {
	ForksReduced int
	ForksCreated int
	Leaves       int
}

// Reduce rewrites every valid fork with more than MaxFanout output wires.
// Edges must already be linked; new edges are linked as they are created.
func Reduce(g *dfg.Graph, log *slog.Logger) (Stats, error) {
	if log == nil {
		log = slog.Default()
	}
	var stats Stats
	for _, n := range g.Nodes() {
		if n.Kind != dfg.KindFork || !n.Valid || n.Out.Len() <= MaxFanout {
			continue
		}
		r := &reducer{g: g, fork: n}
		if err := r.reduce(); err != nil {
			return stats, fmt.Errorf("fork %q: %w", n.Name, err)
		}
		stats.ForksReduced++
		stats.ForksCreated += r.created
		stats.Leaves += r.leaves
		log.Debug("reduced fork",
			slog.String("node", n.Name),
			slog.Int("fanout", r.leaves),
			slog.Int("forks", r.created))
	}
	return stats, nil
}

type reducer struct {
	g     *dfg.Graph
	fork  *dfg.Node
	width int
	// succ is consumed from the end.
	succ    []dfg.EdgeID
	created int
	leaves  int
}

func (r *reducer) reduce() error {
	preds := r.g.InEdges(r.fork.ID)
	if len(preds) != 1 {
		return fmt.Errorf("%w: %d predecessors, want 1", dfg.ErrMalformedFork, len(preds))
	}
	pred := r.g.Edge(preds[0])

	r.width = r.g.ChannelWidth
	if w := r.fork.In.Lookup(pred.To); w != nil {
		r.width = w.Width
	}
	r.succ = r.g.OutEdges(r.fork.ID)
	fanout := len(r.succ)

	root, err := r.newFork()
	if err != nil {
		return err
	}
	if err := r.connect(pred.Tail, pred.From, root, InWire); err != nil {
		return err
	}
	r.g.Detach(pred.ID)

	if err := r.split(root, fanout); err != nil {
		return err
	}
	if len(r.succ) != 0 {
		return fmt.Errorf("%w: %d successors left unattached", dfg.ErrMalformedFork, len(r.succ))
	}
	r.fork.Valid = false
	return nil
}

func (r *reducer) split(parent dfg.NodeID, n int) error {
	half := n / 2
	if err := r.subtree(parent, OutWire1, half); err != nil {
		return err
	}
	return r.subtree(parent, OutWire2, n-half)
}

func (r *reducer) subtree(parent dfg.NodeID, slot string, n int) error {
	switch {
	case n == 0:
		return nil
	case n == 1:
		return r.leaf(parent, slot)
	}
	child, err := r.newFork()
	if err != nil {
		return err
	}
	if err := r.connect(parent, slot, child, InWire); err != nil {
		return err
	}
	return r.split(child, n)
}

func (r *reducer) leaf(parent dfg.NodeID, slot string) error {
	last := len(r.succ) - 1
	if last < 0 {
		return fmt.Errorf("%w: successor list exhausted", dfg.ErrMalformedFork)
	}
	e := r.g.Edge(r.succ[last])
	r.succ = r.succ[:last]

	if err := r.connect(parent, slot, e.Head, e.To); err != nil {
		return err
	}
	r.g.Detach(e.ID)
	r.leaves++
	return nil
}

func (r *reducer) connect(tail dfg.NodeID, from string, head dfg.NodeID, to string) error {
	id := r.g.AddEdge(tail, head, from, to)
	return linker.LinkEdge(r.g, id)
}

func (r *reducer) newFork() (dfg.NodeID, error) {
	name := r.g.UniqueName(r.fork.Name + "_fork" + strconv.Itoa(r.created))
	id, err := r.g.AddNode(name, map[string]string{
		dfg.AttrType: dfg.KindFork.String(),
		dfg.AttrIn:   InWire,
		dfg.AttrOut:  OutWire1 + " " + OutWire2,
	})
	if err != nil {
		return 0, err
	}
	n := r.g.Node(id)
	n.Kind = dfg.KindFork
	n.KindString = dfg.KindFork.String()
	n.Valid = true
	n.Synthesized = true
	n.In = dfg.NewPort(dfg.ModeInput, r.width)
	n.Out = dfg.NewPort(dfg.ModeOutput, r.width)
	for _, w := range []struct {
		port *dfg.Port
		name string
	}{{n.In, InWire}, {n.Out, OutWire1}, {n.Out, OutWire2}} {
		if err := w.port.Add(&dfg.Wire{Name: w.name, Width: r.width}); err != nil {
			return 0, err
		}
	}
	r.created++
	return id, nil
}
