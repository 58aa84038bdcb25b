// Package extractor runs the attribute pass: it turns the raw string
// attributes of every node into a kind, an operation and parsed ports, and
// completes store operations with an explicit sink.
package extractor

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
	"github.com/robert-at-pretension-io/dfg2blif/internal/portexpr"
)

// Names of the wires synthesized by store completion.
const (
	StoreOutWire = "out1"
	SinkInWire   = "in1"
)

// DefaultSinkSuffix is appended to a store node's name to name its sink.
const DefaultSinkSuffix = "_sink"

// Options configures an Extractor.
type Options struct {
	// DefaultChannelWidth applies when the graph has no channel_width.
	DefaultChannelWidth int
	// SinkSuffix names the Exit node synthesized for a store.
	SinkSuffix string
}

// Extractor resolves node attributes on a graph.
type Extractor struct {
	opts Options
	log  *slog.Logger
}

// Stats summarizes one attribute pass.
type Stats struct {
	Nodes        int
	Valid        int
	Unspecified  int
	SinksCreated int
}

// New creates an Extractor. Zero option fields take their defaults and a
// nil logger means slog.Default().
func New(opts Options, log *slog.Logger) *Extractor {
	if opts.DefaultChannelWidth <= 0 {
		opts.DefaultChannelWidth = dfg.DefaultChannelWidth
	}
	if opts.SinkSuffix == "" {
		opts.SinkSuffix = DefaultSinkSuffix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{opts: opts, log: log}
}

// Extract runs the attribute pass over every node of g. Nodes synthesized
// during the pass are already complete and are not revisited.
func (e *Extractor) Extract(g *dfg.Graph) (Stats, error) {
	var stats Stats
	width, err := e.channelWidth(g)
	if err != nil {
		return stats, err
	}
	g.ChannelWidth = width

	loaded := g.Nodes()
	for _, n := range loaded {
		if err := e.extractNode(n, width); err != nil {
			return stats, fmt.Errorf("node %q: %w", n.Name, err)
		}
		stats.Nodes++
		switch {
		case n.Valid:
			stats.Valid++
		case n.Kind == dfg.KindUnspecified:
			stats.Unspecified++
		}
		if n.Operation == dfg.OpStore {
			created, err := e.completeStore(g, n, width)
			if err != nil {
				return stats, fmt.Errorf("node %q: %w", n.Name, err)
			}
			if created {
				stats.SinksCreated++
			}
		}
	}
	return stats, nil
}

func (e *Extractor) channelWidth(g *dfg.Graph) (int, error) {
	raw, ok := g.Attrs[dfg.AttrChannelWidth]
	if !ok || strings.TrimSpace(raw) == "" {
		e.log.Warn("channel_width not specified, using default",
			slog.Int("channel_width", e.opts.DefaultChannelWidth))
		return e.opts.DefaultChannelWidth, nil
	}
	w, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || w <= 0 {
		return 0, fmt.Errorf("%w %q", dfg.ErrInvalidChannelWidth, raw)
	}
	return w, nil
}

func (e *Extractor) extractNode(n *dfg.Node, width int) error {
	raw, _ := n.Attr(dfg.AttrType)
	kind, err := dfg.ResolveKind(raw)
	if err != nil {
		return err
	}
	n.Kind = kind
	n.Valid = kind.Emittable()
	if kind == dfg.KindUnspecified {
		e.log.Info("node has no type, skipping", slog.String("node", n.Name))
		return nil
	}
	n.KindString = kind.String()

	// Entry nodes have no inputs and Exit nodes no outputs, whatever the
	// description declares.
	if n.Valid || kind == dfg.KindExit {
		if expr, ok := n.Attr(dfg.AttrIn); ok {
			e.log.Debug("found input expression", slog.String("node", n.Name), slog.String("expr", expr))
			if n.In, err = portexpr.Parse(expr, dfg.ModeInput, width); err != nil {
				return err
			}
		}
	}
	if n.Valid || kind == dfg.KindEntry {
		if expr, ok := n.Attr(dfg.AttrOut); ok {
			e.log.Debug("found output expression", slog.String("node", n.Name), slog.String("expr", expr))
			if n.Out, err = portexpr.Parse(expr, dfg.ModeOutput, width); err != nil {
				return err
			}
		}
	}

	if kind == dfg.KindOperator {
		op, _ := n.Attr(dfg.AttrOp)
		if n.Operation, err = dfg.ResolveOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// completeStore gives a store without outputs an out1 wire and wires it to a
// new Exit node. It reports whether a sink was created.
func (e *Extractor) completeStore(g *dfg.Graph, n *dfg.Node, width int) (bool, error) {
	if n.Out.Len() > 0 {
		return false, nil
	}
	n.Out = dfg.NewPort(dfg.ModeOutput, width)
	if err := n.Out.Add(&dfg.Wire{Name: StoreOutWire, Width: width}); err != nil {
		return false, err
	}

	sinkName := g.UniqueName(n.Name + e.opts.SinkSuffix)
	sinkID, err := g.AddNode(sinkName, map[string]string{
		dfg.AttrType: dfg.KindExit.String(),
		dfg.AttrIn:   SinkInWire,
	})
	if err != nil {
		return false, err
	}
	sink := g.Node(sinkID)
	sink.Kind = dfg.KindExit
	sink.KindString = dfg.KindExit.String()
	sink.Synthesized = true
	sink.In = dfg.NewPort(dfg.ModeInput, width)
	if err := sink.In.Add(&dfg.Wire{Name: SinkInWire, Width: width}); err != nil {
		return false, err
	}
	g.AddEdge(n.ID, sinkID, StoreOutWire, SinkInWire)

	e.log.Debug("completed store with sink", slog.String("node", n.Name), slog.String("sink", sinkName))
	return true, nil
}
