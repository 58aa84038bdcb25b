// Package dfg holds the in-memory dataflow graph that every translation pass
// reads and mutates.
//
// Nodes and edges live in arenas addressed by NodeID and EdgeID. Handles stay
// valid for the lifetime of the graph: passes that synthesize structure only
// append, and edges are detached rather than removed.
//
// Iteration order is insertion order for nodes, and insertion order of each
// node's out-edges for edges. All passes rely on that single order.
package dfg

import (
	"fmt"
	"strconv"
)

// Attribute names read from the graph description.
const (
	AttrChannelWidth = "channel_width"
	AttrType         = "type"
	AttrOp           = "op"
	AttrIn           = "in"
	AttrOut          = "out"
	AttrFrom         = "from"
	AttrTo           = "to"
)

// DefaultChannelWidth is used when the graph does not set channel_width.
const DefaultChannelWidth = 32

// NodeID is a stable handle to a node in a Graph.
type NodeID int

// EdgeID is a stable handle to an edge in a Graph.
type EdgeID int

// PortMode is the direction of a port.
type PortMode int

const (
	ModeInput PortMode = iota
	ModeOutput
)

func (m PortMode) String() string {
	if m == ModeOutput {
		return "out"
	}
	return "in"
}

// Wire is one named, width-tagged signal of a port.
type Wire struct {
	Name  string
	Width int
	// Connection is empty until an edge touching this wire is linked.
	Connection string
}

// Port is the ordered set of wires a node exposes on one side.
type Port struct {
	Mode         PortMode
	DefaultWidth int
	Wires        []*Wire
}

// NewPort returns an empty port.
func NewPort(mode PortMode, defaultWidth int) *Port {
	return &Port{Mode: mode, DefaultWidth: defaultWidth}
}

// Add appends w to the port. Wire names are unique within a port.
func (p *Port) Add(w *Wire) error {
	if p.Lookup(w.Name) != nil {
		return fmt.Errorf("%w %q", ErrDuplicateWire, w.Name)
	}
	p.Wires = append(p.Wires, w)
	return nil
}

// Lookup returns the wire with the given name, or nil. A nil port has no
// wires.
func (p *Port) Lookup(name string) *Wire {
	if p == nil {
		return nil
	}
	for _, w := range p.Wires {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// Len returns the number of wires in p.
func (p *Port) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Wires)
}

// Node is a circuit element.
type Node struct {
	ID   NodeID
	Name string
	// Attrs are the raw attributes from the graph description.
	Attrs map[string]string

	Kind       Kind
	KindString string
	// Valid nodes are emitted as .subckt blocks and considered by the
	// fanout transform.
	Valid     bool
	Operation Operation

	// In and Out are nil when the node declares no such port.
	In  *Port
	Out *Port

	// Synthesized is set on nodes created by a pass rather than loaded.
	Synthesized bool
}

// Attr returns the raw attribute value and whether it was declared.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// Edge connects an output wire of Tail to an input wire of Head.
type Edge struct {
	ID   EdgeID
	Tail NodeID
	Head NodeID
	// From names the tail's output wire, To the head's input wire.
	From string
	To   string
	// Detached edges were superseded by a transform and are skipped by all
	// iteration helpers.
	Detached bool
}

// Graph is a directed multigraph of nodes and edges.
type Graph struct {
	Name  string
	Attrs map[string]string
	// ChannelWidth is the resolved default wire width. Zero until the
	// attribute pass has run.
	ChannelWidth int

	nodes  []*Node
	edges  []*Edge
	byName map[string]NodeID
	out    [][]EdgeID
	in     [][]EdgeID
}

// New returns an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:   name,
		Attrs:  make(map[string]string),
		byName: make(map[string]NodeID),
	}
}

// AddNode appends a node. Names are unique within a graph.
func (g *Graph) AddNode(name string, attrs map[string]string) (NodeID, error) {
	if _, ok := g.byName[name]; ok {
		return 0, fmt.Errorf("%w %q", ErrDuplicateNode, name)
	}
	if attrs == nil {
		attrs = make(map[string]string)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		ID:    id,
		Name:  name,
		Attrs: attrs,
		Kind:  KindUnspecified,
	})
	g.byName[name] = id
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id, nil
}

// UniqueName returns base if no node uses it yet, otherwise base with the
// smallest numeric suffix that is free.
func (g *Graph) UniqueName(base string) string {
	if _, ok := g.byName[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		name := base + strconv.Itoa(i)
		if _, ok := g.byName[name]; !ok {
			return name
		}
	}
}

// Node returns the node with the given handle.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Lookup returns the handle of the named node.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Nodes returns all nodes in iteration order. The slice must not be
// modified; nodes added afterwards are not part of it.
func (g *Graph) Nodes() []*Node {
	return g.nodes[:len(g.nodes):len(g.nodes)]
}

// NumNodes returns the number of nodes, synthesized ones included.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// AddEdge appends an edge from tail's wire from to head's wire to.
func (g *Graph) AddEdge(tail, head NodeID, from, to string) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, &Edge{ID: id, Tail: tail, Head: head, From: from, To: to})
	g.out[tail] = append(g.out[tail], id)
	g.in[head] = append(g.in[head], id)
	return id
}

// Edge returns the edge with the given handle.
func (g *Graph) Edge(id EdgeID) *Edge {
	return g.edges[id]
}

// Detach marks an edge as superseded.
func (g *Graph) Detach(id EdgeID) {
	g.edges[id].Detached = true
}

// OutEdges returns the attached out-edges of n in insertion order.
func (g *Graph) OutEdges(n NodeID) []EdgeID {
	return g.attached(g.out[n])
}

// InEdges returns the attached in-edges of n in insertion order.
func (g *Graph) InEdges(n NodeID) []EdgeID {
	return g.attached(g.in[n])
}

func (g *Graph) attached(ids []EdgeID) []EdgeID {
	var res []EdgeID
	for _, id := range ids {
		if !g.edges[id].Detached {
			res = append(res, id)
		}
	}
	return res
}

// Edges returns every attached edge, grouped by tail node in node order and
// in insertion order within a node.
func (g *Graph) Edges() []EdgeID {
	var res []EdgeID
	for i := range g.nodes {
		res = append(res, g.OutEdges(NodeID(i))...)
	}
	return res
}

// NumEdges returns the number of attached edges.
func (g *Graph) NumEdges() int {
	n := 0
	for _, e := range g.edges {
		if !e.Detached {
			n++
		}
	}
	return n
}
