package dfg

import "fmt"

// Description is a graph as handed over by a loader: names and raw string
// attributes only, nothing resolved yet.
type Description struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Undirected is set for DOT "graph" inputs. Edges are still read tail
	// to head in declaration order.
	Undirected bool              `json:"undirected,omitempty" yaml:"undirected,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Nodes      []NodeDescription `json:"nodes" yaml:"nodes"`
	Edges      []EdgeDescription `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// NodeDescription is one declared node.
type NodeDescription struct {
	Name  string            `json:"name" yaml:"name"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// EdgeDescription is one declared edge. The tail and head wire names are
// carried in the from and to attributes.
type EdgeDescription struct {
	Tail  string            `json:"tail" yaml:"tail"`
	Head  string            `json:"head" yaml:"head"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// FromDescription builds a graph from d, keeping node and edge order.
func FromDescription(d *Description) (*Graph, error) {
	g := New(d.Name)
	for k, v := range d.Attrs {
		g.Attrs[k] = v
	}
	for _, nd := range d.Nodes {
		attrs := make(map[string]string, len(nd.Attrs))
		for k, v := range nd.Attrs {
			attrs[k] = v
		}
		if _, err := g.AddNode(nd.Name, attrs); err != nil {
			return nil, err
		}
	}
	for i, ed := range d.Edges {
		tail, ok := g.Lookup(ed.Tail)
		if !ok {
			return nil, fmt.Errorf("edge %d: %w %q", i, ErrUnknownNode, ed.Tail)
		}
		head, ok := g.Lookup(ed.Head)
		if !ok {
			return nil, fmt.Errorf("edge %d: %w %q", i, ErrUnknownNode, ed.Head)
		}
		g.AddEdge(tail, head, ed.Attrs[AttrFrom], ed.Attrs[AttrTo])
	}
	return g, nil
}
