package loader

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
)

// ErrEdgeOperator is returned when an edge uses "--" in a digraph or "->"
// in a graph.
var ErrEdgeOperator = errors.New("edge operator does not match graph type")

// ParseDOT reads a Graphviz DOT graph into a description. Only the first
// graph of the file is read.
//
// Subgraphs are flattened into the root graph. Node and edge defaults set
// with "node [...]" and "edge [...]" apply to the statements that follow
// them within the same braces. Node ports in edge statements ("a:p") are
// accepted and ignored; wire names travel in the from and to attributes.
func ParseDOT(src []byte) (*dfg.Description, error) {
	file, err := dot.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("dot: %w", err)
	}
	if len(file.Graphs) == 0 {
		return nil, errors.New("dot: no graph in input")
	}
	g := file.Graphs[0]

	w := &dotWalker{
		desc: &dfg.Description{
			Name:       unquoteID(g.ID),
			Undirected: !g.Directed,
			Attrs:      make(map[string]string),
		},
		index:    make(map[string]int),
		directed: g.Directed,
	}
	scope := dotScope{node: map[string]string{}, edge: map[string]string{}}
	if _, err := w.stmts(g.Stmts, scope); err != nil {
		return nil, err
	}
	return w.desc, nil
}

type dotScope struct {
	node map[string]string
	edge map[string]string
}

func (s dotScope) child() dotScope {
	return dotScope{node: copyAttrs(s.node), edge: copyAttrs(s.edge)}
}

type dotWalker struct {
	desc *dfg.Description
	// index maps node names to their position in desc.Nodes.
	index    map[string]int
	directed bool
	depth    int
}

// stmts walks statements in order and returns every node named in them,
// for edges that use a subgraph as an endpoint.
func (w *dotWalker) stmts(list []ast.Stmt, scope dotScope) ([]string, error) {
	var members []string
	for _, stmt := range list {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			name := unquoteID(s.Node.ID)
			w.declare(name, scope, attrMap(s.Attrs))
			members = append(members, name)
		case *ast.EdgeStmt:
			names, err := w.edge(s, scope)
			if err != nil {
				return nil, err
			}
			members = append(members, names...)
		case *ast.AttrStmt:
			attrs := attrMap(s.Attrs)
			switch s.Kind {
			case ast.GraphKind:
				w.graphAttrs(attrs)
			case ast.NodeKind:
				mergeAttrs(scope.node, attrs)
			case ast.EdgeKind:
				mergeAttrs(scope.edge, attrs)
			}
		case *ast.Attr:
			w.graphAttrs(map[string]string{unquoteID(s.Key): unquoteID(s.Val)})
		case *ast.Subgraph:
			names, err := w.subgraph(s, scope)
			if err != nil {
				return nil, err
			}
			members = append(members, names...)
		}
	}
	return members, nil
}

// graphAttrs records graph attributes. Attributes set inside subgraphs do
// not reach the root graph.
func (w *dotWalker) graphAttrs(attrs map[string]string) {
	if w.depth == 0 {
		mergeAttrs(w.desc.Attrs, attrs)
	}
}

func (w *dotWalker) subgraph(s *ast.Subgraph, scope dotScope) ([]string, error) {
	w.depth++
	defer func() { w.depth-- }()
	return w.stmts(s.Stmts, scope.child())
}

// vertex declares the nodes of one edge operand and returns their names.
func (w *dotWalker) vertex(v ast.Vertex, scope dotScope) ([]string, error) {
	switch v := v.(type) {
	case *ast.Node:
		name := unquoteID(v.ID)
		w.declare(name, scope, nil)
		return []string{name}, nil
	case *ast.Subgraph:
		return w.subgraph(v, scope)
	}
	return nil, fmt.Errorf("dot: unexpected edge operand %v", v)
}

// edge declares the nodes of an edge chain as they appear and adds one
// edge per tail and head of each consecutive pair of operands.
func (w *dotWalker) edge(s *ast.EdgeStmt, scope dotScope) ([]string, error) {
	first, err := w.vertex(s.From, scope)
	if err != nil {
		return nil, err
	}
	chain := [][]string{first}
	for e := s.To; e != nil; e = e.To {
		if e.Directed != w.directed {
			return nil, fmt.Errorf("dot: %w: %s", ErrEdgeOperator, s)
		}
		operand, err := w.vertex(e.Vertex, scope)
		if err != nil {
			return nil, err
		}
		chain = append(chain, operand)
	}

	attrs := attrMap(s.Attrs)
	var members []string
	for _, names := range chain {
		members = append(members, names...)
	}
	for i := 0; i+1 < len(chain); i++ {
		for _, tail := range chain[i] {
			for _, head := range chain[i+1] {
				ea := copyAttrs(scope.edge)
				mergeAttrs(ea, attrs)
				w.desc.Edges = append(w.desc.Edges, dfg.EdgeDescription{Tail: tail, Head: head, Attrs: ea})
			}
		}
	}
	return members, nil
}

// declare creates the node on first mention with the current node defaults
// and merges attrs into it.
func (w *dotWalker) declare(name string, scope dotScope, attrs map[string]string) {
	i, ok := w.index[name]
	if !ok {
		i = len(w.desc.Nodes)
		w.index[name] = i
		w.desc.Nodes = append(w.desc.Nodes, dfg.NodeDescription{Name: name, Attrs: copyAttrs(scope.node)})
	}
	mergeAttrs(w.desc.Nodes[i].Attrs, attrs)
}

func attrMap(attrs []*ast.Attr) map[string]string {
	res := make(map[string]string, len(attrs))
	for _, a := range attrs {
		res[unquoteID(a.Key)] = unquoteID(a.Val)
	}
	return res
}

// unquoteID returns the value of a DOT ID as written: quoted strings lose
// their quotes and escapes, HTML strings their outer angle brackets.
func unquoteID(id string) string {
	switch {
	case len(id) >= 2 && id[0] == '"' && id[len(id)-1] == '"':
		// Only \" and line continuations are escapes; \l, \n and the like
		// are kept for the consumer of the label.
		s := id[1 : len(id)-1]
		s = strings.ReplaceAll(s, "\\\r\n", "")
		s = strings.ReplaceAll(s, "\\\n", "")
		return strings.ReplaceAll(s, `\"`, `"`)
	case len(id) >= 2 && id[0] == '<' && id[len(id)-1] == '>':
		return id[1 : len(id)-1]
	}
	return id
}

func copyAttrs(m map[string]string) map[string]string {
	res := make(map[string]string, len(m))
	for k, v := range m {
		res[k] = v
	}
	return res
}

func mergeAttrs(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
