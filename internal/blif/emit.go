// Package blif serializes a translated graph as a BLIF-style netlist.
//
// Layout:
//
//	#### <header>
//	.model <name>
//	.inputs\
//	    <connection> ...
//	.outputs\
//	    <connection> ...
//	#Node <name>
//	.subckt <kind>\
//	    <wire>=<connection> ...
//	.end
//
// Nodes are written in graph iteration order. Nodes that are not valid get a
// "#Skipped" line instead of a .subckt block, and wires without a connection
// are left out of the assignment list.
package blif

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
)

// Defaults used when Options fields are empty.
const (
	DefaultModelName = "my_circuit"
	DefaultHeader    = "BLIF netlist of DFG circuit"
)

const indent = "    "

// Options controls the document preamble.
type Options struct {
	ModelName string
	Header    string
	// Timestamp, when non-zero, adds a "#### File Created:" line.
	Timestamp time.Time
}

// Emit writes g to w. Emit never modifies g.
func Emit(w io.Writer, g *dfg.Graph, opts Options) error {
	if opts.ModelName == "" {
		opts.ModelName = DefaultModelName
	}
	if opts.Header == "" {
		opts.Header = DefaultHeader
	}

	bw := bufio.NewWriter(w)
	if !opts.Timestamp.IsZero() {
		bw.WriteString("#### File Created: " + opts.Timestamp.Format(time.ANSIC) + "\n")
	}
	bw.WriteString("#### " + opts.Header + "\n")
	bw.WriteString(".model " + opts.ModelName + "\n")

	writeList(bw, ".inputs", Inputs(g))
	writeList(bw, ".outputs", Outputs(g))

	for _, n := range g.Nodes() {
		bw.WriteString("#Node " + n.Name + "\n")
		if !n.Valid {
			bw.WriteString("#Skipped\n")
			continue
		}
		if n.Kind == dfg.KindOperator {
			bw.WriteString("#Op " + n.Operation.String() + "\n")
		}
		writeList(bw, ".subckt "+n.KindString, Assignments(n))
	}
	bw.WriteString(".end\n")
	return bw.Flush()
}

// Inputs returns the connections driven by Entry nodes, in node order.
func Inputs(g *dfg.Graph) []string {
	return boundary(g, dfg.KindEntry, func(n *dfg.Node) *dfg.Port { return n.Out })
}

// Outputs returns the connections consumed by Exit nodes, in node order.
func Outputs(g *dfg.Graph) []string {
	return boundary(g, dfg.KindExit, func(n *dfg.Node) *dfg.Port { return n.In })
}

func boundary(g *dfg.Graph, kind dfg.Kind, port func(*dfg.Node) *dfg.Port) []string {
	var res []string
	for _, n := range g.Nodes() {
		if n.Kind != kind {
			continue
		}
		p := port(n)
		if p == nil {
			continue
		}
		for _, w := range p.Wires {
			if w.Connection != "" {
				res = append(res, w.Connection)
			}
		}
	}
	return res
}

// Assignments returns the name=connection pairs of n, inputs first.
func Assignments(n *dfg.Node) []string {
	var res []string
	for _, p := range []*dfg.Port{n.In, n.Out} {
		if p == nil {
			continue
		}
		for _, w := range p.Wires {
			if w.Connection == "" {
				continue
			}
			res = append(res, w.Name+"="+w.Connection)
		}
	}
	return res
}

// writeList writes head and, if items is non-empty, a continued line
// holding the items.
func writeList(bw *bufio.Writer, head string, items []string) {
	if len(items) == 0 {
		bw.WriteString(head + "\n")
		return
	}
	bw.WriteString(head + "\\\n")
	bw.WriteString(indent + strings.Join(items, " ") + "\n")
}
