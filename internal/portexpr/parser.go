// Package portexpr parses the wire lists declared in a node's in and out
// attributes.
//
// The grammar is a whitespace-separated list of statements:
//
//	expression := statement (WS+ statement)*
//	statement  := identifier (WS* ':' WS* width)?
//	width      := [0-9]+
//
// Identifiers may end in the modifier characters '+', '-' and '?'. They are
// stripped and carry no meaning. A statement without a width gets the port's
// default width.
//
//	Parse("in1 in2:3 in3 : 10", dfg.ModeInput, 32) // in1/32, in2/3, in3/10
package portexpr

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
)

const modifiers = "+-?"

type parser struct {
	expr string
	lex  lexer
	tok  token
}

// Parse parses expr into a port of the given mode whose default width is
// defaultWidth. An empty or all-blank expression yields a port with no wires.
func Parse(expr string, mode dfg.PortMode, defaultWidth int) (*dfg.Port, error) {
	p := &parser{expr: expr, lex: lexer{input: expr}}
	p.advance()
	port := dfg.NewPort(mode, defaultWidth)
	for p.tok.typ != tokEOF {
		w, err := p.statement(defaultWidth)
		if err != nil {
			return nil, err
		}
		if err := port.Add(w); err != nil {
			return nil, fmt.Errorf("in %q: %w", expr, err)
		}
	}
	return port, nil
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

// statement consumes exactly one identifier and its optional width, so each
// call makes progress and parsing always terminates.
func (p *parser) statement(defaultWidth int) (*dfg.Wire, error) {
	if p.tok.typ != tokWord {
		return nil, p.errorf(dfg.ErrMalformedPortExpression, "expected wire name, got %s", p.tok.typ)
	}
	name := strings.TrimRight(p.tok.val, modifiers)
	if name == "" {
		return nil, p.errorf(dfg.ErrMalformedPortExpression, "wire name %q has no identifier", p.tok.val)
	}
	p.advance()

	w := &dfg.Wire{Name: name, Width: defaultWidth}
	if p.tok.typ != tokColon {
		return w, nil
	}
	p.advance()
	if p.tok.typ != tokWord {
		return nil, p.errorf(dfg.ErrMalformedPortWidth, "expected decimal width for %q, got %s", name, p.tok.typ)
	}
	width, ok := parseWidth(p.tok.val)
	if !ok {
		return nil, p.errorf(dfg.ErrMalformedPortWidth, "%q is not a number", p.tok.val)
	}
	w.Width = width
	p.advance()
	return w, nil
}

func (p *parser) errorf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: in %q at pos %d: %s", kind, p.expr, p.tok.pos+1, fmt.Sprintf(format, args...))
}

// parseWidth accepts a non-empty run of decimal digits with a positive value.
func parseWidth(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 1<<24 {
			return 0, false
		}
	}
	return n, n > 0
}
