package portexpr

import (
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokWord
	tokColon
)

func (t tokenType) String() string {
	switch t {
	case tokWord:
		return "word"
	case tokColon:
		return "':'"
	default:
		return "end of input"
	}
}

type token struct {
	typ tokenType
	val string
	pos int
}

// lexer splits a port expression into words and colons. Whitespace only
// separates tokens; a colon always stands alone, so "in1:3", "in1 : 3" and
// "in1: 3" all lex to word, colon, word.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() token {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: l.pos}
	}
	start := l.pos
	if l.input[l.pos] == ':' {
		l.pos++
		return token{typ: tokColon, val: ":", pos: start}
	}
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == ':' || unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	return token{typ: tokWord, val: l.input[start:l.pos], pos: start}
}
