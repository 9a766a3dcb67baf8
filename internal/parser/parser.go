// Package parser implements the two grammars of §4.1: the expression
// grammar (producing expr.Expression) and the value-literal grammar
// (producing value.Value). Both share the lexer's lexical conventions and
// the Parser type; each grammar has its own atom switch (parseAtom,
// parseValueAtom), while map keys and integer literals are read by the
// shared parseMapKey and parseUnsignedInt.
package parser

import (
	"fmt"
	"math/big"

	"github.com/zannabianca1997/dices/internal/ident"
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parseerr"
)

// Parser holds a two-token lookahead window over a Lexer, following the
// teacher's hand-written recursive-descent style (internal/parser/parser.go
// in the teacher repo): curToken/peekToken fields advanced by next().
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []*parseerr.ParseError
}

// New creates a Parser positioned at the first token of l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos() parseerr.Position {
	return parseerr.Position{Line: p.cur.Pos.Line, Column: p.cur.Pos.Column, Offset: p.cur.Pos.Offset}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, parseerr.New(p.pos(), fmt.Sprintf(format, args...)))
}

func (p *Parser) expectedf(expected []string, format string, args ...any) {
	p.errors = append(p.errors, parseerr.NewExpected(p.pos(), fmt.Sprintf(format, args...), expected...))
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*parseerr.ParseError {
	return p.errors
}

func (p *Parser) is(tt lexer.TokenType) bool { return p.cur.Type == tt }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.cur.Type != tt {
		p.expectedf([]string{tt.String()}, "unexpected token %q", p.cur.Literal)
		return false
	}
	p.next()
	return true
}

// parseIdent consumes an IDENT token and validates it, following the
// grammar's shared identifier rule. Keyword tokens never reach here because
// the lexer classifies them separately.
func (p *Parser) parseIdent() (ident.Ident, bool) {
	if !p.is(lexer.IDENT) {
		p.expectedf([]string{"identifier"}, "expected identifier, got %q", p.cur.Literal)
		return ident.Ident{}, false
	}
	name := p.cur.Literal
	p.next()
	id, err := ident.New(name)
	if err != nil {
		p.errorf("%s", err.Error())
		return ident.Ident{}, false
	}
	return id, true
}

// parseUnsignedInt parses the raw digit run of an INT token into a big.Int.
func parseUnsignedInt(literal string) *big.Int {
	n := new(big.Int)
	n.SetString(literal, 10)
	return n
}
