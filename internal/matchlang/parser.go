package matchlang

import (
	"fmt"
	"math/big"

	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parseerr"
	"github.com/zannabianca1997/dices/internal/value"
)

// Parser holds a two-token lookahead window over a Lexer, mirroring
// internal/parser/parser.go's hand-written recursive-descent style. It
// can't reuse that Parser directly: the matcher grammar's list and map
// atoms hold nested Matchers rather than plain Values, so the atom-parsing
// routines below are their own (smaller) thing, grounded on
// internal/parser/value_parser.go's scalar cases.
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
func (p *Parser) Errors() []*parseerr.ParseError { return p.errors }

func (p *Parser) is(tt lexer.TokenType) bool { return p.cur.Type == tt }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.cur.Type != tt {
		p.expectedf([]string{tt.String()}, "unexpected token %q", p.cur.Literal)
		return false
	}
	p.next()
	return true
}

// Parse parses a complete matcher expression from l (§4.7's grammar:
// precedence `!` > `&&` > `||`).
func Parse(l *lexer.Lexer) (Matcher, []*parseerr.ParseError) {
	p := New(l)
	m := p.parseOr()
	if !p.is(lexer.EOF) {
		p.expectedf([]string{"EOF"}, "unexpected trailing token %q", p.cur.Literal)
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return m, nil
}

func (p *Parser) parseOr() Matcher {
	left := p.parseAnd()
	for p.is(lexer.OROR) {
		p.next()
		left = Or{A: left, B: p.parseAnd()}
	}
	return left
}

func (p *Parser) parseAnd() Matcher {
	left := p.parseUnary()
	for p.is(lexer.ANDAND) {
		p.next()
		left = And{A: left, B: p.parseUnary()}
	}
	return left
}

func (p *Parser) parseUnary() Matcher {
	if p.is(lexer.BANG) {
		p.next()
		return Not{Inner: p.parseUnary()}
	}
	return p.parseAtom()
}

// parseAtom handles every grammar atom: list, map, a scalar value
// (optionally range-suffixed), `_`, and a parenthesized sub-expression.
func (p *Parser) parseAtom() Matcher {
	switch p.cur.Type {
	case lexer.IDENT:
		if p.cur.Literal == "_" {
			p.next()
			return Any{}
		}
		p.expectedf([]string{"_"}, "unexpected identifier %q", p.cur.Literal)
		p.next()
		return Any{}
	case lexer.LPAREN:
		p.next()
		m := p.parseOr()
		p.expect(lexer.RPAREN)
		return m
	case lexer.LBRACKET:
		return p.parseList()
	case lexer.LMAP:
		return p.parseMap()
	case lexer.NULL, lexer.TRUE, lexer.FALSE, lexer.INT, lexer.PLUS, lexer.MINUS, lexer.STRING:
		return p.parseValueOrRange()
	default:
		p.expectedf([]string{"matcher"}, "unexpected token %q", p.cur.Literal)
		p.next()
		return Any{}
	}
}

func (p *Parser) parseList() Matcher {
	p.expect(lexer.LBRACKET)
	out := List{}
	for !p.is(lexer.RBRACKET) && !p.is(lexer.EOF) {
		out.Elements = append(out.Elements, p.parseOr())
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET)
	return out
}

func (p *Parser) parseMap() Matcher {
	p.expect(lexer.LMAP)
	out := Map{ByName: map[string]Matcher{}}
	for !p.is(lexer.RMAP) && !p.is(lexer.EOF) {
		key, ok := p.parseMapKey()
		if !ok {
			break
		}
		if !p.expect(lexer.COLON) {
			break
		}
		out.ByName[key] = p.parseOr()
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RMAP)
	return out
}

func (p *Parser) parseMapKey() (string, bool) {
	switch p.cur.Type {
	case lexer.IDENT:
		k := p.cur.Literal
		p.next()
		return k, true
	case lexer.STRING:
		k := p.cur.Literal
		p.next()
		return k, true
	default:
		p.expectedf([]string{"key"}, "unexpected token %q", p.cur.Literal)
		return "", false
	}
}

// parseValueOrRange parses a scalar literal, optionally followed by
// ".. v" or "..= v" to form a Range; otherwise it's an Exact match.
func (p *Parser) parseValueOrRange() Matcher {
	start := p.parseScalar()
	if p.is(lexer.DOTDOT) || p.is(lexer.RANGEEQ) {
		inclusive := p.is(lexer.RANGEEQ)
		p.next()
		end := p.parseScalar()
		return Range{Start: start, End: end, Inclusive: inclusive}
	}
	return Exact{Value: start}
}

func (p *Parser) parseScalar() value.Value {
	switch p.cur.Type {
	case lexer.NULL:
		p.next()
		return value.NullValue
	case lexer.TRUE:
		p.next()
		return value.Bool(true)
	case lexer.FALSE:
		p.next()
		return value.Bool(false)
	case lexer.PLUS, lexer.MINUS:
		neg := p.cur.Type == lexer.MINUS
		p.next()
		if !p.is(lexer.INT) {
			p.expectedf([]string{"integer"}, "expected an integer after sign, got %q", p.cur.Literal)
			return value.NullValue
		}
		n := parseUnsignedInt(p.cur.Literal)
		p.next()
		if neg {
			n.Neg(n)
		}
		return value.NewNumber(n)
	case lexer.INT:
		n := parseUnsignedInt(p.cur.Literal)
		p.next()
		return value.NewNumber(n)
	case lexer.STRING:
		s := p.cur.Literal
		p.next()
		return value.String(s)
	default:
		p.expectedf([]string{"value"}, "unexpected token %q", p.cur.Literal)
		p.next()
		return value.NullValue
	}
}

func parseUnsignedInt(literal string) *big.Int {
	n := new(big.Int)
	n.SetString(literal, 10)
	return n
}
