package parser

import (
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parseerr"
	"github.com/zannabianca1997/dices/internal/value"
)

// ParseValue parses the whole token stream under the value-literal grammar
// (§4.1): the same atoms as the expression grammar minus identifiers,
// operators, calls and closures, with integer literals allowed a leading
// sign. It returns nil once any error has been recorded; callers needing
// the error detail should use ParseValueErrors instead.
func ParseValue(l *lexer.Lexer) value.Value {
	v, _ := ParseValueErrors(l)
	return v
}

// ParseValueErrors parses like ParseValue but also returns the accumulated
// parse errors, used by the `parse` intrinsic to report malformed input
// instead of a bare failure.
func ParseValueErrors(l *lexer.Lexer) (value.Value, []*parseerr.ParseError) {
	p := New(l)
	v := p.parseValueAtom()
	if !p.is(lexer.EOF) {
		p.expectedf([]string{"EOF"}, "unexpected trailing token %q", p.cur.Literal)
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return v, nil
}

func (p *Parser) parseValueAtom() value.Value {
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
	case lexer.LBRACKET:
		return p.parseValueList()
	case lexer.LMAP:
		return p.parseValueMap()
	default:
		p.expectedf([]string{"value"}, "unexpected token %q", p.cur.Literal)
		p.next()
		return value.NullValue
	}
}

func (p *Parser) parseValueList() value.Value {
	p.expect(lexer.LBRACKET)
	out := value.List{}
	for !p.is(lexer.RBRACKET) && !p.is(lexer.EOF) {
		out = append(out, p.parseValueAtom())
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET)
	return out
}

func (p *Parser) parseValueMap() value.Value {
	p.expect(lexer.LMAP)
	out := value.Map{}
	for !p.is(lexer.RMAP) && !p.is(lexer.EOF) {
		key, ok := p.parseMapKey()
		if !ok {
			break
		}
		if !p.expect(lexer.COLON) {
			break
		}
		out[key] = p.parseValueAtom()
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RMAP)
	return out
}
