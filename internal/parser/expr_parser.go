package parser

import (
	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/ident"
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parseerr"
)

// ParseExpression parses the whole token stream as a single expression
// program, following the precedence ladder of §4.1 (lowest to highest:
// assignment, closure, additive, join, multiplicative, repeat/filter,
// unary, dice, postfix, atoms). It returns nil once any error has been
// recorded; callers needing the error detail should use
// ParseExpressionErrors instead.
func ParseExpression(l *lexer.Lexer) expr.Expression {
	e, _ := ParseExpressionErrors(l)
	return e
}

// ParseExpressionErrors parses like ParseExpression but also returns the
// accumulated parse errors, for callers that must surface more than "parse
// failed" — the embedder's eval_str entry point and the `parse` intrinsic's
// error reporting both need the source position and the expected-token set.
func ParseExpressionErrors(l *lexer.Lexer) (expr.Expression, []*parseerr.ParseError) {
	p := New(l)
	e := p.parseAssignment()
	if !p.is(lexer.EOF) {
		p.expectedf([]string{"EOF"}, "unexpected trailing token %q", p.cur.Literal)
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return e, nil
}

// parseAssignment is level 1: `receiver = value`, right-associative. Since
// a receiver and a plain expression share a prefix (both start with an
// identifier, `_`, or `let`), we first try to parse a receiver followed by
// `=`, backtracking if that fails; on success we commit to the assignment,
// otherwise we parse an ordinary expression.
func (p *Parser) parseAssignment() expr.Expression {
	if recv, ok := p.tryParseReceiver(); ok {
		if p.is(lexer.ASSIGN) {
			p.next()
			value := p.parseAssignment()
			return expr.Set{Receiver: recv, Value: value}
		}
		// Not actually an assignment: reinterpret what we consumed as a
		// plain expression and continue parsing postfix/binary operators
		// from there.
		return p.continueAsExpression(recv)
	}

	return p.parseClosure()
}

// receiverCheckpoint snapshots parser position for backtracking.
type receiverCheckpoint struct {
	l    lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
	errs int
}

func (p *Parser) checkpoint() receiverCheckpoint {
	return receiverCheckpoint{l: *p.l, cur: p.cur, peek: p.peek, errs: len(p.errors)}
}

func (p *Parser) restore(c receiverCheckpoint) {
	*p.l = c.l
	p.cur = c.cur
	p.peek = c.peek
	p.errors = p.errors[:c.errs]
}

// tryParseReceiver attempts to parse a receiver (`_`, `let ident`, or
// `ident` followed by zero or more `.field`/`[index]` suffixes). It only
// succeeds (ok=true) when the next token after the receiver is `=`;
// otherwise it restores the parser to where it started and returns false,
// since `_` is not otherwise a valid atom and a bare `ident[...]`/`ident.x`
// not followed by `=` is a normal indexing expression parsed by the
// postfix-expression path instead.
func (p *Parser) tryParseReceiver() (expr.Receiver, bool) {
	if p.is(lexer.IDENT) && p.cur.Literal == "_" {
		cp := p.checkpoint()
		p.next()
		if p.is(lexer.ASSIGN) {
			return expr.IgnoreReceiver(), true
		}
		p.restore(cp)
		return expr.Receiver{}, false
	}

	if p.is(lexer.KW_LET) {
		cp := p.checkpoint()
		p.next()
		name, ok := p.parseIdent()
		if ok && p.is(lexer.ASSIGN) {
			return expr.LetReceiver(name), true
		}
		p.restore(cp)
		return expr.Receiver{}, false
	}

	if p.is(lexer.IDENT) {
		cp := p.checkpoint()
		root, ok := p.parseIdent()
		if !ok {
			p.restore(cp)
			return expr.Receiver{}, false
		}
		var indices []expr.Expression
		for {
			if p.is(lexer.LBRACKET) {
				p.next()
				idx := p.parseAssignment()
				if !p.expect(lexer.RBRACKET) {
					p.restore(cp)
					return expr.Receiver{}, false
				}
				indices = append(indices, idx)
				continue
			}
			if p.is(lexer.DOT) {
				p.next()
				indices = append(indices, p.parseDotSuffix())
				continue
			}
			break
		}
		if p.is(lexer.ASSIGN) {
			return expr.SetReceiver(root, indices), true
		}
		p.restore(cp)
		return expr.Receiver{}, false
	}

	return expr.Receiver{}, false
}

// parseDotSuffix parses the `.ident|.string|.number` member key following a
// DOT that has already been consumed, producing the key as a Const
// expression (the form MemberAccess/receiver indices expect).
func (p *Parser) parseDotSuffix() expr.Expression {
	switch {
	case p.is(lexer.IDENT):
		name := p.cur.Literal
		p.next()
		return expr.Const{Value: expr.StringLiteral(name)}
	case p.is(lexer.STRING):
		s := p.cur.Literal
		p.next()
		return expr.Const{Value: expr.StringLiteral(s)}
	case p.is(lexer.INT):
		n := parseUnsignedInt(p.cur.Literal)
		p.next()
		return expr.Const{Value: expr.NumberLiteral(n)}
	default:
		p.expectedf([]string{"identifier", "string", "number"}, "expected a member name after '.', got %q", p.cur.Literal)
		return expr.Const{Value: expr.NullLiteral}
	}
}

// continueAsExpression is used when a receiver-shaped prefix turned out not
// to be followed by `=`; since tryParseReceiver already restored the
// parser on failure, this simply resumes ordinary expression parsing.
func (p *Parser) continueAsExpression(_ expr.Receiver) expr.Expression {
	return p.parseClosure()
}

// parseClosure is level 2: `| params | body`, or falls through to additive.
func (p *Parser) parseClosure() expr.Expression {
	if p.is(lexer.OROR) {
		// `||` lexes as a single token: a closure with no parameters.
		p.next()
		body := p.parseClosure()
		return expr.Closure{Body: body}
	}
	if p.is(lexer.PIPE) {
		p.next()
		var params []ident.Ident
		for !p.is(lexer.PIPE) {
			name, ok := p.parseIdent()
			if !ok {
				break
			}
			params = append(params, name)
			if p.is(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
		p.expect(lexer.PIPE)
		body := p.parseClosure()
		return expr.Closure{Params: params, Body: body}
	}
	return p.parseAdditive()
}

func (p *Parser) parseAdditive() expr.Expression {
	left := p.parseJoin()
	for p.is(lexer.PLUS) || p.is(lexer.MINUS) {
		op := expr.BinAdd
		if p.is(lexer.MINUS) {
			op = expr.BinSub
		}
		p.next()
		right := p.parseJoin()
		left = expr.BinOp{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseJoin() expr.Expression {
	left := p.parseMultiplicative()
	for p.is(lexer.TILDE) {
		p.next()
		right := p.parseMultiplicative()
		left = expr.BinOp{Op: expr.BinJoin, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() expr.Expression {
	left := p.parseFilter()
	for p.is(lexer.STAR) || p.is(lexer.SLASH) || p.is(lexer.PERCENT) {
		var op expr.BinaryOp
		switch p.cur.Type {
		case lexer.STAR:
			op = expr.BinMul
		case lexer.SLASH:
			op = expr.BinDiv
		default:
			op = expr.BinMod
		}
		p.next()
		right := p.parseFilter()
		left = expr.BinOp{Op: op, Left: left, Right: right}
	}
	return left
}

// parseFilter is level 6: `^`, `kh`, `kl`, `rh`, `rl`. For the repeat
// operator `^` we record Left/Right in their surface-syntax positions
// (Left is the expression repeated, Right the count) and let the evaluator
// apply §4.4's Special evaluation order, keyed off BinRepeat.Order().
func (p *Parser) parseFilter() expr.Expression {
	left := p.parseUnary()
	for p.is(lexer.CARET) || p.is(lexer.KW_KH) || p.is(lexer.KW_KL) || p.is(lexer.KW_RH) || p.is(lexer.KW_RL) {
		var op expr.BinaryOp
		switch p.cur.Type {
		case lexer.CARET:
			op = expr.BinRepeat
		case lexer.KW_KH:
			op = expr.BinKeepHigh
		case lexer.KW_KL:
			op = expr.BinKeepLow
		case lexer.KW_RH:
			op = expr.BinRerollHigh
		default:
			op = expr.BinRerollLow
		}
		p.next()
		right := p.parseUnary()
		left = expr.BinOp{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() expr.Expression {
	switch p.cur.Type {
	case lexer.PLUS:
		p.next()
		return expr.UnOp{Op: expr.UnPlus, Expr: p.parseUnary()}
	case lexer.MINUS:
		p.next()
		return expr.UnOp{Op: expr.UnMinus, Expr: p.parseUnary()}
	default:
		return p.parseDice()
	}
}

// parseDice is level 8: prefix `d` (unary die roll) and infix `d` (binary
// repeat-of-die-roll). `n d f` parses as BinOp{BinRepeat, Left:
// UnOp{UnDice, f}, Right: n} per original_source/dices-ast's receiver
// grammar: the repeat count is always the right operand of `^`, so the
// infix die roll swaps the surface left/right operands into that shape
// rather than introducing a separate BinDice evaluation rule.
func (p *Parser) parseDice() expr.Expression {
	if p.is(lexer.KW_D) {
		p.next()
		faces := p.parseDice()
		return expr.UnOp{Op: expr.UnDice, Expr: faces}
	}

	left := p.parsePostfix()
	if p.is(lexer.KW_D) {
		p.next()
		faces := p.parseDice()
		return expr.BinOp{Op: expr.BinRepeat, Left: expr.UnOp{Op: expr.UnDice, Expr: faces}, Right: left}
	}
	return left
}

// parsePostfix is level 9: call, index, and dot suffixes, left-associative.
func (p *Parser) parsePostfix() expr.Expression {
	e := p.parseAtom()
	for {
		switch {
		case p.is(lexer.LPAREN):
			p.next()
			var args []expr.Expression
			for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
				args = append(args, p.parseAssignment())
				if p.is(lexer.COMMA) {
					p.next()
					continue
				}
				break
			}
			p.expect(lexer.RPAREN)
			e = expr.Call{Callee: e, Args: args}
		case p.is(lexer.LBRACKET):
			p.next()
			idx := p.parseAssignment()
			p.expect(lexer.RBRACKET)
			e = expr.MemberAccess{Target: e, Index: idx}
		case p.is(lexer.DOT):
			p.next()
			idx := p.parseDotSuffix()
			e = expr.MemberAccess{Target: e, Index: idx}
		default:
			return e
		}
	}
}

// parseAtom is level 10.
func (p *Parser) parseAtom() expr.Expression {
	switch p.cur.Type {
	case lexer.NULL:
		p.next()
		return expr.Const{Value: expr.NullLiteral}
	case lexer.TRUE:
		p.next()
		return expr.Const{Value: expr.BoolLiteral(true)}
	case lexer.FALSE:
		p.next()
		return expr.Const{Value: expr.BoolLiteral(false)}
	case lexer.INT:
		n := parseUnsignedInt(p.cur.Literal)
		p.next()
		return expr.Const{Value: expr.NumberLiteral(n)}
	case lexer.STRING:
		s := p.cur.Literal
		p.next()
		return expr.Const{Value: expr.StringLiteral(s)}
	case lexer.IDENT:
		name, ok := p.parseIdent()
		if !ok {
			return expr.Const{Value: expr.NullLiteral}
		}
		return expr.Ref{Name: name}
	case lexer.LBRACKET:
		return p.parseListLiteral()
	case lexer.LMAP:
		return p.parseMapLiteral()
	case lexer.LPAREN:
		p.next()
		e := p.parseAssignment()
		p.expect(lexer.RPAREN)
		return e
	case lexer.LBRACE:
		return p.parseScope()
	default:
		p.expectedf([]string{"expression"}, "unexpected token %q", p.cur.Literal)
		p.next()
		return expr.Const{Value: expr.NullLiteral}
	}
}

func (p *Parser) parseListLiteral() expr.Expression {
	p.expect(lexer.LBRACKET)
	var elems []expr.Expression
	for !p.is(lexer.RBRACKET) && !p.is(lexer.EOF) {
		elems = append(elems, p.parseAssignment())
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET)
	return expr.List{Elements: elems}
}

// parseMapKey parses an identifier-or-string map key, returning its text.
func (p *Parser) parseMapKey() (string, bool) {
	switch {
	case p.is(lexer.IDENT):
		name := p.cur.Literal
		p.next()
		return name, true
	case p.is(lexer.STRING):
		s := p.cur.Literal
		p.next()
		return s, true
	default:
		p.expectedf([]string{"identifier", "string"}, "expected a map key, got %q", p.cur.Literal)
		return "", false
	}
}

func (p *Parser) parseMapLiteral() expr.Expression {
	p.expect(lexer.LMAP)
	var entries []expr.MapEntry
	for !p.is(lexer.RMAP) && !p.is(lexer.EOF) {
		key, ok := p.parseMapKey()
		if !ok {
			break
		}
		if !p.expect(lexer.COLON) {
			break
		}
		value := p.parseAssignment()
		entries = append(entries, expr.MapEntry{Key: key, Value: value})
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RMAP)
	return expr.Map{Entries: entries}
}

// parseScope parses `{ e1; e2; ...; en }`; a missing expression between two
// semicolons or before the closing brace denotes null (§4.1).
func (p *Parser) parseScope() expr.Expression {
	p.expect(lexer.LBRACE)
	var elems []expr.Expression
	for {
		if p.is(lexer.RBRACE) || p.is(lexer.EOF) {
			// A trailing `;` (or an empty `{}`) denotes a final null slot.
			elems = append(elems, expr.Const{Value: expr.NullLiteral})
			break
		}
		if p.is(lexer.SEMI) {
			elems = append(elems, expr.Const{Value: expr.NullLiteral})
			p.next()
			continue
		}
		elems = append(elems, p.parseAssignment())
		if p.is(lexer.SEMI) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)
	return expr.Scope{Elements: elems}
}
