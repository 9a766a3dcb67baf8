package expr

import (
	"math/big"

	"github.com/zannabianca1997/dices/internal/ident"
)

// Clone returns a deep, independent copy of the literal.
func (l Literal) Clone() Literal {
	clone := l
	if l.Num != nil {
		clone.Num = new(big.Int).Set(l.Num)
	}
	return clone
}

// Clone returns a deep, independent copy of e. Expressions are otherwise
// immutable once parsed, but closures may need an isolated copy of their
// body when the same literal source is shared across multiple parses (e.g.
// the value-literal parser re-using atom routines from the expression
// parser, per the spec's note that the two grammars share atom parsing).
func Clone(e Expression) Expression {
	switch n := e.(type) {
	case Const:
		return Const{Value: n.Value.Clone()}
	case List:
		return List{Elements: cloneSlice(n.Elements)}
	case Map:
		entries := make([]MapEntry, len(n.Entries))
		for i, kv := range n.Entries {
			entries[i] = MapEntry{Key: kv.Key, Value: Clone(kv.Value)}
		}
		return Map{Entries: entries}
	case Closure:
		params := append([]ident.Ident(nil), n.Params...)
		return Closure{Params: params, Body: Clone(n.Body)}
	case Ref:
		return n
	case Set:
		return Set{Receiver: cloneReceiver(n.Receiver), Value: Clone(n.Value)}
	case Scope:
		return Scope{Elements: cloneSlice(n.Elements)}
	case UnOp:
		return UnOp{Op: n.Op, Expr: Clone(n.Expr)}
	case BinOp:
		return BinOp{Op: n.Op, Left: Clone(n.Left), Right: Clone(n.Right)}
	case Call:
		return Call{Callee: Clone(n.Callee), Args: cloneSlice(n.Args)}
	case MemberAccess:
		return MemberAccess{Target: Clone(n.Target), Index: Clone(n.Index)}
	default:
		return e
	}
}

func cloneSlice(es []Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = Clone(e)
	}
	return out
}

func cloneReceiver(r Receiver) Receiver {
	clone := r
	clone.SetIndices = cloneSlice(r.SetIndices)
	return clone
}
