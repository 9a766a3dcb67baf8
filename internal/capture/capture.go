// Package capture implements the closure free-variable analyzer (C7): a
// tree walk over an expression body that computes the minimal set of names
// that must be copied into a closure at construction time (§4.6).
//
// The walk is grounded on the teacher's scope-aware tree-walking analyzers
// in internal/semantic (e.g. analyze_lambdas.go's per-node traversal with an
// accumulating error path), adapted from type inference to free-variable
// bookkeeping: instead of propagating a types.Type per node, each node
// produces a {reads, sets, lets} triple that the sequential-composition
// rule folds together.
package capture

import (
	"fmt"
	"sort"

	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/ident"
	"github.com/zannabianca1997/dices/internal/solveerr"
)

// Set is an identifier-name set.
type Set map[string]struct{}

// Sorted returns the set's members in a deterministic order, used wherever
// captures must be reported or iterated reproducibly.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s Set) union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

func (s Set) minus(o Set) Set {
	out := make(Set, len(s))
	for k := range s {
		if _, excluded := o[k]; !excluded {
			out[k] = struct{}{}
		}
	}
	return out
}

// triple is the {reads, sets, lets} bookkeeping accumulated per node.
type triple struct {
	reads, sets, lets Set
}

func empty() triple {
	return triple{reads: Set{}, sets: Set{}, lets: Set{}}
}

// combine implements the sequential-composition rule for `a;b` from §4.6:
// reads a name free in b unless a already bound it via a set or a let;
// sets accumulate from both sides, but a read/set of a name a already let
// refers to a's local binding, not an outer one; lets simply accumulate (a
// caller decides whether they escape, e.g. Scope discards them).
func combine(a, b triple) triple {
	return triple{
		reads: a.reads.union(b.reads.minus(a.sets.union(a.lets))),
		sets:  a.sets.union(b.sets.minus(a.lets)),
		lets:  a.lets.union(b.lets),
	}
}

func combineChildren(exprs []expr.Expression) (triple, error) {
	out := empty()
	for _, e := range exprs {
		t, err := analyzeNode(e)
		if err != nil {
			return triple{}, err
		}
		out = combine(out, t)
	}
	return out, nil
}

// Captures computes the minimal free-variable set of a closure body, given
// its parameter list: the body's reads, minus the parameters (§4.6's
// "Captures of a closure = reads \ params"). If the body's structure makes
// the free set impossible to pin down statically — currently only the `^`
// ConditionalLet case — it returns a *solveerr.SolveError with code
// ClosureCannotCalculateCaptures.
func Captures(body expr.Expression, params []ident.Ident) (Set, error) {
	t, err := analyzeNode(body)
	if err != nil {
		return nil, err
	}
	paramSet := make(Set, len(params))
	for _, p := range params {
		paramSet[p.String()] = struct{}{}
	}
	return t.reads.minus(paramSet), nil
}

func analyzeNode(e expr.Expression) (triple, error) {
	switch n := e.(type) {
	case expr.Const:
		return empty(), nil

	case expr.Ref:
		return triple{reads: newSet(n.Name.String()), sets: Set{}, lets: Set{}}, nil

	case expr.List:
		return combineChildren(n.Elements)

	case expr.Map:
		values := make([]expr.Expression, len(n.Entries))
		for i, entry := range n.Entries {
			values[i] = entry.Value
		}
		return combineChildren(values)

	case expr.Call:
		children := make([]expr.Expression, 0, 1+len(n.Args))
		children = append(children, n.Callee)
		children = append(children, n.Args...)
		return combineChildren(children)

	case expr.UnOp:
		return analyzeNode(n.Expr)

	case expr.BinOp:
		return analyzeBinOp(n)

	case expr.Scope:
		t, err := combineChildren(n.Elements)
		if err != nil {
			return triple{}, err
		}
		t.lets = Set{} // lets introduced inside a scope never escape it
		return t, nil

	case expr.Set:
		return analyzeSet(n)

	case expr.Closure:
		free, err := Captures(n.Body, n.Params)
		if err != nil {
			return triple{}, err
		}
		return triple{reads: free, sets: Set{}, lets: Set{}}, nil

	case expr.MemberAccess:
		return combineChildren([]expr.Expression{n.Target, n.Index})

	default:
		panic(fmt.Sprintf("capture: unhandled expression type %T", e))
	}
}

// analyzeBinOp combines a binary operator's operands in the order its
// EvalOrder dictates (§4.4/§4.6). The `^` Special order combines
// right-then-left, but rejects a left operand that introduces any `lets`:
// since the left operand is re-evaluated once per repeat, any variable it
// would let into scope only conditionally exists depending on the (dynamic)
// repeat count, so it cannot be captured statically.
func analyzeBinOp(n expr.BinOp) (triple, error) {
	switch n.Op.Order() {
	case expr.RightThenLeft:
		right, err := analyzeNode(n.Right)
		if err != nil {
			return triple{}, err
		}
		left, err := analyzeNode(n.Left)
		if err != nil {
			return triple{}, err
		}
		return combine(right, left), nil

	case expr.Special:
		right, err := analyzeNode(n.Right)
		if err != nil {
			return triple{}, err
		}
		left, err := analyzeNode(n.Left)
		if err != nil {
			return triple{}, err
		}
		if len(left.lets) > 0 {
			return triple{}, solveerr.NewClosureCaptures(
				"the repeated operand of '^' introduces a let, which would only conditionally exist depending on the repeat count")
		}
		return combine(right, left), nil

	default: // LeftThenRight
		left, err := analyzeNode(n.Left)
		if err != nil {
			return triple{}, err
		}
		right, err := analyzeNode(n.Right)
		if err != nil {
			return triple{}, err
		}
		return combine(left, right), nil
	}
}

// analyzeSet combines the value expression's triple with the receiver's
// contribution (§4.6): Ignore contributes nothing; Let(n) introduces n as a
// let; Set{root, indices} reads root, combines the index expressions, and
// additionally marks root as set.
func analyzeSet(n expr.Set) (triple, error) {
	value, err := analyzeNode(n.Value)
	if err != nil {
		return triple{}, err
	}

	var recv triple
	switch n.Receiver.Kind {
	case expr.ReceiverIgnore:
		recv = empty()
	case expr.ReceiverLet:
		recv = triple{reads: Set{}, sets: Set{}, lets: newSet(n.Receiver.LetName.String())}
	case expr.ReceiverSet:
		root := n.Receiver.SetRoot.String()
		combined := triple{reads: newSet(root), sets: Set{}, lets: Set{}}
		for _, idx := range n.Receiver.SetIndices {
			idxT, err := analyzeNode(idx)
			if err != nil {
				return triple{}, err
			}
			combined = combine(combined, idxT)
		}
		combined.sets = combined.sets.union(newSet(root))
		recv = combined
	default:
		panic(fmt.Sprintf("capture: unhandled receiver kind %v", n.Receiver.Kind))
	}

	return combine(value, recv), nil
}
