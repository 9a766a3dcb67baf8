// Package eval implements the tree-walking evaluator (C6): a single
// recursive Eval function, generic over the host's injected-data type,
// reducing an expr.Expression to a value.Value under a scope.Context.
//
// The dispatch shape is grounded on the teacher's Interpreter.Eval
// (internal/interp/interpreter.go): one big type switch over node kinds,
// each case delegating to a small, privately named evalX helper.
package eval

import (
	"fmt"
	"math/big"

	"github.com/zannabianca1997/dices/internal/capture"
	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/ident"
	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/solveerr"
	"github.com/zannabianca1997/dices/internal/value"
)

// Eval reduces e to a Value under ctx, following the per-variant rules of
// §4.3. It is total over well-typed programs and returns a *solveerr.SolveError
// otherwise.
func Eval[M any](ctx *scope.Context[M], e expr.Expression) (value.Value, error) {
	switch n := e.(type) {
	case expr.Const:
		return liftLiteral(n.Value), nil
	case expr.List:
		return evalList(ctx, n)
	case expr.Map:
		return evalMap(ctx, n)
	case expr.Ref:
		return evalRef(ctx, n)
	case expr.Scope:
		return evalScope(ctx, n)
	case expr.Set:
		return evalSet(ctx, n)
	case expr.Closure:
		return evalClosure(ctx, n)
	case expr.Call:
		return evalCall(ctx, n)
	case expr.MemberAccess:
		return evalMemberAccess(ctx, n)
	case expr.UnOp:
		return evalUnOp(ctx, n)
	case expr.BinOp:
		return evalBinOp(ctx, n)
	default:
		panic(fmt.Sprintf("eval: unhandled expression type %T", e))
	}
}

// EvalMany evaluates a sequence of top-level expressions as if they were
// elements of an implicit outermost scope, returning the last one's value.
// Used by the embedder's eval_many entry point.
func EvalMany[M any](ctx *scope.Context[M], exprs []expr.Expression) (value.Value, error) {
	var last value.Value = value.NullValue
	for _, e := range exprs {
		v, err := Eval(ctx, e)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// liftLiteral lifts a Const node's Go-native Literal into a runtime Value
// (§4.3: "Const(v) → v cloned"); the fresh big.Int copy serves as the clone.
func liftLiteral(l expr.Literal) value.Value {
	switch l.Kind {
	case expr.LiteralNull:
		return value.NullValue
	case expr.LiteralBool:
		return value.Bool(l.Bool)
	case expr.LiteralNumber:
		return value.NewNumber(new(big.Int).Set(l.Num))
	case expr.LiteralString:
		return value.String(l.Str)
	default:
		panic("eval: unhandled literal kind")
	}
}

func evalList[M any](ctx *scope.Context[M], n expr.List) (value.Value, error) {
	out := make(value.List, len(n.Elements))
	for i, el := range n.Elements {
		v, err := Eval(ctx, el)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalMap[M any](ctx *scope.Context[M], n expr.Map) (value.Value, error) {
	out := make(value.Map, len(n.Entries))
	for _, entry := range n.Entries {
		v, err := Eval(ctx, entry.Value)
		if err != nil {
			return nil, err
		}
		out[entry.Key] = v
	}
	return out, nil
}

func evalRef[M any](ctx *scope.Context[M], n expr.Ref) (value.Value, error) {
	v, ok := ctx.Get(n.Name.String())
	if !ok {
		return nil, solveerr.NewRef(n.Name.String())
	}
	return v, nil
}

func evalScope[M any](ctx *scope.Context[M], n expr.Scope) (value.Value, error) {
	return scope.Scoped(ctx, func() (value.Value, error) {
		var last value.Value = value.NullValue
		for _, el := range n.Elements {
			v, err := Eval(ctx, el)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	})
}

func evalSet[M any](ctx *scope.Context[M], n expr.Set) (value.Value, error) {
	v, err := Eval(ctx, n.Value)
	if err != nil {
		return nil, err
	}
	switch n.Receiver.Kind {
	case expr.ReceiverIgnore:
		return v, nil
	case expr.ReceiverLet:
		ctx.Let(n.Receiver.LetName.String(), v)
		return v, nil
	case expr.ReceiverSet:
		if err := applySetReceiver(ctx, n.Receiver, v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		panic(fmt.Sprintf("eval: unhandled receiver kind %v", n.Receiver.Kind))
	}
}

func applySetReceiver[M any](ctx *scope.Context[M], r expr.Receiver, v value.Value) error {
	if len(r.SetIndices) == 0 {
		if !ctx.Set(r.SetRoot.String(), v) {
			return solveerr.NewRef(r.SetRoot.String())
		}
		return nil
	}

	root, ok := ctx.Get(r.SetRoot.String())
	if !ok {
		return solveerr.NewRef(r.SetRoot.String())
	}

	idxs := make([]value.Value, len(r.SetIndices))
	for i, ie := range r.SetIndices {
		iv, err := Eval(ctx, ie)
		if err != nil {
			return err
		}
		idxs[i] = iv
	}

	updated, err := setPath(root, idxs, v)
	if err != nil {
		return err
	}
	ctx.Set(r.SetRoot.String(), updated)
	return nil
}

// setPath walks container through idxs, writing v at the leaf. Lists and
// maps are mutated in place (both are Go reference types, so this mutates
// the live binding as §4.2 requires); a missing map key encountered along
// the way is treated as Null and then overwritten, per §4.3.
func setPath(container value.Value, idxs []value.Value, v value.Value) (value.Value, error) {
	if len(idxs) == 0 {
		return v, nil
	}
	idx := idxs[0]
	switch c := container.(type) {
	case value.List:
		pos, err := listIndex(idx, len(c))
		if err != nil {
			return nil, err
		}
		updated, err := setPath(c[pos], idxs[1:], v)
		if err != nil {
			return nil, err
		}
		c[pos] = updated
		return c, nil
	case value.Map:
		s, ok := idx.(value.String)
		if !ok {
			return nil, solveerr.New(solveerr.MapIsIndexedByStrings, "map keys must be strings")
		}
		key := string(s)
		cur, present := c[key]
		if !present {
			cur = value.NullValue
		}
		updated, err := setPath(cur, idxs[1:], v)
		if err != nil {
			return nil, err
		}
		c[key] = updated
		return c, nil
	default:
		return nil, solveerr.New(solveerr.CannotIndex, fmt.Sprintf("cannot index into %s", container.Kind()))
	}
}

func evalClosure[M any](ctx *scope.Context[M], n expr.Closure) (value.Value, error) {
	free, err := capture.Captures(n.Body, n.Params)
	if err != nil {
		return nil, err
	}
	captured := make(value.Map, len(free))
	for name := range free {
		v, ok := ctx.Get(name)
		if !ok {
			return nil, solveerr.NewRef(name)
		}
		captured[name] = v.Clone()
	}
	return value.Closure{
		Params:   append([]ident.Ident(nil), n.Params...),
		Captures: captured,
		Body:     n.Body,
	}, nil
}

func evalCall[M any](ctx *scope.Context[M], n expr.Call) (value.Value, error) {
	callee, err := Eval(ctx, n.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return invokeValue(ctx, callee, args)
}

// invokeValue dispatches an already-evaluated callee/args pair to a
// Closure or Intrinsic, per §4.3's Call rule. It backs both evalCall and
// the Context.Invoke hook Bind installs for the `call` intrinsic.
func invokeValue[M any](ctx *scope.Context[M], callee value.Value, args []value.Value) (value.Value, error) {
	switch c := callee.(type) {
	case value.Closure:
		return callClosure(ctx, c, args)
	case value.Intrinsic:
		return c.Handle.Call(args, scope.Env(ctx))
	default:
		return nil, solveerr.New(solveerr.NotCallable, fmt.Sprintf("%s is not callable", callee.Kind()))
	}
}

// Bind wires ctx's Context.Invoke hook to this package's Call dispatch, so
// that intrinsics recovering a scope.Env from their `any` env argument can
// invoke callable values generically. The embedder (pkg/engine) calls this
// once right after constructing a Context.
func Bind[M any](ctx *scope.Context[M]) {
	ctx.SetInvoker(func(callee value.Value, args []value.Value) (value.Value, error) {
		return invokeValue(ctx, callee, args)
	})
}

func callClosure[M any](ctx *scope.Context[M], c value.Closure, args []value.Value) (value.Value, error) {
	if len(args) != len(c.Params) {
		return nil, solveerr.New(solveerr.WrongNumberOfParams,
			fmt.Sprintf("expected %d argument(s), got %d", len(c.Params), len(args)))
	}
	return scope.Jailed(ctx, func() (value.Value, error) {
		for name, v := range c.Captures {
			ctx.Let(name, v)
		}
		for i, p := range c.Params {
			ctx.Let(p.String(), args[i])
		}
		return Eval(ctx, c.Body)
	})
}

func evalMemberAccess[M any](ctx *scope.Context[M], n expr.MemberAccess) (value.Value, error) {
	target, err := Eval(ctx, n.Target)
	if err != nil {
		return nil, err
	}
	idx, err := Eval(ctx, n.Index)
	if err != nil {
		return nil, err
	}
	return indexValue(target, idx)
}

func indexValue(target, idx value.Value) (value.Value, error) {
	switch t := target.(type) {
	case value.String:
		runes := []rune(string(t))
		pos, err := listIndex(idx, len(runes))
		if err != nil {
			if se, ok := err.(*solveerr.SolveError); ok && se.Code == solveerr.ListIsIndexedByNumbers {
				return nil, solveerr.New(solveerr.StringIsIndexedByNumbers, se.Detail)
			}
			if se, ok := err.(*solveerr.SolveError); ok && se.Code == solveerr.ListIndexOutOfRange {
				return nil, solveerr.NewIndex(solveerr.StringIndexOutOfRange, se.Index)
			}
			return nil, err
		}
		return value.String(string(runes[pos])), nil
	case value.List:
		pos, err := listIndex(idx, len(t))
		if err != nil {
			return nil, err
		}
		return t[pos].Clone(), nil
	case value.Map:
		s, ok := idx.(value.String)
		if !ok {
			return nil, solveerr.New(solveerr.MapIsIndexedByStrings, "map keys must be strings")
		}
		v, ok := t[string(s)]
		if !ok {
			return nil, solveerr.NewKey(string(s))
		}
		return v, nil
	default:
		return nil, solveerr.New(solveerr.CannotIndex, fmt.Sprintf("cannot index into %s", target.Kind()))
	}
}

// listIndex validates idx as a Number, resolves a negative index relative
// to length, and bounds-checks it, returning the codes a List consumer
// expects (callers indexing a String remap these to the String-flavored
// codes).
func listIndex(idx value.Value, length int) (int, error) {
	n, ok := idx.(value.Number)
	if !ok {
		return 0, solveerr.New(solveerr.ListIsIndexedByNumbers, "index must be a number")
	}
	i, exact := n.Int64()
	if !exact {
		return 0, solveerr.NewIndex(solveerr.ListIndexOutOfRange, 0)
	}
	pos := i
	if pos < 0 {
		pos += int64(length)
	}
	if pos < 0 || pos >= int64(length) {
		return 0, solveerr.NewIndex(solveerr.ListIndexOutOfRange, int(i))
	}
	return int(pos), nil
}
