package eval

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/solveerr"
	"github.com/zannabianca1997/dices/internal/value"
)

func evalUnOp[M any](ctx *scope.Context[M], n expr.UnOp) (value.Value, error) {
	if n.Op == expr.UnDice {
		faces, err := Eval(ctx, n.Expr)
		if err != nil {
			return nil, err
		}
		return evalDice(ctx, faces)
	}

	v, err := Eval(ctx, n.Expr)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case expr.UnPlus:
		return evalUnaryPlus(v)
	case expr.UnMinus:
		return evalUnaryMinus(v)
	default:
		panic(fmt.Sprintf("eval: unhandled unary operator %v", n.Op))
	}
}

func evalDice[M any](ctx *scope.Context[M], v value.Value) (value.Value, error) {
	n, err := toNumber(v)
	if err != nil {
		return nil, solveerr.New(solveerr.CannotMakeANumber, err.Error())
	}
	faces, exact := n.Int64()
	if !exact || faces <= 0 {
		return nil, solveerr.New(solveerr.FacesMustBePositive,
			fmt.Sprintf("dice faces must be a positive integer, got %s", n.String()))
	}
	return value.NumberFromInt64(ctx.RNG().Roll(faces)), nil
}

func evalBinOp[M any](ctx *scope.Context[M], n expr.BinOp) (value.Value, error) {
	if n.Op == expr.BinRepeat {
		return evalRepeat(ctx, n)
	}

	a, err := Eval(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	b, err := Eval(ctx, n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case expr.BinAdd:
		return evalAdd(a, b)
	case expr.BinSub:
		return evalSub(a, b)
	case expr.BinJoin:
		return evalJoin(a, b)
	case expr.BinMul:
		return evalArithBinary(a, b, mulOp)
	case expr.BinDiv:
		return evalArithBinary(a, b, divOp)
	case expr.BinMod:
		return evalArithBinary(a, b, modOp)
	case expr.BinKeepHigh:
		return evalFilter(a, b, filterKeepHigh)
	case expr.BinKeepLow:
		return evalFilter(a, b, filterKeepLow)
	case expr.BinRerollHigh:
		return evalFilter(a, b, filterRerollHigh)
	case expr.BinRerollLow:
		return evalFilter(a, b, filterRerollLow)
	default:
		panic(fmt.Sprintf("eval: unhandled binary operator %v", n.Op))
	}
}

// evalRepeat implements `^`: evaluate the right (count) operand once, then
// evaluate the left (repeated) operand that many times, collecting a list.
func evalRepeat[M any](ctx *scope.Context[M], n expr.BinOp) (value.Value, error) {
	rv, err := Eval(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	cnt, err := toNumber(rv)
	if err != nil {
		return nil, solveerr.New(solveerr.RHSIsNotANumber, err.Error())
	}
	count, exact := cnt.Int64()
	if !exact || count < 0 {
		return nil, solveerr.New(solveerr.NegativeRepeats,
			fmt.Sprintf("repeat count must be a non-negative integer, got %s", cnt.String()))
	}
	out := make(value.List, 0, count)
	for i := int64(0); i < count; i++ {
		v, err := Eval(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ToNumber coerces v to a Number per §4.4's coercion table: bools map to
// 0/1, numbers pass through, numeric strings parse, and single-element
// lists/maps unwrap recursively. Exported so the `to_number` intrinsic (and
// other coercion-dependent intrinsics) share this exact algorithm instead
// of re-deriving it.
func ToNumber(v value.Value) (value.Number, error) { return toNumber(v) }

// ToList coerces v to a List per §4.4: lists pass through, maps become
// their sorted-key value sequence, everything else becomes a singleton.
// Exported for the `to_list` intrinsic, see ToNumber.
func ToList(v value.Value) value.List { return toList(v) }

func toNumber(v value.Value) (value.Number, error) {
	switch t := v.(type) {
	case value.Bool:
		if t {
			return value.NumberFromInt64(1), nil
		}
		return value.NumberFromInt64(0), nil
	case value.Number:
		return t, nil
	case value.String:
		n := new(big.Int)
		if _, ok := n.SetString(string(t), 10); !ok {
			return value.Number{}, solveerr.New(solveerr.CannotMakeANumber,
				fmt.Sprintf("cannot parse %q as a number", string(t)))
		}
		return value.NewNumber(n), nil
	case value.List:
		if len(t) == 1 {
			return toNumber(t[0])
		}
		return value.Number{}, solveerr.New(solveerr.CannotMakeANumber, "a list needs exactly one element to become a number")
	case value.Map:
		if len(t) == 1 {
			for _, el := range t {
				return toNumber(el)
			}
		}
		return value.Number{}, solveerr.New(solveerr.CannotMakeANumber, "a map needs exactly one entry to become a number")
	default:
		return value.Number{}, solveerr.New(solveerr.CannotMakeANumber, fmt.Sprintf("%s has no numeric value", v.Kind()))
	}
}

// toList coerces v to a List per §4.4: lists pass through, maps become
// their sorted-key value sequence, everything else becomes a singleton.
func toList(v value.Value) value.List {
	switch t := v.(type) {
	case value.List:
		return t
	case value.Map:
		keys := t.SortedKeys()
		out := make(value.List, len(keys))
		for i, k := range keys {
			out[i] = t[k]
		}
		return out
	default:
		return value.List{v}
	}
}

// reduceNumeric is toNumber extended with `+`'s own recursive flattening:
// a List/Map operand is reduced to a single Number by folding its own
// elements together with `+` before the caller combines both sides.
func reduceNumeric(v value.Value) (value.Number, error) {
	switch t := v.(type) {
	case value.List:
		return foldNumeric(t)
	case value.Map:
		keys := t.SortedKeys()
		els := make([]value.Value, len(keys))
		for i, k := range keys {
			els[i] = t[k]
		}
		return foldNumeric(els)
	default:
		return toNumber(v)
	}
}

func foldNumeric(els []value.Value) (value.Number, error) {
	acc := big.NewInt(0)
	for _, el := range els {
		n, err := reduceNumeric(el)
		if err != nil {
			return value.Number{}, err
		}
		acc.Add(acc, n.Int())
	}
	return value.NewNumber(acc), nil
}

func wrapSide(err error, isLeft bool) error {
	code := solveerr.RHSIsNotANumber
	if isLeft {
		code = solveerr.LHSIsNotANumber
	}
	return solveerr.New(code, err.Error())
}

// Add, Mul and Join expose the `+`, `*` and `~` operator implementations
// for the `sum`, `mult` and `join` intrinsics (§4.5), which are specified
// as folding their variadic arguments with exactly these operators.
func Add(a, b value.Value) (value.Value, error)  { return evalAdd(a, b) }
func Mul(a, b value.Value) (value.Value, error)  { return evalArithBinary(a, b, mulOp) }
func Join(a, b value.Value) (value.Value, error) { return evalJoin(a, b) }

// evalAdd implements `+`: recursive flattening sum (§4.4).
func evalAdd(a, b value.Value) (value.Value, error) {
	na, err := reduceNumeric(a)
	if err != nil {
		return nil, wrapSide(err, true)
	}
	nb, err := reduceNumeric(b)
	if err != nil {
		return nil, wrapSide(err, false)
	}
	return value.NewNumber(new(big.Int).Add(na.Int(), nb.Int())), nil
}

// evalUnaryPlus implements unary `+`: toNumber, tree-reducing aggregates
// via `+` (§4.4).
func evalUnaryPlus(v value.Value) (value.Value, error) {
	n, err := reduceNumeric(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// evalUnaryMinus implements unary `-` as `(-1) * operand` (§4.4).
func evalUnaryMinus(v value.Value) (value.Value, error) {
	return evalArithBinary(value.NumberFromInt64(-1), v, mulOp)
}

// evalSub implements `-` as `a + (-b)` (§4.4).
func evalSub(a, b value.Value) (value.Value, error) {
	negB, err := evalUnaryMinus(b)
	if err != nil {
		return nil, err
	}
	return evalAdd(a, negB)
}

// evalJoin implements `~`: string concatenation, right-biased map merge, or
// else list concatenation after toList on both sides (§4.4).
func evalJoin(a, b value.Value) (value.Value, error) {
	if as, ok := a.(value.String); ok {
		if bs, ok := b.(value.String); ok {
			return value.String(string(as) + string(bs)), nil
		}
	}
	if am, ok := a.(value.Map); ok {
		if bm, ok := b.(value.Map); ok {
			out := make(value.Map, len(am)+len(bm))
			for k, v := range am {
				out[k] = v
			}
			for k, v := range bm {
				out[k] = v
			}
			return out, nil
		}
	}
	la, lb := toList(a), toList(b)
	out := make(value.List, 0, len(la)+len(lb))
	out = append(out, la...)
	out = append(out, lb...)
	return out, nil
}

type numOp func(x, y *big.Int) (*big.Int, error)

func mulOp(x, y *big.Int) (*big.Int, error) { return new(big.Int).Mul(x, y), nil }

func divOp(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, solveerr.New(solveerr.DivisionByZero, "")
	}
	return new(big.Int).Quo(x, y), nil
}

func modOp(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, solveerr.New(solveerr.DivisionByZero, "")
	}
	return new(big.Int).Rem(x, y), nil
}

func isScalar(v value.Value) bool {
	switch v.(type) {
	case value.List, value.Map:
		return false
	default:
		return true
	}
}

// evalArithBinary implements the `*`/`/`/`%` distribution rule (§4.4): two
// scalars combine directly; a scalar and an aggregate distribute op over
// the aggregate's elements (preserving which side the scalar was on, since
// `/` and `%` are not commutative); two aggregates fail with
// MultNeedAScalar.
func evalArithBinary(a, b value.Value, op numOp) (value.Value, error) {
	aScalar, bScalar := isScalar(a), isScalar(b)
	switch {
	case aScalar && bScalar:
		na, err := numericOperand(a, true)
		if err != nil {
			return nil, err
		}
		nb, err := numericOperand(b, false)
		if err != nil {
			return nil, err
		}
		r, err := op(na.Int(), nb.Int())
		if err != nil {
			return nil, err
		}
		return value.NewNumber(r), nil

	case !aScalar && bScalar:
		nb, err := numericOperand(b, false)
		if err != nil {
			return nil, err
		}
		return mapAggregate(a, func(el value.Value) (value.Value, error) {
			ne, err := numericOperand(el, true)
			if err != nil {
				return nil, err
			}
			r, err := op(ne.Int(), nb.Int())
			if err != nil {
				return nil, err
			}
			return value.NewNumber(r), nil
		})

	case aScalar && !bScalar:
		na, err := numericOperand(a, true)
		if err != nil {
			return nil, err
		}
		return mapAggregate(b, func(el value.Value) (value.Value, error) {
			ne, err := numericOperand(el, false)
			if err != nil {
				return nil, err
			}
			r, err := op(na.Int(), ne.Int())
			if err != nil {
				return nil, err
			}
			return value.NewNumber(r), nil
		})

	default:
		return nil, solveerr.New(solveerr.MultNeedAScalar, "both operands are aggregates")
	}
}

func numericOperand(v value.Value, isLeft bool) (value.Number, error) {
	n, err := toNumber(v)
	if err != nil {
		return value.Number{}, wrapSide(err, isLeft)
	}
	return n, nil
}

func mapAggregate(v value.Value, f func(value.Value) (value.Value, error)) (value.Value, error) {
	switch t := v.(type) {
	case value.List:
		out := make(value.List, len(t))
		for i, el := range t {
			r, err := f(el)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case value.Map:
		out := make(value.Map, len(t))
		for k, el := range t {
			r, err := f(el)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		panic("eval: mapAggregate called on a scalar")
	}
}

// evalFilter implements the shared shape of `kh`/`kl`/`rh`/`rl`: the left
// operand must be a list, the right a non-negative count k (clamped to the
// list's length), dispatched to the operator-specific selector.
func evalFilter(a, b value.Value, f func(value.List, int) value.List) (value.Value, error) {
	list, ok := a.(value.List)
	if !ok {
		return nil, solveerr.New(solveerr.LHSIsNotAList, fmt.Sprintf("expected a list, got %s", a.Kind()))
	}
	kn, err := toNumber(b)
	if err != nil {
		return nil, solveerr.New(solveerr.RHSIsNotANumber, err.Error())
	}
	k, exact := kn.Int64()
	if !exact || k < 0 {
		return nil, solveerr.New(solveerr.FilterNeedPositive,
			fmt.Sprintf("filter count must be a non-negative integer, got %s", kn.String()))
	}
	if k > int64(len(list)) {
		k = int64(len(list))
	}
	return f(list, int(k)), nil
}

// keepIndices returns the k indices of list ranked highest (or lowest, if
// !keepHighest), in ascending index order so the result preserves source
// order. Ties are broken by source order: sort.SliceStable keeps an
// earlier element ahead of an equal later one in the ranking, so among
// tied values straddling the cutoff the earliest ones are kept.
func keepIndices(list value.List, k int, keepHighest bool) []int {
	idx := make([]int, len(list))
	for i := range list {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		c := list[idx[i]].Compare(list[idx[j]])
		if keepHighest {
			return c > 0
		}
		return c < 0
	})
	keep := append([]int(nil), idx[:k]...)
	sort.Ints(keep)
	return keep
}

func selectIndices(list value.List, keep []int) value.List {
	out := make(value.List, len(keep))
	for i, idx := range keep {
		out[i] = list[idx]
	}
	return out
}

func complementIndices(list value.List, dropped []int) value.List {
	dropSet := make(map[int]struct{}, len(dropped))
	for _, i := range dropped {
		dropSet[i] = struct{}{}
	}
	out := make(value.List, 0, len(list)-len(dropped))
	for i, v := range list {
		if _, d := dropSet[i]; !d {
			out = append(out, v)
		}
	}
	return out
}

func filterKeepHigh(list value.List, k int) value.List {
	return selectIndices(list, keepIndices(list, k, true))
}

func filterKeepLow(list value.List, k int) value.List {
	return selectIndices(list, keepIndices(list, k, false))
}

func filterRerollHigh(list value.List, k int) value.List {
	return complementIndices(list, keepIndices(list, k, true))
}

func filterRerollLow(list value.List, k int) value.List {
	return complementIndices(list, keepIndices(list, k, false))
}
