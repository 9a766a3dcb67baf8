// Package intrinsics implements C8: the built-in standard library of
// callable operations (sum, mult, join, call, the conversion/JSON/RNG
// family) plus the host-injected-intrinsic extension point of §4.5.
//
// The registry shape is grounded on the teacher's ExternalFunctionRegistry
// (internal/interp/external_functions.go): a name-keyed table of wrapped Go
// functions exposed to the interpreter as ordinary callable values. Here
// the "wrapped Go function" is value.IntrinsicHandle rather than a DWScript
// external-function value, and registration is a one-shot Install call
// building immutable stdlib/prelude maps instead of a mutable registry
// behind a mutex — this package has no notion of runtime registration,
// since every intrinsic (built-in or host-injected) is known up front at
// engine construction.
package intrinsics

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/zannabianca1997/dices/internal/eval"
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parser"
	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/serialize"
	"github.com/zannabianca1997/dices/internal/solveerr"
	"github.com/zannabianca1997/dices/internal/value"
)

// handle adapts a Go function into a value.IntrinsicHandle, recovering the
// scope.Env that eval's Bind wiring and the Call/Invoke dispatch chain pass
// through as an untyped `env any` (see value.IntrinsicHandle's own doc
// comment for why that parameter can't be typed scope.Env directly).
type handle struct {
	name    string
	ordinal int
	fn      func(args []value.Value, env scope.Env) (value.Value, error)
}

func (h *handle) Name() string     { return h.name }
func (h *handle) String() string   { return fmt.Sprintf("<intrinsic %q>", h.name) }
func (h *handle) Ordinal() int     { return h.ordinal }
func (h *handle) Equal(o value.IntrinsicHandle) bool {
	oh, ok := o.(*handle)
	return ok && oh.ordinal == h.ordinal
}

func (h *handle) Call(args []value.Value, env any) (value.Value, error) {
	e, ok := env.(scope.Env)
	if !ok {
		return nil, fmt.Errorf("intrinsics: %q called without a scope.Env", h.name)
	}
	return h.fn(args, e)
}

func wrongArity(name string, want, got int) error {
	return solveerr.New(solveerr.WrongNumberOfParams,
		fmt.Sprintf("%s expects %d argument(s), got %d", name, want, got))
}

// badArg reports a type mismatch in an intrinsic's own argument, wrapped as
// an IntrinsicError — solveerr has no dedicated "bad argument type" code,
// and its own doc comment describes IntrinsicError's Inner as "the wrapped
// error for IntrinsicError" without restricting it to host-injected calls,
// so built-in argument validation uses it too (see DESIGN.md).
func badArg(detail string) error {
	return solveerr.NewIntrinsic(fmt.Errorf("%s", detail))
}

// variadicFold implements the shared shape of sum/mult/join (§4.5): fold
// the arguments left-to-right with op, or return identity for zero
// arguments. Folding from args[0] rather than from identity matters for
// join, whose String+String fast path only triggers when both operands are
// actually strings — starting the accumulator at identity ([]) would force
// every two-string join through list concatenation instead.
func variadicFold(args []value.Value, identity value.Value, op func(a, b value.Value) (value.Value, error)) (value.Value, error) {
	if len(args) == 0 {
		return identity, nil
	}
	acc := args[0]
	for _, a := range args[1:] {
		var err error
		acc, err = op(acc, a)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func biSum(args []value.Value, _ scope.Env) (value.Value, error) {
	return variadicFold(args, value.NumberFromInt64(0), eval.Add)
}

func biMult(args []value.Value, _ scope.Env) (value.Value, error) {
	return variadicFold(args, value.NumberFromInt64(1), eval.Mul)
}

func biJoin(args []value.Value, _ scope.Env) (value.Value, error) {
	return variadicFold(args, value.List{}, eval.Join)
}

func biCall(args []value.Value, env scope.Env) (value.Value, error) {
	if len(args) != 2 {
		return nil, wrongArity("call", 2, len(args))
	}
	callArgs := eval.ToList(args[1])
	return env.Invoke(args[0], append([]value.Value(nil), callArgs...))
}

func biToNumber(args []value.Value, _ scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("to_number", 1, len(args))
	}
	n, err := eval.ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	return n, nil
}

func biToList(args []value.Value, _ scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("to_list", 1, len(args))
	}
	return eval.ToList(args[0]), nil
}

func biToString(args []value.Value, _ scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("to_string", 1, len(args))
	}
	return value.String(args[0].String()), nil
}

func biParse(args []value.Value, _ scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("parse", 1, len(args))
	}
	s, ok := args[0].(value.String)
	if !ok {
		return nil, badArg(fmt.Sprintf("parse expects a string argument, got %s", args[0].Kind()))
	}
	v, errs := parser.ParseValueErrors(lexer.New(string(s)))
	if len(errs) > 0 {
		return nil, solveerr.NewIntrinsic(errs[0])
	}
	return v, nil
}

func biToJSON(args []value.Value, _ scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("to_json", 1, len(args))
	}
	data, err := serialize.Encode(args[0])
	if err != nil {
		return nil, solveerr.NewIntrinsic(err)
	}
	return value.String(data), nil
}

func biFromJSON(args []value.Value, _ scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("from_json", 1, len(args))
	}
	s, ok := args[0].(value.String)
	if !ok {
		return nil, badArg(fmt.Sprintf("from_json expects a string argument, got %s", args[0].Kind()))
	}
	v, err := serialize.Decode([]byte(s))
	if err != nil {
		return nil, solveerr.NewIntrinsic(err)
	}
	return v, nil
}

// biSeedRNG implements seed_rng: with no arguments, reseed from system
// entropy; otherwise hash the (order-sensitive) argument list
// deterministically and seed from it, so the same call always reproduces
// the same stream (§4.5).
func biSeedRNG(args []value.Value, env scope.Env) (value.Value, error) {
	if len(args) == 0 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, solveerr.NewIntrinsic(err)
		}
		env.RNG().Seed(int64(binary.LittleEndian.Uint64(buf[:])))
		return value.NullValue, nil
	}
	data, err := serialize.Encode(value.List(args))
	if err != nil {
		return nil, solveerr.NewIntrinsic(err)
	}
	h := fnv.New64a()
	h.Write(data)
	env.RNG().Seed(int64(h.Sum64()))
	return value.NullValue, nil
}

func biSaveRNG(args []value.Value, env scope.Env) (value.Value, error) {
	if len(args) != 0 {
		return nil, wrongArity("save_rng", 0, len(args))
	}
	return env.RNG().Save(), nil
}

func biRestoreRNG(args []value.Value, env scope.Env) (value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArity("restore_rng", 1, len(args))
	}
	if err := env.RNG().Restore(args[0]); err != nil {
		return nil, solveerr.NewIntrinsic(err)
	}
	return value.NullValue, nil
}

type builtinSpec struct {
	name string
	fn   func(args []value.Value, env scope.Env) (value.Value, error)
}

// builtins lists every built-in intrinsic of §4.5, installed directly into
// the prelude (see Install) so they're callable unqualified.
var builtins = []builtinSpec{
	{"sum", biSum},
	{"mult", biMult},
	{"join", biJoin},
	{"call", biCall},
	{"to_number", biToNumber},
	{"to_list", biToList},
	{"to_string", biToString},
	{"parse", biParse},
	{"to_json", biToJSON},
	{"from_json", biFromJSON},
	{"seed_rng", biSeedRNG},
	{"save_rng", biSaveRNG},
	{"restore_rng", biRestoreRNG},
}
