// Package scope implements the lexical scope stack and evaluation context
// (C5): a stack of variable frames, the PRNG handle, and the injected-data
// handle threaded through every evaluation.
//
// The frame chain is grounded on the teacher's internal/interp.Environment
// (a linked chain of *Environment with an outer pointer, Get/Set/Define
// methods), reshaped into an explicit slice-backed stack so that `scoped`
// and `jailed` (§4.2) can be expressed as push/pop and whole-stack swap
// rather than as tree construction.
package scope

import (
	"github.com/zannabianca1997/dices/internal/value"
)

// Context carries everything an evaluation needs beyond the expression tree
// itself: the variable scope stack, the PRNG, and M, the host-supplied
// injected-data handle threaded opaquely through intrinsic calls (the Go
// translation of the specification's "generics over injected intrinsics"
// design note: rather than making Value itself generic, only the data
// handle a host's injected intrinsics operate on is parametric, and
// intrinsic dispatch itself is abstracted behind value.IntrinsicHandle).
type Context[M any] struct {
	frames   []map[string]value.Value
	rng      *RNG
	injected M
	invoke   func(callee value.Value, args []value.Value) (value.Value, error)
}

// New creates a Context with a single root scope frame.
func New[M any](injected M, rng *RNG) *Context[M] {
	return &Context[M]{
		frames:   []map[string]value.Value{make(map[string]value.Value)},
		rng:      rng,
		injected: injected,
	}
}

// Depth returns the current scope stack depth, used by callers (and tests)
// to check the scope-balance invariant of §8.
func (c *Context[M]) Depth() int { return len(c.frames) }

// RNG returns the context's PRNG handle.
func (c *Context[M]) RNG() *RNG { return c.rng }

// Injected returns the host-supplied injected-data handle.
func (c *Context[M]) Injected() M { return c.injected }

// InjectedAny returns the injected-data handle as `any`, so that code
// outside this generic instantiation (intrinsic dispatch, in particular)
// can reach it without itself being generic over M. See Env.
func (c *Context[M]) InjectedAny() any { return c.injected }

// SetInvoker installs the callable-dispatch function used by Invoke. The
// eval package, which knows how to reduce a Call node for a concrete M,
// wires this once per Context right after construction (see eval.Bind);
// scope itself has no notion of expression evaluation.
func (c *Context[M]) SetInvoker(f func(callee value.Value, args []value.Value) (value.Value, error)) {
	c.invoke = f
}

// Invoke calls a Closure or Intrinsic value with already-evaluated
// arguments, the same dispatch evalCall itself performs. It exists so that
// intrinsics (in particular the `call` built-in) can invoke a callable
// value received as an argument without the intrinsics package needing to
// import eval.
func (c *Context[M]) Invoke(callee value.Value, args []value.Value) (value.Value, error) {
	if c.invoke == nil {
		panic("scope: Context.Invoke called before SetInvoker")
	}
	return c.invoke(callee, args)
}

// Env is the non-generic view of a Context that intrinsic dispatch needs.
// value.IntrinsicHandle.Call receives its environment as `any` (value
// cannot import scope without a cycle); implementations recover this
// interface with a type assertion. Context[M] satisfies Env for every M.
type Env interface {
	RNG() *RNG
	InjectedAny() any
	Get(name string) (value.Value, bool)
	Let(name string, v value.Value)
	Set(name string, v value.Value) bool
	Invoke(callee value.Value, args []value.Value) (value.Value, error)
}

var _ Env = (*Context[struct{}])(nil)

func (c *Context[M]) push() {
	c.frames = append(c.frames, make(map[string]value.Value))
}

func (c *Context[M]) pop() {
	c.frames = c.frames[:len(c.frames)-1]
}

// Get walks the stack top-down and returns the first binding of name, per
// vars().get.
func (c *Context[M]) Get(name string) (value.Value, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Let inserts (or shadows) name in the top scope frame, per
// vars_mut().let.
func (c *Context[M]) Let(name string, v value.Value) {
	c.frames[len(c.frames)-1][name] = v
}

// Set mutates the first existing binding of name found walking the stack
// top-down, per vars_mut().set. It reports whether a binding existed.
func (c *Context[M]) Set(name string, v value.Value) bool {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if _, ok := c.frames[i][name]; ok {
			c.frames[i][name] = v
			return true
		}
	}
	return false
}

// Scoped pushes a fresh empty scope, runs f, and pops it again — even if f
// panics or returns an error — so that lets introduced by f never escape,
// while sets to outer scopes persist (§4.2).
func Scoped[M any, T any](c *Context[M], f func() (T, error)) (T, error) {
	c.push()
	defer c.pop()
	return f()
}

// Jailed replaces the whole scope stack with a fresh single empty frame,
// runs f, then restores the original stack. The PRNG and injected-data
// handle are left untouched: only the variable bindings are jailed. Used
// to evaluate closure bodies, which must see only their captures and
// parameters — never the caller's locals (§4.2).
func Jailed[M any, T any](c *Context[M], f func() (T, error)) (T, error) {
	saved := c.frames
	c.frames = []map[string]value.Value{make(map[string]value.Value)}
	defer func() { c.frames = saved }()
	return f()
}
