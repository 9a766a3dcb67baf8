// Package engine is the embedder-facing contract of §6: the only supported
// way to evaluate dices programs from outside this module. It wires
// together the scope/eval/intrinsics packages that the rest of this module
// leaves as internal building blocks, following the teacher's own
// split between an internal interpreter core and a small public
// construction surface (pkg/dwscript's engine-options pattern).
package engine

import (
	"errors"

	"github.com/zannabianca1997/dices/internal/diagnostics"
	"github.com/zannabianca1997/dices/internal/eval"
	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/intrinsics"
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parseerr"
	"github.com/zannabianca1997/dices/internal/parser"
	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/value"
)

// Engine is a constructed evaluation context for a single host-data type
// M, ready to evaluate expressions against its own scope stack and PRNG.
// It is not safe for concurrent use from multiple goroutines (§5: a single
// evaluation call is synchronous and non-reentrant).
type Engine[M any] struct {
	ctx *scope.Context[M]
}

// config accumulates Option values before New builds the Context.
type config[M any] struct {
	rng      *scope.RNG
	injected intrinsics.Injected[M]
	stdlib   bool
	prelude  bool
}

// Option configures an Engine[M] at construction time.
type Option[M any] func(*config[M])

// WithRNG installs a specific PRNG instead of one seeded from system
// entropy — the only way to get a reproducible evaluation across process
// runs without going through the seed_rng intrinsic afterwards.
func WithRNG[M any](rng *scope.RNG) Option[M] {
	return func(c *config[M]) { c.rng = rng }
}

// WithInjected installs the host's injected-intrinsic implementation
// (§4.5). Passing no WithInjected option leaves the engine with only the
// built-in standard library.
func WithInjected[M any](injected intrinsics.Injected[M]) Option[M] {
	return func(c *config[M]) { c.injected = injected }
}

// WithStdlib controls whether injected members are installed into the
// `std` namespace tree at all (default true). A host that wants its
// members reachable only through explicit prelude paths can disable this.
func WithStdlib[M any](enabled bool) Option[M] {
	return func(c *config[M]) { c.stdlib = enabled }
}

// WithPrelude controls whether the built-in prelude (sum, mult, join,
// call, the conversion/JSON/RNG intrinsics, and any injected members
// installed under a "prelude." std_paths entry) is bound unqualified into
// the root scope (default true).
func WithPrelude[M any](enabled bool) Option[M] {
	return func(c *config[M]) { c.prelude = enabled }
}

// New constructs an Engine with data as its injected-data handle. data is
// typically a pointer or other reference-like value, since host-injected
// intrinsics mutate through it across calls (§4.5, §5).
func New[M any](data M, opts ...Option[M]) *Engine[M] {
	cfg := &config[M]{rng: scope.NewRNGFromEntropy(), stdlib: true, prelude: true}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := scope.New(data, cfg.rng)
	eval.Bind(ctx)

	stdlib, prelude := intrinsics.Install(cfg.injected)
	if cfg.prelude {
		for name, v := range prelude {
			ctx.Let(name, v)
		}
	}
	if cfg.stdlib && len(stdlib) > 0 {
		ctx.Let("std", stdlib)
	}

	return &Engine[M]{ctx: ctx}
}

// Eval evaluates a single already-parsed expression.
func (e *Engine[M]) Eval(ex expr.Expression) (value.Value, error) {
	return eval.Eval(e.ctx, ex)
}

// EvalMany evaluates each expression in order against the shared context,
// returning the value of the last one (§6).
func (e *Engine[M]) EvalMany(exprs []expr.Expression) (value.Value, error) {
	return eval.EvalMany(e.ctx, exprs)
}

// EvalString parses source under the expression grammar and evaluates the
// result. Parse failures are returned as a joined error of
// *diagnostics.SourceError values (one per accumulated parse error), so
// callers that want pretty terminal output can type-assert or unwrap them.
func (e *Engine[M]) EvalString(source string) (value.Value, error) {
	ex, errs := parser.ParseExpressionErrors(lexer.New(source))
	if len(errs) > 0 {
		return nil, joinParseErrors(errs, source)
	}
	return e.Eval(ex)
}

// Context exposes the underlying scope.Context for callers that need
// lower-level access (RNG save/restore outside an evaluation, inspecting
// the injected-data handle, and so on).
func (e *Engine[M]) Context() *scope.Context[M] {
	return e.ctx
}

func joinParseErrors(errs []*parseerr.ParseError, source string) error {
	wrapped := make([]error, len(errs))
	for i, e := range errs {
		wrapped[i] = diagnostics.FromParseError(e, source, "")
	}
	return errors.Join(wrapped...)
}
