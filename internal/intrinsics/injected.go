package intrinsics

import (
	"strings"

	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/solveerr"
	"github.com/zannabianca1997/dices/internal/value"
)

// Injected is a host's extension point (§4.5): the set of operations it
// wants callable from a program, each carrying mutable access to the
// host's own data handle M. The intended M is a pointer or other
// reference-like type, since Member.Call's "mutable access" only means
// something if mutations through it are visible to later calls.
type Injected[M any] interface {
	// Iter yields every member this implementation exposes.
	Iter() []Member[M]
}

// Member is a single host-injected operation.
type Member[M any] interface {
	// Name is the operation's canonical name, used for the `named`/`name`
	// round trip of §8 and as the installed key wherever a StdPaths entry
	// auto-appends it.
	Name() string
	// StdPaths lists the `/`-separated standard-library locations this
	// member should be installed at (see resolvePath for the exact syntax).
	StdPaths() []string
	// Call performs the operation against data, the host's injected
	// handle, with already-evaluated arguments.
	Call(data M, args []value.Value) (value.Value, error)
}

// adaptInjected wraps a Member as a value.IntrinsicHandle, recovering the
// caller's injected-data handle from scope.Env.InjectedAny() via a type
// assertion back to M — the other half of the generics-over-injected-data
// design note (see internal/value's IntrinsicHandle doc comment).
func adaptInjected[M any](m Member[M], ordinal int) *handle {
	return &handle{
		name:    m.Name(),
		ordinal: ordinal,
		fn: func(args []value.Value, env scope.Env) (value.Value, error) {
			data, ok := env.InjectedAny().(M)
			if !ok {
				return nil, badArg("injected-data handle type does not match this intrinsic's host")
			}
			v, err := m.Call(data, args)
			if err != nil {
				return nil, solveerr.NewIntrinsic(err)
			}
			return v, nil
		},
	}
}

// Install builds the stdlib and prelude maps an engine binds into a fresh
// Context's root scope: every built-in intrinsic in the prelude, plus
// every member of injected installed at its declared StdPaths (nil
// injected is accepted — a host that exposes nothing still gets the
// built-in prelude).
func Install[M any](injected Injected[M]) (stdlib value.Map, prelude value.Map) {
	stdlib = value.Map{}
	prelude = value.Map{}

	ordinal := 0
	for _, b := range builtins {
		prelude[b.name] = value.Intrinsic{Handle: &handle{name: b.name, ordinal: ordinal, fn: b.fn}}
		ordinal++
	}

	if injected == nil {
		return stdlib, prelude
	}
	for _, m := range injected.Iter() {
		iv := value.Intrinsic{Handle: adaptInjected(m, ordinal)}
		ordinal++
		for _, p := range m.StdPaths() {
			usePrelude, segs, key := resolvePath(p, m.Name())
			root := stdlib
			if usePrelude {
				root = prelude
			}
			navigateCreate(root, segs)[key] = iv
		}
	}
	return stdlib, prelude
}

// resolvePath interprets one std_paths entry (§4.5):
//   - an optional leading "prelude." prefix redirects installation into the
//     prelude instead of the stdlib tree (the bare path "prelude." installs
//     the member directly under its own name in the prelude);
//   - the remainder is a "/"-separated namespace path; if it ends in "."
//     the member's own canonical name is auto-appended as the final
//     segment, otherwise the last segment is the (possibly aliased) key
//     under which the member is installed and every segment before it is
//     the namespace to create.
func resolvePath(path, name string) (usePrelude bool, segs []string, key string) {
	rest := path
	if rest == "prelude." {
		return true, nil, name
	}
	if strings.HasPrefix(rest, "prelude.") {
		usePrelude = true
		rest = strings.TrimPrefix(rest, "prelude.")
	}

	autoAppend := strings.HasSuffix(rest, ".")
	rest = strings.TrimSuffix(rest, ".")
	var parts []string
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	if autoAppend || len(parts) == 0 {
		return usePrelude, parts, name
	}
	return usePrelude, parts[:len(parts)-1], parts[len(parts)-1]
}

// navigateCreate walks root through segs, creating an empty Map at any
// segment that is missing, and returns the innermost Map.
func navigateCreate(root value.Map, segs []string) value.Map {
	cur := root
	for _, s := range segs {
		next, ok := cur[s].(value.Map)
		if !ok {
			next = value.Map{}
			cur[s] = next
		}
		cur = next
	}
	return cur
}
