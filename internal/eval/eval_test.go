package eval

import (
	"testing"

	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/parser"
	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/solveerr"
	"github.com/zannabianca1997/dices/internal/value"
)

func newTestContext() *scope.Context[struct{}] {
	ctx := scope.New(struct{}{}, scope.NewRNG(1))
	Bind(ctx)
	return ctx
}

func evalSrc(t *testing.T, ctx *scope.Context[struct{}], src string) (value.Value, error) {
	t.Helper()
	l := lexer.New(src)
	e := parser.ParseExpression(l)
	if e == nil {
		t.Fatalf("parse(%q) failed", src)
	}
	return Eval(ctx, e)
}

func mustEval(t *testing.T, ctx *scope.Context[struct{}], src string) value.Value {
	t.Helper()
	v, err := evalSrc(t, ctx, src)
	if err != nil {
		t.Fatalf("eval(%q): unexpected error: %v", src, err)
	}
	return v
}

func wantNumber(t *testing.T, v value.Value, want int64) {
	t.Helper()
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("got %T (%v), want Number", v, v)
	}
	if got, exact := n.Int64(); !exact || got != want {
		t.Fatalf("got %v, want %d", n, want)
	}
}

func TestEvalArithmetic(t *testing.T) {
	ctx := newTestContext()
	wantNumber(t, mustEval(t, ctx, "1 + 2 * 3"), 7)
	wantNumber(t, mustEval(t, ctx, "(1 + 2) * 3"), 9)
	wantNumber(t, mustEval(t, ctx, "10 - 3 - 2"), 5)
	wantNumber(t, mustEval(t, ctx, "7 / 2"), 3)
	wantNumber(t, mustEval(t, ctx, "7 % 2"), 1)
	wantNumber(t, mustEval(t, ctx, "-5 + 2"), -3)
}

func TestEvalDivisionByZero(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, "1 / 0")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.DivisionByZero {
		t.Fatalf("got %v, want DivisionByZero", err)
	}
}

func TestEvalDistributesScalarOverList(t *testing.T) {
	ctx := newTestContext()
	got := mustEval(t, ctx, "[1,2,3] * 2")
	want := value.List{value.NumberFromInt64(2), value.NumberFromInt64(4), value.NumberFromInt64(6)}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalMultBothAggregatesFails(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, "[1,2] * [3,4]")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.MultNeedAScalar {
		t.Fatalf("got %v, want MultNeedAScalar", err)
	}
}

func TestEvalAddFoldsAggregates(t *testing.T) {
	ctx := newTestContext()
	wantNumber(t, mustEval(t, ctx, "[1,2,3] + 4"), 10)
	wantNumber(t, mustEval(t, ctx, "[[1,2],[3,4]] + 0"), 10)
}

func TestEvalJoinStrings(t *testing.T) {
	ctx := newTestContext()
	v := mustEval(t, ctx, `"foo" ~ "bar"`)
	if s, ok := v.(value.String); !ok || s != "foobar" {
		t.Fatalf("got %v, want \"foobar\"", v)
	}
}

func TestEvalJoinLists(t *testing.T) {
	ctx := newTestContext()
	got := mustEval(t, ctx, "[1,2] ~ 3")
	want := value.List{value.NumberFromInt64(1), value.NumberFromInt64(2), value.NumberFromInt64(3)}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalJoinMapsRightBiased(t *testing.T) {
	ctx := newTestContext()
	got := mustEval(t, ctx, `<| a: 1 |> ~ <| a: 2, b: 3 |>`)
	want := value.Map{"a": value.NumberFromInt64(2), "b": value.NumberFromInt64(3)}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalRepeatProducesList(t *testing.T) {
	// "3 ^ 5": the right operand (5) is the repeat count, the left (3) is
	// the repeated expression, per the parser's documented `^` convention.
	ctx := newTestContext()
	got := mustEval(t, ctx, "3 ^ 5")
	want := value.List{value.NumberFromInt64(3), value.NumberFromInt64(3), value.NumberFromInt64(3), value.NumberFromInt64(3), value.NumberFromInt64(3)}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalNegativeRepeatFails(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, "5 ^ (0 - 1)")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.NegativeRepeats {
		t.Fatalf("got %v, want NegativeRepeats", err)
	}
}

func TestEvalDiceRollInRange(t *testing.T) {
	ctx := newTestContext()
	for i := 0; i < 50; i++ {
		v := mustEval(t, ctx, "d 6")
		n, ok := v.(value.Number)
		if !ok {
			t.Fatalf("got %T, want Number", v)
		}
		got, _ := n.Int64()
		if got < 1 || got > 6 {
			t.Fatalf("roll %d out of [1,6]", got)
		}
	}
}

func TestEvalInfixDiceRepeatsFaceExpression(t *testing.T) {
	// "3 d 6" repeats the face expression `d 6` three times, not the count.
	ctx := newTestContext()
	v := mustEval(t, ctx, "3 d 6")
	list, ok := v.(value.List)
	if !ok || len(list) != 3 {
		t.Fatalf("got %v, want a 3-element list", v)
	}
	for _, el := range list {
		n, ok := el.(value.Number)
		if !ok {
			t.Fatalf("element %v is not a Number", el)
		}
		if got, _ := n.Int64(); got < 1 || got > 6 {
			t.Fatalf("roll %d out of [1,6]", got)
		}
	}
}

func TestEvalKeepHighAndLow(t *testing.T) {
	ctx := newTestContext()
	got := mustEval(t, ctx, "[3,1,4,1,5] kh 2")
	want := value.List{value.NumberFromInt64(4), value.NumberFromInt64(5)}
	if !got.Equal(want) {
		t.Fatalf("kh: got %v, want %v", got, want)
	}
	got = mustEval(t, ctx, "[3,1,4,1,5] kl 2")
	want = value.List{value.NumberFromInt64(1), value.NumberFromInt64(1)}
	if !got.Equal(want) {
		t.Fatalf("kl: got %v, want %v", got, want)
	}
}

func TestEvalRerollHighAndLowAreComplements(t *testing.T) {
	ctx := newTestContext()
	got := mustEval(t, ctx, "[3,1,4,1,5] rh 2")
	want := value.List{value.NumberFromInt64(3), value.NumberFromInt64(1), value.NumberFromInt64(1)}
	if !got.Equal(want) {
		t.Fatalf("rh: got %v, want %v", got, want)
	}
	got = mustEval(t, ctx, "[3,1,4,1,5] rl 2")
	want = value.List{value.NumberFromInt64(3), value.NumberFromInt64(4), value.NumberFromInt64(5)}
	if !got.Equal(want) {
		t.Fatalf("rl: got %v, want %v", got, want)
	}
}

func TestEvalFilterClampsCount(t *testing.T) {
	ctx := newTestContext()
	got := mustEval(t, ctx, "[1,2] kh 10")
	want := value.List{value.NumberFromInt64(1), value.NumberFromInt64(2)}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvalScopeDiscardsLetsAfterward(t *testing.T) {
	ctx := newTestContext()
	wantNumber(t, mustEval(t, ctx, "{ let x = 5; x + 1 }"), 6)
	if _, ok := ctx.Get("x"); ok {
		t.Fatal("x leaked out of the scope block")
	}
}

func TestEvalSetMutatesListInPlace(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let xs = [1,2,3]")
	mustEval(t, ctx, "xs[1] = 99")
	v, _ := ctx.Get("xs")
	want := value.List{value.NumberFromInt64(1), value.NumberFromInt64(99), value.NumberFromInt64(3)}
	if !v.Equal(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestEvalSetNegativeIndex(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let xs = [1,2,3]")
	mustEval(t, ctx, "xs[-1] = 42")
	v, _ := ctx.Get("xs")
	want := value.List{value.NumberFromInt64(1), value.NumberFromInt64(2), value.NumberFromInt64(42)}
	if !v.Equal(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestEvalSetAutoVivifiesMissingMapKey(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let m = <||>")
	mustEval(t, ctx, `m["a"] = 1`)
	v, _ := ctx.Get("m")
	want := value.Map{"a": value.NumberFromInt64(1)}
	if !v.Equal(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestEvalSetOutOfBoundsFails(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let xs = [1,2,3]")
	_, err := evalSrc(t, ctx, "xs[10] = 0")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.ListIndexOutOfRange {
		t.Fatalf("got %v, want ListIndexOutOfRange", err)
	}
}

func TestEvalUndefinedReferenceFails(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, "nope")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.InvalidReference {
		t.Fatalf("got %v, want InvalidReference", err)
	}
}

func TestEvalMemberAccessString(t *testing.T) {
	ctx := newTestContext()
	v := mustEval(t, ctx, `"hello"[1]`)
	if s, ok := v.(value.String); !ok || s != "e" {
		t.Fatalf("got %v, want \"e\"", v)
	}
}

func TestEvalMemberAccessMapMissingKeyFails(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, `<| a: 1 |>["b"]`)
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.MissingKey {
		t.Fatalf("got %v, want MissingKey", err)
	}
}

func TestEvalClosureCapturesAndCalls(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let y = 10")
	mustEval(t, ctx, "let f = |x| x + y")
	wantNumber(t, mustEval(t, ctx, "f(5)"), 15)
}

func TestEvalClosureDoesNotSeeCallerLocals(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let f = |x| x")
	mustEval(t, ctx, "let secret = 999")
	// f's body only refers to its own parameter; calling it must not expose
	// `secret` from the caller's scope.
	wantNumber(t, mustEval(t, ctx, "f(1)"), 1)
}

func TestEvalClosureWrongArityFails(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let f = |x, y| x + y")
	_, err := evalSrc(t, ctx, "f(1)")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.WrongNumberOfParams {
		t.Fatalf("got %v, want WrongNumberOfParams", err)
	}
}

func TestEvalClosureCaptureMissingNameFails(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, "|x| x + undefinedVar")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.InvalidReference {
		t.Fatalf("got %v, want InvalidReference", err)
	}
}

func TestEvalNotCallableFails(t *testing.T) {
	ctx := newTestContext()
	_, err := evalSrc(t, ctx, "5(1)")
	se, ok := err.(*solveerr.SolveError)
	if !ok || se.Code != solveerr.NotCallable {
		t.Fatalf("got %v, want NotCallable", err)
	}
}

func TestEvalCapturedValueIsFrozenAtConstruction(t *testing.T) {
	ctx := newTestContext()
	mustEval(t, ctx, "let n = 1")
	mustEval(t, ctx, "let f = || n")
	mustEval(t, ctx, "n = 2")
	wantNumber(t, mustEval(t, ctx, "f()"), 1)
}

func TestEvalScopeBalancedOnError(t *testing.T) {
	ctx := newTestContext()
	depth := ctx.Depth()
	_, err := evalSrc(t, ctx, "{ let x = 1 / 0; x }")
	if err == nil {
		t.Fatal("expected an error")
	}
	if ctx.Depth() != depth {
		t.Fatalf("scope depth leaked: got %d, want %d", ctx.Depth(), depth)
	}
}
