package engine_test

import (
	"testing"

	"github.com/zannabianca1997/dices/internal/scope"
	"github.com/zannabianca1997/dices/internal/value"
	"github.com/zannabianca1997/dices/pkg/engine"
)

func wantNumber(t *testing.T, v value.Value, want int64) {
	t.Helper()
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("expected Number, got %T (%v)", v, v)
	}
	got, ok := n.Int64()
	if !ok || got != want {
		t.Fatalf("got %v, want %d", n, want)
	}
}

func TestEvalStringArithmetic(t *testing.T) {
	e := engine.New[struct{}](struct{}{})
	v, err := e.EvalString("1 + 2 * 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantNumber(t, v, 7)
}

func TestEvalStringUsesPreludeIntrinsics(t *testing.T) {
	e := engine.New[struct{}](struct{}{})
	v, err := e.EvalString("sum(1, 2, 3)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantNumber(t, v, 6)
}

func TestEvalStringParseErrorReturnsSourceErrors(t *testing.T) {
	e := engine.New[struct{}](struct{}{})
	if _, err := e.EvalString("1 +"); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestWithRNGIsReproducible(t *testing.T) {
	e1 := engine.New[struct{}](struct{}{}, engine.WithRNG[struct{}](scope.NewRNG(7)))
	e2 := engine.New[struct{}](struct{}{}, engine.WithRNG[struct{}](scope.NewRNG(7)))
	a, err := e1.EvalString("3 d 6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e2.EvalString("3 d 6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("same seed produced different rolls: %v vs %v", a, b)
	}
}

func TestWithPreludeDisabledHidesBuiltins(t *testing.T) {
	e := engine.New[struct{}](struct{}{}, engine.WithPrelude[struct{}](false))
	if _, err := e.EvalString("sum(1, 2)"); err == nil {
		t.Fatalf("expected an error referencing an unbound name")
	}
}

func TestEvalManyEmptyReturnsNull(t *testing.T) {
	e := engine.New[struct{}](struct{}{})
	v, err := e.EvalMany(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindNull {
		t.Fatalf("expected Null for an empty expression list, got %v", v)
	}
}
