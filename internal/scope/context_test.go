package scope

import (
	"errors"
	"testing"

	"github.com/zannabianca1997/dices/internal/value"
)

func newTestContext() *Context[struct{}] {
	return New(struct{}{}, NewRNG(1))
}

func TestNewContextHasSingleRootFrame(t *testing.T) {
	c := newTestContext()
	if c.Depth() != 1 {
		t.Fatalf("got depth %d, want 1", c.Depth())
	}
}

func TestLetThenGet(t *testing.T) {
	c := newTestContext()
	c.Let("x", value.NumberFromInt64(42))

	v, ok := c.Get("x")
	if !ok {
		t.Fatal("expected x to be found")
	}
	if !v.Equal(value.NumberFromInt64(42)) {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestGetUndefined(t *testing.T) {
	c := newTestContext()
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected missing variable to be absent")
	}
}

func TestSetRequiresExistingBinding(t *testing.T) {
	c := newTestContext()
	if ok := c.Set("x", value.NumberFromInt64(1)); ok {
		t.Fatal("Set on an unbound name should report false")
	}
	c.Let("x", value.NumberFromInt64(1))
	if ok := c.Set("x", value.NumberFromInt64(2)); !ok {
		t.Fatal("Set on a bound name should succeed")
	}
	v, _ := c.Get("x")
	if !v.Equal(value.NumberFromInt64(2)) {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestScopedDiscardsLetsOnPop(t *testing.T) {
	c := newTestContext()
	_, _ = Scoped(c, func() (struct{}, error) {
		c.Let("x", value.NumberFromInt64(1))
		if _, ok := c.Get("x"); !ok {
			t.Fatal("x should be visible inside the scope")
		}
		return struct{}{}, nil
	})
	if _, ok := c.Get("x"); ok {
		t.Fatal("x should not escape the popped scope")
	}
	if c.Depth() != 1 {
		t.Fatalf("got depth %d, want 1 after pop", c.Depth())
	}
}

func TestScopedSetsToOuterScopePersist(t *testing.T) {
	c := newTestContext()
	c.Let("x", value.NumberFromInt64(1))
	_, _ = Scoped(c, func() (struct{}, error) {
		if ok := c.Set("x", value.NumberFromInt64(9)); !ok {
			t.Fatal("Set should find x in the outer frame")
		}
		return struct{}{}, nil
	})
	v, _ := c.Get("x")
	if !v.Equal(value.NumberFromInt64(9)) {
		t.Fatalf("got %v, want 9", v)
	}
}

func TestScopedPopsOnError(t *testing.T) {
	c := newTestContext()
	wantErr := errors.New("boom")
	_, err := Scoped(c, func() (struct{}, error) {
		c.Let("x", value.NumberFromInt64(1))
		return struct{}{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got err %v, want %v", err, wantErr)
	}
	if c.Depth() != 1 {
		t.Fatalf("got depth %d, want 1 after error unwind", c.Depth())
	}
}

func TestJailedHidesOuterScope(t *testing.T) {
	c := newTestContext()
	c.Let("x", value.NumberFromInt64(1))
	_, _ = Jailed(c, func() (struct{}, error) {
		if _, ok := c.Get("x"); ok {
			t.Fatal("jailed evaluation must not see the caller's locals")
		}
		c.Let("y", value.NumberFromInt64(2))
		return struct{}{}, nil
	})
	if _, ok := c.Get("x"); !ok {
		t.Fatal("x should be restored after the jailed call")
	}
	if _, ok := c.Get("y"); ok {
		t.Fatal("y must not leak out of the jailed frame")
	}
}

func TestJailedLeavesRNGAndInjectedUntouched(t *testing.T) {
	c := newTestContext()
	before := c.RNG().Roll(6)
	c2 := newTestContext()
	c2.RNG().Roll(6) // advance c2's independent generator the same way
	_, _ = Jailed(c, func() (struct{}, error) {
		return struct{}{}, nil
	})
	after := c.RNG().Roll(6)
	if before == 0 || after == 0 {
		t.Fatal("Roll should never return 0")
	}
	if want := c2.RNG().Roll(6); after != want {
		t.Fatalf("Jailed disturbed the RNG stream: got %v, want %v", after, want)
	}
}

func TestRNGSaveRestoreReproducesSequence(t *testing.T) {
	g := NewRNG(42)
	saved := g.Save()
	first := []int64{g.Roll(6), g.Roll(20), g.Roll(4)}

	if err := g.Restore(saved); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	second := []int64{g.Roll(6), g.Roll(20), g.Roll(4)}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("draw %d: got %d after restore, want %d", i, second[i], first[i])
		}
	}
}

func TestRNGRollStaysInRange(t *testing.T) {
	g := NewRNG(7)
	for i := 0; i < 1000; i++ {
		r := g.Roll(6)
		if r < 1 || r > 6 {
			t.Fatalf("Roll(6) returned %d, out of range", r)
		}
	}
}
