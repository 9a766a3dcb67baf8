package parser

import (
	"math/big"
	"testing"

	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/ident"
	"github.com/zannabianca1997/dices/internal/lexer"
	"github.com/zannabianca1997/dices/internal/value"
)

func parseExprString(t *testing.T, src string) expr.Expression {
	t.Helper()
	l := lexer.New(src)
	p := New(l)
	e := p.parseAssignment()
	if !p.is(lexer.EOF) {
		t.Fatalf("parse(%q): trailing token %v", src, p.cur)
	}
	if len(p.Errors()) > 0 {
		t.Fatalf("parse(%q): unexpected errors: %v", src, p.Errors())
	}
	return e
}

func TestParseAdditive(t *testing.T) {
	got := parseExprString(t, "1 + 2 + 3")
	want := expr.BinOp{
		Op: expr.BinAdd,
		Left: expr.BinOp{
			Op:    expr.BinAdd,
			Left:  expr.Const{Value: expr.NumberLiteral(big.NewInt(1))},
			Right: expr.Const{Value: expr.NumberLiteral(big.NewInt(2))},
		},
		Right: expr.Const{Value: expr.NumberLiteral(big.NewInt(3))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParsePrecedenceMulOverAdd(t *testing.T) {
	got := parseExprString(t, "1 + 2 * 3")
	want := expr.BinOp{
		Op:   expr.BinAdd,
		Left: expr.Const{Value: expr.NumberLiteral(big.NewInt(1))},
		Right: expr.BinOp{
			Op:    expr.BinMul,
			Left:  expr.Const{Value: expr.NumberLiteral(big.NewInt(2))},
			Right: expr.Const{Value: expr.NumberLiteral(big.NewInt(3))},
		},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParsePrefixDice(t *testing.T) {
	got := parseExprString(t, "d6")
	want := expr.UnOp{Op: expr.UnDice, Expr: expr.Const{Value: expr.NumberLiteral(big.NewInt(6))}}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseInfixDiceSwapsOperands(t *testing.T) {
	// "3d6" must parse as BinOp{Repeat, Left: UnOp{Dice, 6}, Right: 3}: the
	// repeat count always occupies ^'s right operand.
	got := parseExprString(t, "3 d 6")
	want := expr.BinOp{
		Op:    expr.BinRepeat,
		Left:  expr.UnOp{Op: expr.UnDice, Expr: expr.Const{Value: expr.NumberLiteral(big.NewInt(6))}},
		Right: expr.Const{Value: expr.NumberLiteral(big.NewInt(3))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseUnaryLooserThanDice(t *testing.T) {
	got := parseExprString(t, "-d6")
	want := expr.UnOp{
		Op:   expr.UnMinus,
		Expr: expr.UnOp{Op: expr.UnDice, Expr: expr.Const{Value: expr.NumberLiteral(big.NewInt(6))}},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseKeepHigh(t *testing.T) {
	got := parseExprString(t, "x kh 3")
	want := expr.BinOp{
		Op:    expr.BinKeepHigh,
		Left:  expr.Ref{Name: ident.MustNew("x")},
		Right: expr.Const{Value: expr.NumberLiteral(big.NewInt(3))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseIdentDoesNotSplitOnKeywordPrefix(t *testing.T) {
	got := parseExprString(t, "khigh")
	want := expr.Ref{Name: ident.MustNew("khigh")}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseCallAndIndex(t *testing.T) {
	got := parseExprString(t, "f(1, 2)[0]")
	want := expr.MemberAccess{
		Target: expr.Call{
			Callee: expr.Ref{Name: ident.MustNew("f")},
			Args: []expr.Expression{
				expr.Const{Value: expr.NumberLiteral(big.NewInt(1))},
				expr.Const{Value: expr.NumberLiteral(big.NewInt(2))},
			},
		},
		Index: expr.Const{Value: expr.NumberLiteral(big.NewInt(0))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseDotAccess(t *testing.T) {
	got := parseExprString(t, "m.field")
	want := expr.MemberAccess{
		Target: expr.Ref{Name: ident.MustNew("m")},
		Index:  expr.Const{Value: expr.StringLiteral("field")},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseLetAssignment(t *testing.T) {
	got := parseExprString(t, "let x = 5")
	want := expr.Set{
		Receiver: expr.LetReceiver(ident.MustNew("x")),
		Value:    expr.Const{Value: expr.NumberLiteral(big.NewInt(5))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseIgnoreAssignment(t *testing.T) {
	got := parseExprString(t, "_ = 5")
	want := expr.Set{
		Receiver: expr.IgnoreReceiver(),
		Value:    expr.Const{Value: expr.NumberLiteral(big.NewInt(5))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseIndexedSetReceiver(t *testing.T) {
	got := parseExprString(t, "x[0] = 5")
	want := expr.Set{
		Receiver: expr.SetReceiver(ident.MustNew("x"), []expr.Expression{
			expr.Const{Value: expr.NumberLiteral(big.NewInt(0))},
		}),
		Value: expr.Const{Value: expr.NumberLiteral(big.NewInt(5))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseIndexingWithoutAssignIsMemberAccess(t *testing.T) {
	got := parseExprString(t, "x[0]")
	want := expr.MemberAccess{
		Target: expr.Ref{Name: ident.MustNew("x")},
		Index:  expr.Const{Value: expr.NumberLiteral(big.NewInt(0))},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseClosureLiteral(t *testing.T) {
	got := parseExprString(t, "|a, b| a * b")
	want := expr.Closure{
		Params: []ident.Ident{ident.MustNew("a"), ident.MustNew("b")},
		Body: expr.BinOp{
			Op:    expr.BinMul,
			Left:  expr.Ref{Name: ident.MustNew("a")},
			Right: expr.Ref{Name: ident.MustNew("b")},
		},
	}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseListLiteral(t *testing.T) {
	got := parseExprString(t, "[1, 2, 3]")
	want := expr.List{Elements: []expr.Expression{
		expr.Const{Value: expr.NumberLiteral(big.NewInt(1))},
		expr.Const{Value: expr.NumberLiteral(big.NewInt(2))},
		expr.Const{Value: expr.NumberLiteral(big.NewInt(3))},
	}}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseMapLiteral(t *testing.T) {
	got := parseExprString(t, `<| a: 1, "b c": 2 |>`)
	want := expr.Map{Entries: []expr.MapEntry{
		{Key: "a", Value: expr.Const{Value: expr.NumberLiteral(big.NewInt(1))}},
		{Key: "b c", Value: expr.Const{Value: expr.NumberLiteral(big.NewInt(2))}},
	}}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseScopeTrailingSemiIsNull(t *testing.T) {
	got := parseExprString(t, "{ 1; 2; }")
	want := expr.Scope{Elements: []expr.Expression{
		expr.Const{Value: expr.NumberLiteral(big.NewInt(1))},
		expr.Const{Value: expr.NumberLiteral(big.NewInt(2))},
		expr.Const{Value: expr.NullLiteral},
	}}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseScopeEmptySlot(t *testing.T) {
	got := parseExprString(t, "{ ; 2 }")
	want := expr.Scope{Elements: []expr.Expression{
		expr.Const{Value: expr.NullLiteral},
		expr.Const{Value: expr.NumberLiteral(big.NewInt(2))},
	}}
	if !expr.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseErrorNoPartialTree(t *testing.T) {
	l := lexer.New("1 + ")
	e := ParseExpression(l)
	if e != nil {
		t.Fatalf("expected nil expression on parse error, got %#v", e)
	}
}

func parseValueString(t *testing.T, src string) value.Value {
	t.Helper()
	l := lexer.New(src)
	v := ParseValue(l)
	if v == nil {
		t.Fatalf("parse(%q): unexpected nil", src)
	}
	return v
}

func TestParseValueSignedInt(t *testing.T) {
	got := parseValueString(t, "-5")
	want := value.NewNumber(big.NewInt(-5))
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseValueList(t *testing.T) {
	got := parseValueString(t, "[1, -2, 3]")
	want := value.List{
		value.NewNumber(big.NewInt(1)),
		value.NewNumber(big.NewInt(-2)),
		value.NewNumber(big.NewInt(3)),
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseValueMap(t *testing.T) {
	got := parseValueString(t, `<| a: 1, b: "x" |>`)
	want := value.Map{"a": value.NewNumber(big.NewInt(1)), "b": value.String("x")}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseValueRejectsIdentifier(t *testing.T) {
	l := lexer.New("x")
	v := ParseValue(l)
	if v != nil {
		t.Fatalf("expected nil, value grammar must reject identifiers, got %#v", v)
	}
}
