// Package value implements the runtime value model (C1): a tagged sum type
// with a total order, structural equality and canonical display, plus the
// arbitrary-precision Number representation.
package value

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/zannabianca1997/dices/internal/expr"
	"github.com/zannabianca1997/dices/internal/ident"
)

// Kind tags the alternative held by a Value. The ordinal order is the
// ordering used to compare values of different kinds: Null < Bool < Number
// < String < List < Map < Intrinsic < Closure.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
	KindIntrinsic
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindIntrinsic:
		return "Intrinsic"
	case KindClosure:
		return "Closure"
	default:
		return "Unknown"
	}
}

// Value is the interface implemented by every runtime value alternative.
// It is not meant to be implemented outside this package.
type Value interface {
	// Kind returns the tag of the value.
	Kind() Kind
	// String returns the canonical textual form (§6); Intrinsic and
	// Closure return a descriptive, non-parseable form instead.
	String() string
	// Equal reports structural equality.
	Equal(Value) bool
	// Compare implements the total order described by Kind's ordinal and,
	// for equal kinds, the content order of each alternative. It returns a
	// negative number, zero, or a positive number as v is less than,
	// equal to, or greater than other.
	Compare(other Value) int
	// Clone returns a deep, independent copy.
	Clone() Value
}

// Null is the sole value of the Null alternative.
type Null struct{}

// NullValue is the singleton Null value.
var NullValue = Null{}

func (Null) Kind() Kind            { return KindNull }
func (Null) String() string        { return "null" }
func (Null) Clone() Value          { return NullValue }
func (Null) Equal(o Value) bool    { return o.Kind() == KindNull }
func (Null) Compare(o Value) int   { return compareKind(KindNull, o) }

// Bool wraps a boolean value.
type Bool bool

func (b Bool) Kind() Kind     { return KindBool }
func (b Bool) Clone() Value   { return b }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && b == ob
}
func (b Bool) Compare(o Value) int {
	if c := compareKind(KindBool, o); c != 0 || o.Kind() != KindBool {
		return c
	}
	ob := o.(Bool)
	switch {
	case bool(b) == bool(ob):
		return 0
	case !bool(b) && bool(ob):
		return -1
	default:
		return 1
	}
}

// Number is an arbitrary-precision signed integer.
type Number struct {
	v *big.Int
}

// NewNumber wraps n (not retained by the caller afterward).
func NewNumber(n *big.Int) Number {
	if n == nil {
		n = new(big.Int)
	}
	return Number{v: n}
}

// NumberFromInt64 builds a Number from a machine integer.
func NumberFromInt64(n int64) Number {
	return Number{v: big.NewInt(n)}
}

// Int returns the underlying arbitrary-precision integer. The returned
// pointer must not be mutated by the caller.
func (n Number) Int() *big.Int {
	if n.v == nil {
		return new(big.Int)
	}
	return n.v
}

// Int64 returns the value as an int64 and true when it fits; otherwise it
// returns 0 and false.
func (n Number) Int64() (int64, bool) {
	if !n.Int().IsInt64() {
		return 0, false
	}
	return n.Int().Int64(), true
}

func (n Number) Kind() Kind     { return KindNumber }
func (n Number) String() string { return n.Int().String() }
func (n Number) Clone() Value   { return Number{v: new(big.Int).Set(n.Int())} }
func (n Number) Equal(o Value) bool {
	on, ok := o.(Number)
	return ok && n.Int().Cmp(on.Int()) == 0
}
func (n Number) Compare(o Value) int {
	if c := compareKind(KindNumber, o); c != 0 || o.Kind() != KindNumber {
		return c
	}
	return n.Int().Cmp(o.(Number).Int())
}

// String is an immutable UTF-8 string value.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) Clone() Value   { return s }
func (s String) String() string { return quoteString(string(s)) }
func (s String) Equal(o Value) bool {
	os, ok := o.(String)
	return ok && s == os
}
func (s String) Compare(o Value) int {
	if c := compareKind(KindString, o); c != 0 || o.Kind() != KindString {
		return c
	}
	return strings.Compare(string(s), string(o.(String)))
}

// List is an ordered sequence of values.
type List []Value

func (l List) Kind() Kind   { return KindList }
func (l List) Clone() Value {
	out := make(List, len(l))
	for i, v := range l {
		out[i] = v.Clone()
	}
	return out
}
func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
func (l List) Equal(o Value) bool {
	ol, ok := o.(List)
	if !ok || len(l) != len(ol) {
		return false
	}
	for i := range l {
		if !l[i].Equal(ol[i]) {
			return false
		}
	}
	return true
}
func (l List) Compare(o Value) int {
	if c := compareKind(KindList, o); c != 0 || o.Kind() != KindList {
		return c
	}
	ol := o.(List)
	for i := 0; i < len(l) && i < len(ol); i++ {
		if c := l[i].Compare(ol[i]); c != 0 {
			return c
		}
	}
	return intCompare(len(l), len(ol))
}

// Map is an ordered mapping from String to Value; iteration order is
// always sorted by key, so the underlying representation does not need to
// track insertion order.
type Map map[string]Value

func (m Map) Kind() Kind { return KindMap }
func (m Map) Clone() Value {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// SortedKeys returns the map's keys in the mandated display/iteration
// order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Map) String() string {
	var sb strings.Builder
	sb.WriteString("<|")
	for i, k := range m.SortedKeys() {
		if i > 0 {
			sb.WriteString(", ")
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(formatMapKey(k))
		sb.WriteString(": ")
		sb.WriteString(m[k].String())
	}
	if len(m) > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString("|>")
	return sb.String()
}

func formatMapKey(k string) string {
	if id, err := ident.New(k); err == nil {
		return id.String()
	}
	return quoteString(k)
}

func (m Map) Equal(o Value) bool {
	om, ok := o.(Map)
	if !ok || len(m) != len(om) {
		return false
	}
	for k, v := range m {
		ov, present := om[k]
		if !present || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (m Map) Compare(o Value) int {
	if c := compareKind(KindMap, o); c != 0 || o.Kind() != KindMap {
		return c
	}
	om := o.(Map)
	keys, okeys := m.SortedKeys(), om.SortedKeys()
	for i := 0; i < len(keys) && i < len(okeys); i++ {
		if c := strings.Compare(keys[i], okeys[i]); c != 0 {
			return c
		}
		if c := m[keys[i]].Compare(om[okeys[i]]); c != 0 {
			return c
		}
	}
	return intCompare(len(keys), len(okeys))
}

// IntrinsicHandle is implemented by the intrinsics package so that value
// does not need to import it (avoiding a cycle: intrinsics dispatch
// operates on Values). Call receives already-evaluated arguments and an
// opaque env handle; env is a scope.Env in practice, but is typed as `any`
// here so that value never needs to import the scope package (which itself
// depends on value for its variable frames). This is the Go-idiomatic
// stand-in for the specification's "generics over injected intrinsics"
// design note: rather than making Value itself parametric, the one value
// alternative that needs host-specific behavior carries an escape hatch
// typed as `any`, which intrinsic implementations type-assert back to
// scope.Env.
type IntrinsicHandle interface {
	Name() string
	String() string
	Equal(IntrinsicHandle) bool
	// Ordinal gives intrinsics a total, stable order for Value.Compare;
	// it need not be meaningful beyond totality.
	Ordinal() int
	Call(args []Value, env any) (Value, error)
}

// Intrinsic is a handle to a built-in or host-injected operation.
type Intrinsic struct {
	Handle IntrinsicHandle
}

func (i Intrinsic) Kind() Kind     { return KindIntrinsic }
func (i Intrinsic) Clone() Value   { return i }
func (i Intrinsic) String() string { return i.Handle.String() }
func (i Intrinsic) Equal(o Value) bool {
	oi, ok := o.(Intrinsic)
	return ok && i.Handle.Equal(oi.Handle)
}
func (i Intrinsic) Compare(o Value) int {
	if c := compareKind(KindIntrinsic, o); c != 0 || o.Kind() != KindIntrinsic {
		return c
	}
	return intCompare(i.Handle.Ordinal(), o.(Intrinsic).Handle.Ordinal())
}

// Closure is an immutable closure value: its capture map is frozen at
// construction (a copy of the captured entries, not references into the
// defining scope).
type Closure struct {
	Params   []ident.Ident
	Captures Map
	Body     expr.Expression
}

func (c Closure) Kind() Kind   { return KindClosure }
func (c Closure) Clone() Value { return c } // immutable after construction
func (c Closure) String() string {
	return "<closure with " + itoa(len(c.Params)) + " parameters (captured " + itoa(len(c.Captures)) + " values)>"
}
func (c Closure) Equal(o Value) bool {
	oc, ok := o.(Closure)
	if !ok || len(c.Params) != len(oc.Params) {
		return false
	}
	for i := range c.Params {
		if !c.Params[i].Equal(oc.Params[i]) {
			return false
		}
	}
	if !Map(c.Captures).Equal(Map(oc.Captures)) {
		return false
	}
	return expr.Equal(c.Body, oc.Body)
}
func (c Closure) Compare(o Value) int {
	if cm := compareKind(KindClosure, o); cm != 0 || o.Kind() != KindClosure {
		return cm
	}
	oc := o.(Closure)
	if d := intCompare(len(c.Params), len(oc.Params)); d != 0 {
		return d
	}
	if d := intCompare(len(c.Captures), len(oc.Captures)); d != 0 {
		return d
	}
	return strings.Compare(c.String(), oc.String())
}

func compareKind(k Kind, o Value) int {
	return intCompare(int(k), int(o.Kind()))
}

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
