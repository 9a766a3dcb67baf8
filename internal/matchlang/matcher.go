// Package matchlang implements C9: the standalone matcher sub-language of
// §4.7, used to describe a shape a Value either satisfies or doesn't. A
// Matcher is a small sum type (Any/Exact/Range/List/Map/And/Or/Not), built
// either by hand or by parsing the grammar described in this package's
// parser.go. It never evaluates dices expressions and has no scope of its
// own: Matches is a pure structural predicate over an already-produced
// value.Value.
package matchlang

import "github.com/zannabianca1997/dices/internal/value"

// Matcher is satisfied by every node of the matcher sum type.
type Matcher interface {
	// Matches reports whether v satisfies this matcher, per §4.7.
	Matches(v value.Value) bool
}

// Matches is the free-function form used by callers that just have a
// Matcher and a Value in hand, mirroring the spec's matches(m, v) notation.
func Matches(m Matcher, v value.Value) bool { return m.Matches(v) }

// Any matches every value.
type Any struct{}

func (Any) Matches(value.Value) bool { return true }

// Exact matches a value structurally equal to Value.
type Exact struct{ Value value.Value }

func (e Exact) Matches(v value.Value) bool { return v.Equal(e.Value) }

// Range matches any value v with Start <= v < End, or Start <= v <= End
// when Inclusive. Comparison uses Value.Compare, so a Range can span
// values of different Kinds exactly as the total order defines.
type Range struct {
	Start, End value.Value
	Inclusive  bool
}

func (r Range) Matches(v value.Value) bool {
	if v.Compare(r.Start) < 0 {
		return false
	}
	if r.Inclusive {
		return v.Compare(r.End) <= 0
	}
	return v.Compare(r.End) < 0
}

// List matches a value.List of the same length where every element
// matches the corresponding sub-matcher.
type List struct{ Elements []Matcher }

func (l List) Matches(v value.Value) bool {
	lv, ok := v.(value.List)
	if !ok || len(lv) != len(l.Elements) {
		return false
	}
	for i, sub := range l.Elements {
		if !sub.Matches(lv[i]) {
			return false
		}
	}
	return true
}

// Map matches a value.Map of the same size where every entry named in
// ByName is present and matches its sub-matcher. Size equality plus full
// coverage of ByName together force the key sets to coincide exactly.
type Map struct{ ByName map[string]Matcher }

func (m Map) Matches(v value.Value) bool {
	mv, ok := v.(value.Map)
	if !ok || len(mv) != len(m.ByName) {
		return false
	}
	for k, sub := range m.ByName {
		val, present := mv[k]
		if !present || !sub.Matches(val) {
			return false
		}
	}
	return true
}

// And matches when both A and B match.
type And struct{ A, B Matcher }

func (a And) Matches(v value.Value) bool { return a.A.Matches(v) && a.B.Matches(v) }

// Or matches when either A or B matches.
type Or struct{ A, B Matcher }

func (o Or) Matches(v value.Value) bool { return o.A.Matches(v) || o.B.Matches(v) }

// Not inverts Inner.
type Not struct{ Inner Matcher }

func (n Not) Matches(v value.Value) bool { return !n.Inner.Matches(v) }
