package expr

import "reflect"

// Equal reports whether a and b are structurally identical expression
// trees. Expression nodes are plain immutable data (no funcs, no cycles),
// so reflect.DeepEqual is a safe and exact structural comparison; it is
// used by the evaluator's closure-determinism checks and by tests.
func Equal(a, b Expression) bool {
	return reflect.DeepEqual(a, b)
}

// Equal reports whether two literals carry the same value.
func (l Literal) Equal(other Literal) bool {
	if l.Kind != other.Kind {
		return false
	}
	switch l.Kind {
	case LiteralBool:
		return l.Bool == other.Bool
	case LiteralNumber:
		if l.Num == nil || other.Num == nil {
			return l.Num == other.Num
		}
		return l.Num.Cmp(other.Num) == 0
	case LiteralString:
		return l.Str == other.Str
	default:
		return true
	}
}
