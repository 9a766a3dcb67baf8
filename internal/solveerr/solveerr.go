// Package solveerr defines SolveError (§7), the single tagged error type
// returned by every fallible evaluator operation.
package solveerr

import "fmt"

// Code tags the alternative a SolveError carries.
type Code uint8

const (
	// Type errors at operators.
	LHSIsNotANumber Code = iota
	RHSIsNotANumber
	LHSIsNotAList
	RHSIsNotAList
	MultNeedAScalar
	CannotIndex
	MapIsIndexedByStrings
	StringIsIndexedByNumbers
	ListIsIndexedByNumbers
	CannotMakeANumber

	// Bounds.
	StringIndexOutOfRange
	ListIndexOutOfRange
	MissingKey
	DivisionByZero
	Overflow // never constructed: Numbers are arbitrary precision (see DESIGN.md)
	FacesMustBePositive
	NegativeRepeats
	FilterNeedPositive

	// Name errors.
	InvalidReference
	NotCallable
	WrongNumberOfParams

	// Closure analysis.
	ClosureCannotCalculateCaptures

	// Intrinsic errors.
	IntrinsicError
)

var codeNames = map[Code]string{
	LHSIsNotANumber: "LHSIsNotANumber", RHSIsNotANumber: "RHSIsNotANumber",
	LHSIsNotAList: "LHSIsNotAList", RHSIsNotAList: "RHSIsNotAList",
	MultNeedAScalar: "MultNeedAScalar", CannotIndex: "CannotIndex",
	MapIsIndexedByStrings: "MapIsIndexedByStrings", StringIsIndexedByNumbers: "StringIsIndexedByNumbers",
	ListIsIndexedByNumbers: "ListIsIndexedByNumbers", CannotMakeANumber: "CannotMakeANumber",
	StringIndexOutOfRange: "StringIndexOutOfRange", ListIndexOutOfRange: "ListIndexOutOfRange",
	MissingKey: "MissingKey", DivisionByZero: "DivisionByZero", Overflow: "Overflow",
	FacesMustBePositive: "FacesMustBePositive", NegativeRepeats: "NegativeRepeats",
	FilterNeedPositive: "FilterNeedPositive", InvalidReference: "InvalidReference",
	NotCallable: "NotCallable", WrongNumberOfParams: "WrongNumberOfParams",
	ClosureCannotCalculateCaptures: "ClosureCannotCalculateCaptures",
	IntrinsicError:                 "IntrinsicError",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UnknownSolveError"
}

// SolveError is the single terminating-failure type for the evaluator.
// Detail carries a code-specific human-readable message (for
// ClosureCannotCalculateCaptures, the reason); Name holds the name or map
// key relevant to name and missing-key errors, Index the index for bounds
// errors; Inner holds the wrapped error for IntrinsicError.
type SolveError struct {
	Code   Code
	Detail string
	Name   string
	Index  int
	Inner  error
}

func (e *SolveError) Error() string {
	switch e.Code {
	case InvalidReference:
		return fmt.Sprintf("invalid reference: %q is not bound", e.Name)
	case MissingKey:
		return fmt.Sprintf("missing key: %q", e.Name)
	case IntrinsicError:
		return fmt.Sprintf("intrinsic error: %s", formatInner(e.Inner, 0))
	case ClosureCannotCalculateCaptures:
		return fmt.Sprintf("cannot calculate closure captures: %s", e.Detail)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Code, e.Detail)
		}
		return e.Code.String()
	}
}

func (e *SolveError) Unwrap() error { return e.Inner }

// maxIntrinsicErrorDepth bounds the recursion when formatting a chain of
// nested intrinsic errors (§7: "must guard against unbounded chains by
// limiting recursion depth in the display path").
const maxIntrinsicErrorDepth = 8

func formatInner(err error, depth int) string {
	if err == nil {
		return "<nil>"
	}
	if depth >= maxIntrinsicErrorDepth {
		return "..."
	}
	if se, ok := err.(*SolveError); ok && se.Code == IntrinsicError {
		return fmt.Sprintf("intrinsic error: %s", formatInner(se.Inner, depth+1))
	}
	return err.Error()
}

// New builds a SolveError with a plain detail message.
func New(code Code, detail string) *SolveError {
	return &SolveError{Code: code, Detail: detail}
}

// NewRef builds an InvalidReference error.
func NewRef(name string) *SolveError {
	return &SolveError{Code: InvalidReference, Name: name}
}

// NewKey builds a MissingKey error.
func NewKey(key string) *SolveError {
	return &SolveError{Code: MissingKey, Name: key}
}

// NewIndex builds a bounds error (code should be one of the *IndexOutOfRange
// codes) carrying the offending index.
func NewIndex(code Code, index int) *SolveError {
	return &SolveError{Code: code, Index: index, Detail: fmt.Sprintf("index %d out of range", index)}
}

// NewIntrinsic wraps a host-returned or nested intrinsic error.
func NewIntrinsic(inner error) *SolveError {
	return &SolveError{Code: IntrinsicError, Inner: inner}
}

// NewClosureCaptures builds a ClosureCannotCalculateCaptures error.
func NewClosureCaptures(reason string) *SolveError {
	return &SolveError{Code: ClosureCannotCalculateCaptures, Detail: reason}
}
