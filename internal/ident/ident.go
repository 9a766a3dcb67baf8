// Package ident provides the validated identifier type shared by the lexer,
// parser, evaluator and capture analyzer.
package ident

import (
	"fmt"
)

// Ident is a variable or closure-parameter name that has already been
// validated against the grammar `(?:[A-Za-z]|_+[A-Za-z0-9])[_A-Za-z0-9]*`
// and checked against the keyword set. The zero value is not a valid Ident;
// always construct one via New or MustNew.
type Ident struct {
	name string
}

// Keywords is the set of reserved words that cannot be used as identifiers.
// It is exported so the lexer can classify a scanned word without going
// through New and discarding the error.
var Keywords = map[string]struct{}{
	"d":   {},
	"kh":  {},
	"kl":  {},
	"rh":  {},
	"rl":  {},
	"let": {},
}

// IsKeyword reports whether name is a reserved keyword.
func IsKeyword(name string) bool {
	_, ok := Keywords[name]
	return ok
}

// New validates name and wraps it in an Ident. It fails if name is empty,
// does not match the identifier grammar, or is a reserved keyword.
func New(name string) (Ident, error) {
	if name == "" {
		return Ident{}, fmt.Errorf("ident: empty identifier")
	}
	if IsKeyword(name) {
		return Ident{}, fmt.Errorf("ident: %q is a reserved keyword", name)
	}
	if !valid(name) {
		return Ident{}, fmt.Errorf("ident: %q is not a valid identifier", name)
	}
	return Ident{name: name}, nil
}

// MustNew is like New but panics on an invalid identifier. It exists for
// constructing identifiers from literal Go strings (intrinsic names, tests).
func MustNew(name string) Ident {
	id, err := New(name)
	if err != nil {
		panic(err)
	}
	return id
}

// valid checks the grammar (?:[A-Za-z]|_+[A-Za-z0-9])[_A-Za-z0-9]*.
func valid(name string) bool {
	runes := []rune(name)
	i := 0

	// First "group": either a single letter, or one-or-more underscores
	// followed by a letter or digit.
	if isLetter(runes[0]) {
		i = 1
	} else if runes[0] == '_' {
		j := 0
		for j < len(runes) && runes[j] == '_' {
			j++
		}
		if j == len(runes) || !isLetterOrDigit(runes[j]) {
			return false
		}
		i = j + 1
	} else {
		return false
	}

	for ; i < len(runes); i++ {
		if runes[i] != '_' && !isLetterOrDigit(runes[i]) {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isLetterOrDigit(r rune) bool {
	return isLetter(r) || (r >= '0' && r <= '9')
}

// String returns the identifier's text.
func (id Ident) String() string {
	return id.name
}

// IsZero reports whether id is the zero value (never produced by New).
func (id Ident) IsZero() bool {
	return id.name == ""
}

// Equal reports whether two identifiers have the same text.
func (id Ident) Equal(other Ident) bool {
	return id.name == other.name
}

// Less gives Ident a total order (byte-wise on the underlying text), used
// when sorting identifier sets deterministically (e.g. capture reporting).
func (id Ident) Less(other Ident) bool {
	return id.name < other.name
}
