// Package sexp provides the S-expression value used to project condition and
// expression trees into text.
//
// A Sexp is either an atom (a bare token) or a list of sub-values. Lists
// render as a parenthesized, space-separated sequence:
//
//	s := sexp.List(sexp.Atom("and"), sexp.Atom("true"), sexp.Atom("false"))
//	s.String() // "(and true false)"
//
// There is no parser; the format is output-only.
package sexp

import (
	"encoding/json"
	"strings"
)

// Marshaler is implemented by values that can project themselves into a Sexp.
type Marshaler interface {
	Sexp() Sexp
}

// Sexp is an atom or a list. The zero value is the empty atom.
type Sexp struct {
	token string
	items []Sexp
	list  bool
}

// Atom creates an atom holding tok.
func Atom(tok string) Sexp {
	return Sexp{token: tok}
}

// List creates a list of the given items.
// The items slice is copied.
func List(items ...Sexp) Sexp {
	cp := make([]Sexp, len(items))
	copy(cp, items)
	return Sexp{items: cp, list: true}
}

// Tagged creates a list whose first element is the atom op.
func Tagged(op string, args ...Sexp) Sexp {
	items := make([]Sexp, 0, len(args)+1)
	items = append(items, Atom(op))
	items = append(items, args...)
	return Sexp{items: items, list: true}
}

// IsAtom reports whether s is an atom.
func (s Sexp) IsAtom() bool {
	return !s.list
}

// Token returns the atom token, or "" for lists.
func (s Sexp) Token() string {
	return s.token
}

// Items returns a copy of the list items, or nil for atoms.
func (s Sexp) Items() []Sexp {
	if !s.list {
		return nil
	}
	cp := make([]Sexp, len(s.items))
	copy(cp, s.items)
	return cp
}

// Len returns the number of list items, or 0 for atoms.
func (s Sexp) Len() int {
	return len(s.items)
}

// String renders s in textual form.
func (s Sexp) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Sexp) write(b *strings.Builder) {
	if !s.list {
		b.WriteString(s.token)
		return
	}
	b.WriteByte('(')
	for i, item := range s.items {
		if i > 0 {
			b.WriteByte(' ')
		}
		item.write(b)
	}
	b.WriteByte(')')
}

// Equal reports whether a and b have the same structure and tokens.
func Equal(a, b Sexp) bool {
	if a.list != b.list {
		return false
	}
	if !a.list {
		return a.token == b.token
	}
	if len(a.items) != len(b.items) {
		return false
	}
	for i := range a.items {
		if !Equal(a.items[i], b.items[i]) {
			return false
		}
	}
	return true
}

// native converts s into strings and nested slices for encoders.
func (s Sexp) native() any {
	if !s.list {
		return s.token
	}
	out := make([]any, len(s.items))
	for i, item := range s.items {
		out[i] = item.native()
	}
	return out
}

// MarshalJSON encodes atoms as strings and lists as arrays.
func (s Sexp) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.native())
}

// MarshalYAML encodes atoms as strings and lists as sequences.
func (s Sexp) MarshalYAML() (any, error) {
	return s.native(), nil
}
