package condeval

import (
	"fmt"

	"github.com/randalmurphal/condeval/pkg/condeval/sexp"
)

// Sexp projects c into an S-expression.
//
// Literals become the atoms true and false; every other node becomes a list
// headed by its operator token. Expressions that implement sexp.Marshaler
// project themselves; any other expression is rendered as an atom of its
// fmt.Sprint form. c must not be nil.
func (c *Condition[T]) Sexp() sexp.Sexp {
	switch c.op {
	case OpTrue, OpFalse:
		return sexp.Atom(c.op.String())
	case OpNot:
		return sexp.Tagged(c.op.String(), c.left.Sexp())
	case OpAnd, OpOr:
		return sexp.Tagged(c.op.String(), c.left.Sexp(), c.right.Sexp())
	default:
		return sexp.Tagged(c.op.String(), expressionSexp(c.lhs), expressionSexp(c.rhs))
	}
}

// ToSexp is a convenience wrapper for c.Sexp().
func ToSexp[T Element](c *Condition[T]) sexp.Sexp {
	return c.Sexp()
}

func expressionSexp[T Element](e Expression[T]) sexp.Sexp {
	if m, ok := e.(sexp.Marshaler); ok {
		return m.Sexp()
	}
	return sexp.Atom(fmt.Sprint(e))
}
