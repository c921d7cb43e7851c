/*
Package condeval evaluates boolean conditions over numeric expressions.

# Overview

A Condition is an immutable tree whose leaves are boolean literals or
comparisons between two expressions, and whose inner nodes are the
connectives not, and, or. Conditions are generic over the element type T
(any integer or floating-point type) and over any expression that
implements Expression[T].

# Condition Kinds

	true, false          literals
	not c                negation
	and a b, or a b      connectives over two conditions
	== < > <= >= x y     comparisons of two expression values

# Evaluation

	cond := condeval.Greater(numexpr.Var[float64](0), numexpr.Const(0.0))

	ok, err := cond.Evaluate([]float64{123}) // true, nil
	ok, err = cond.Evaluate([]float64{-1.4}) // false, nil
	ok, err = cond.Evaluate(nil)             // false, invalid variable

Evaluation is eager: both operands of every binary node are evaluated,
left first. Errors from expressions are returned as-is; the condition layer
adds no error kinds of its own (see package errors).

# S-Expressions

Every condition projects into the shared sexp format:

	condeval.And(condeval.True[int](), condeval.False[int]()).String()
	// (and true false)

Operator tokens are true, false, not, and, or, ==, <, >, <=, >=. Expressions
supply their own projection by implementing sexp.Marshaler.

# Equality

Condition.Equal is structural: And(True, False) and False evaluate the same
but are not Equal.
*/
package condeval
