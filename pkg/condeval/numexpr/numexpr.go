// Package numexpr is a small arithmetic expression layer for condeval.
//
// Nodes are built with the constructor functions and are immutable.
// Each node implements condeval.Expression[T] and sexp.Marshaler:
//
//	e := numexpr.Add(numexpr.Var[float64](0), numexpr.Const(1.5))
//	v, err := e.Evaluate([]float64{2}) // 3.5, nil
//	e.(sexp.Marshaler).Sexp().String() // (+ $0 1.5)
//
// Arithmetic failures return the bare errors.DivisionByZero and
// errors.InvalidOperation values. An out-of-range variable returns a
// *errors.VariableError carrying the slot and binding length, which unwraps
// to errors.InvalidVariable; match it with errors.Is or errors.Classify
// rather than ==.
package numexpr

import (
	"fmt"
	"strconv"

	"github.com/randalmurphal/condeval/pkg/condeval"
	cerrors "github.com/randalmurphal/condeval/pkg/condeval/errors"
	"github.com/randalmurphal/condeval/pkg/condeval/sexp"
)

// Const returns an expression that always evaluates to v.
func Const[T condeval.Element](v T) condeval.Expression[T] {
	return &constExpr[T]{value: v}
}

// Var returns an expression that evaluates to binding[slot].
// Out-of-range slots fail at evaluation time, not here, with a
// *errors.VariableError that satisfies errors.Is(err, errors.InvalidVariable).
func Var[T condeval.Element](slot int) condeval.Expression[T] {
	return &varExpr[T]{slot: slot}
}

// Neg returns the negation of x.
func Neg[T condeval.Element](x condeval.Expression[T]) condeval.Expression[T] {
	mustOperand(x)
	return &negExpr[T]{x: x}
}

// Add returns x + y.
func Add[T condeval.Element](x, y condeval.Expression[T]) condeval.Expression[T] {
	return binary(opAdd, x, y)
}

// Sub returns x - y.
func Sub[T condeval.Element](x, y condeval.Expression[T]) condeval.Expression[T] {
	return binary(opSub, x, y)
}

// Mul returns x * y.
func Mul[T condeval.Element](x, y condeval.Expression[T]) condeval.Expression[T] {
	return binary(opMul, x, y)
}

// Div returns x / y. Division by zero fails with errors.DivisionByZero.
func Div[T condeval.Element](x, y condeval.Expression[T]) condeval.Expression[T] {
	return binary(opDiv, x, y)
}

// Rem returns the remainder x % y. It is only defined for integer elements;
// floating-point elements fail with errors.InvalidOperation.
func Rem[T condeval.Element](x, y condeval.Expression[T]) condeval.Expression[T] {
	return binary(opRem, x, y)
}

type constExpr[T condeval.Element] struct {
	value T
}

func (e *constExpr[T]) Evaluate([]T) (T, error) {
	return e.value, nil
}

func (e *constExpr[T]) Sexp() sexp.Sexp {
	return sexp.Atom(formatElement(e.value))
}

type varExpr[T condeval.Element] struct {
	slot int
}

func (e *varExpr[T]) Evaluate(binding []T) (T, error) {
	if e.slot < 0 || e.slot >= len(binding) {
		return 0, &cerrors.VariableError{Slot: e.slot, Bound: len(binding)}
	}
	return binding[e.slot], nil
}

func (e *varExpr[T]) Sexp() sexp.Sexp {
	return sexp.Atom("$" + strconv.Itoa(e.slot))
}

type negExpr[T condeval.Element] struct {
	x condeval.Expression[T]
}

func (e *negExpr[T]) Evaluate(binding []T) (T, error) {
	v, err := e.x.Evaluate(binding)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (e *negExpr[T]) Sexp() sexp.Sexp {
	return sexp.Tagged("neg", operandSexp(e.x))
}

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
	opRem
)

var binaryTokens = [...]string{
	opAdd: "+",
	opSub: "-",
	opMul: "*",
	opDiv: "/",
	opRem: "%",
}

type binaryExpr[T condeval.Element] struct {
	op   binaryOp
	x, y condeval.Expression[T]
}

func binary[T condeval.Element](op binaryOp, x, y condeval.Expression[T]) condeval.Expression[T] {
	mustOperand(x)
	mustOperand(y)
	return &binaryExpr[T]{op: op, x: x, y: y}
}

// Evaluate evaluates x then y; an error from x is returned before y runs.
func (e *binaryExpr[T]) Evaluate(binding []T) (T, error) {
	x, err := e.x.Evaluate(binding)
	if err != nil {
		return 0, err
	}
	y, err := e.y.Evaluate(binding)
	if err != nil {
		return 0, err
	}

	switch e.op {
	case opAdd:
		return x + y, nil
	case opSub:
		return x - y, nil
	case opMul:
		return x * y, nil
	case opDiv:
		if y == 0 {
			return 0, cerrors.DivisionByZero
		}
		return x / y, nil
	case opRem:
		return remainder(x, y)
	default:
		return 0, cerrors.InvalidOperation
	}
}

func (e *binaryExpr[T]) Sexp() sexp.Sexp {
	return sexp.Tagged(binaryTokens[e.op], operandSexp(e.x), operandSexp(e.y))
}

func remainder[T condeval.Element](x, y T) (T, error) {
	if isFloat[T]() {
		return 0, cerrors.InvalidOperation
	}
	if y == 0 {
		return 0, cerrors.DivisionByZero
	}
	return integerRem(x, y), nil
}

// integerRem computes x % y for integer-valued T without the % operator,
// which is not defined on the Element type set.
func integerRem[T condeval.Element](x, y T) T {
	return x - (x/y)*y
}

// isFloat reports whether T is a floating-point type.
func isFloat[T condeval.Element]() bool {
	one := T(1)
	return one/2 != 0
}

func operandSexp[T condeval.Element](x condeval.Expression[T]) sexp.Sexp {
	if m, ok := x.(sexp.Marshaler); ok {
		return m.Sexp()
	}
	return sexp.Atom(fmt.Sprint(x))
}

func mustOperand[T condeval.Element](x condeval.Expression[T]) {
	if x == nil {
		panic("numexpr: operand cannot be nil")
	}
}

func formatElement[T condeval.Element](v T) string {
	switch n := any(v).(type) {
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	if isFloat[T]() {
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	}
	if v < 0 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}
