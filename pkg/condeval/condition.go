package condeval

import (
	"reflect"

	"golang.org/x/exp/constraints"
)

// Element is the scalar type conditions and expressions operate over.
type Element interface {
	constraints.Integer | constraints.Float
}

// Expression is an element-valued tree that conditions compare.
// The binding is indexed by variable slot; its layout is owned by the
// expression implementation.
type Expression[T Element] interface {
	Evaluate(binding []T) (T, error)
}

// Op identifies the kind of a condition node.
type Op int

const (
	// OpTrue is the true literal. It is the zero Op.
	OpTrue Op = iota
	// OpFalse is the false literal.
	OpFalse
	// OpNot negates one condition.
	OpNot
	// OpAnd is the conjunction of two conditions.
	OpAnd
	// OpOr is the disjunction of two conditions.
	OpOr
	// OpEqual compares two expressions with ==.
	OpEqual
	// OpLess compares two expressions with <.
	OpLess
	// OpGreater compares two expressions with >.
	OpGreater
	// OpLessEqual compares two expressions with <=.
	OpLessEqual
	// OpGreaterEqual compares two expressions with >=.
	OpGreaterEqual
)

// String returns the operator token used in S-expressions.
func (o Op) String() string {
	switch o {
	case OpTrue:
		return "true"
	case OpFalse:
		return "false"
	case OpNot:
		return "not"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpEqual:
		return "=="
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpLessEqual:
		return "<="
	case OpGreaterEqual:
		return ">="
	default:
		return "unknown"
	}
}

// IsComparison reports whether o compares two expressions.
func (o Op) IsComparison() bool {
	return o >= OpEqual && o <= OpGreaterEqual
}

// IsLiteral reports whether o is true or false.
func (o Op) IsLiteral() bool {
	return o == OpTrue || o == OpFalse
}

// Condition is an immutable boolean formula over expressions of element T.
//
// Each node owns its children; trees are finite and acyclic by construction.
// The zero value is the true literal. Conditions are safe to evaluate from
// multiple goroutines.
//
// Example:
//
//	cond := condeval.And(
//	    condeval.Greater(numexpr.Var[float64](0), numexpr.Const(0.0)),
//	    condeval.Not(condeval.Equal(numexpr.Var[float64](1), numexpr.Const(1.0))),
//	)
//	ok, err := cond.Evaluate([]float64{3, 2})
type Condition[T Element] struct {
	op Op

	// set for OpNot (left only), OpAnd and OpOr
	left, right *Condition[T]

	// set for comparisons
	lhs, rhs Expression[T]
}

// True returns the true literal.
func True[T Element]() *Condition[T] {
	return &Condition[T]{op: OpTrue}
}

// False returns the false literal.
func False[T Element]() *Condition[T] {
	return &Condition[T]{op: OpFalse}
}

// Not returns the negation of c.
// Panics if c is nil.
func Not[T Element](c *Condition[T]) *Condition[T] {
	mustCondition(c)
	return &Condition[T]{op: OpNot, left: c}
}

// And returns the conjunction of a and b.
// Panics if either is nil.
func And[T Element](a, b *Condition[T]) *Condition[T] {
	return connective(OpAnd, a, b)
}

// Or returns the disjunction of a and b.
// Panics if either is nil.
func Or[T Element](a, b *Condition[T]) *Condition[T] {
	return connective(OpOr, a, b)
}

// Equal returns a condition that holds when x == y.
// Panics if either expression is nil.
func Equal[T Element](x, y Expression[T]) *Condition[T] {
	return comparison(OpEqual, x, y)
}

// Less returns a condition that holds when x < y.
func Less[T Element](x, y Expression[T]) *Condition[T] {
	return comparison(OpLess, x, y)
}

// Greater returns a condition that holds when x > y.
func Greater[T Element](x, y Expression[T]) *Condition[T] {
	return comparison(OpGreater, x, y)
}

// LessEqual returns a condition that holds when x <= y.
func LessEqual[T Element](x, y Expression[T]) *Condition[T] {
	return comparison(OpLessEqual, x, y)
}

// GreaterEqual returns a condition that holds when x >= y.
func GreaterEqual[T Element](x, y Expression[T]) *Condition[T] {
	return comparison(OpGreaterEqual, x, y)
}

func connective[T Element](op Op, a, b *Condition[T]) *Condition[T] {
	mustCondition(a)
	mustCondition(b)
	return &Condition[T]{op: op, left: a, right: b}
}

func comparison[T Element](op Op, x, y Expression[T]) *Condition[T] {
	if x == nil || y == nil {
		panic("condeval: comparison operand cannot be nil")
	}
	return &Condition[T]{op: op, lhs: x, rhs: y}
}

func mustCondition[T Element](c *Condition[T]) {
	if c == nil {
		panic("condeval: child condition cannot be nil")
	}
}

// Op returns the node kind.
func (c *Condition[T]) Op() Op {
	return c.op
}

// Conditions returns the child conditions: one for OpNot, two for OpAnd
// and OpOr, none otherwise.
func (c *Condition[T]) Conditions() []*Condition[T] {
	switch c.op {
	case OpNot:
		return []*Condition[T]{c.left}
	case OpAnd, OpOr:
		return []*Condition[T]{c.left, c.right}
	default:
		return nil
	}
}

// Expressions returns the compared operands for comparison nodes, nil otherwise.
func (c *Condition[T]) Expressions() (Expression[T], Expression[T]) {
	return c.lhs, c.rhs
}

// Equal reports structural equality: same kinds and recursively equal
// children. Expressions are compared with their own Equal method when they
// have one (either Equal(Expression[T]) bool or Equal(U) bool taking their
// own type), and with reflect.DeepEqual otherwise.
//
// And(True, False) is not Equal to False even though both evaluate to false.
func (c *Condition[T]) Equal(other *Condition[T]) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.op != other.op {
		return false
	}
	switch c.op {
	case OpTrue, OpFalse:
		return true
	case OpNot:
		return c.left.Equal(other.left)
	case OpAnd, OpOr:
		return c.left.Equal(other.left) && c.right.Equal(other.right)
	default:
		return expressionsEqual(c.lhs, other.lhs) && expressionsEqual(c.rhs, other.rhs)
	}
}

// expressionEqualer is implemented by expressions that compare against any
// other expression of the same element type.
type expressionEqualer[T Element] interface {
	Equal(Expression[T]) bool
}

func expressionsEqual[T Element](a, b Expression[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(expressionEqualer[T]); ok {
		return eq.Equal(b)
	}

	// Equal(U) bool where b is assignable to U, usually U is a's own type.
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if m := av.MethodByName("Equal"); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 1 && mt.NumOut() == 1 &&
			mt.Out(0).Kind() == reflect.Bool && bv.Type().AssignableTo(mt.In(0)) {
			return m.Call([]reflect.Value{bv})[0].Bool()
		}
	}
	return reflect.DeepEqual(a, b)
}

// String returns the S-expression rendering of c.
func (c *Condition[T]) String() string {
	return c.Sexp().String()
}

// Walk calls fn for c and every descendant condition in pre-order.
// Returning false from fn skips the node's children.
func Walk[T Element](c *Condition[T], fn func(*Condition[T]) bool) {
	if c == nil || !fn(c) {
		return
	}
	for _, child := range c.Conditions() {
		Walk(child, fn)
	}
}

// Size returns the number of condition nodes in the tree.
func (c *Condition[T]) Size() int {
	n := 0
	Walk(c, func(*Condition[T]) bool {
		n++
		return true
	})
	return n
}

// Depth returns the height of the condition tree; a leaf has depth 1.
func (c *Condition[T]) Depth() int {
	if c == nil {
		return 0
	}
	d := 0
	for _, child := range c.Conditions() {
		if cd := child.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}
