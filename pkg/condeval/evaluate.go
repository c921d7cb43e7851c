package condeval

// Evaluate evaluates c against binding.
//
// Both operands of connectives and comparisons are evaluated, left first,
// before the results are combined; there is no short-circuit on the boolean
// value. The first error encountered is returned unchanged, so when both
// operands would fail the left operand's error wins. Comparisons use the
// element type's native operators: any comparison involving NaN is false.
//
// The binding is only read and is not retained. c must not be nil; the
// constructors never produce a nil node inside a tree.
func (c *Condition[T]) Evaluate(binding []T) (bool, error) {
	switch c.op {
	case OpTrue:
		return true, nil

	case OpFalse:
		return false, nil

	case OpNot:
		v, err := c.left.Evaluate(binding)
		if err != nil {
			return false, err
		}
		return !v, nil

	case OpAnd, OpOr:
		l, err := c.left.Evaluate(binding)
		if err != nil {
			return false, err
		}
		r, err := c.right.Evaluate(binding)
		if err != nil {
			return false, err
		}
		if c.op == OpAnd {
			return l && r, nil
		}
		return l || r, nil

	default:
		x, err := c.lhs.Evaluate(binding)
		if err != nil {
			return false, err
		}
		y, err := c.rhs.Evaluate(binding)
		if err != nil {
			return false, err
		}
		return compare(c.op, x, y), nil
	}
}

// Evaluate is a convenience wrapper for c.Evaluate(binding).
func Evaluate[T Element](c *Condition[T], binding []T) (bool, error) {
	return c.Evaluate(binding)
}

func compare[T Element](op Op, x, y T) bool {
	switch op {
	case OpEqual:
		return x == y
	case OpLess:
		return x < y
	case OpGreater:
		return x > y
	case OpLessEqual:
		return x <= y
	case OpGreaterEqual:
		return x >= y
	default:
		panic("condeval: not a comparison: " + op.String())
	}
}
