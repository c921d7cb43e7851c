// Package errors defines the evaluation error taxonomy shared by the
// expression layer and the condition layer.
//
// Expressions produce these errors; conditions only forward them. Callers
// compare with == or errors.Is against the EvaluationError constants:
//
//	_, err := cond.Evaluate(binding)
//	if errors.Is(err, condeverrors.InvalidVariable) {
//	    // binding too short for the referenced slot
//	}
package errors

import (
	"errors"
	"fmt"
)

// EvaluationError is the kind of failure an expression can report.
type EvaluationError int

const (
	// DivisionByZero indicates a division or remainder with a zero divisor.
	DivisionByZero EvaluationError = iota + 1

	// InvalidVariable indicates a referenced variable slot is absent or
	// out of range for the binding.
	InvalidVariable

	// InvalidOperation indicates an operation is undefined for its operands,
	// e.g. a remainder over floating-point elements.
	InvalidOperation
)

// String returns the snake_case name of the error kind.
func (e EvaluationError) String() string {
	switch e {
	case DivisionByZero:
		return "division_by_zero"
	case InvalidVariable:
		return "invalid_variable"
	case InvalidOperation:
		return "invalid_operation"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e EvaluationError) Error() string {
	switch e {
	case DivisionByZero:
		return "division by zero"
	case InvalidVariable:
		return "invalid variable"
	case InvalidOperation:
		return "invalid operation"
	default:
		return fmt.Sprintf("unknown evaluation error (%d)", int(e))
	}
}

// VariableError reports which variable slot could not be resolved.
// It unwraps to InvalidVariable.
type VariableError struct {
	// Slot is the referenced variable index.
	Slot int
	// Bound is the length of the binding that was supplied.
	Bound int
}

// Error implements the error interface.
func (e *VariableError) Error() string {
	return fmt.Sprintf("invalid variable: slot %d out of range for binding of length %d", e.Slot, e.Bound)
}

// Unwrap returns InvalidVariable.
func (e *VariableError) Unwrap() error {
	return InvalidVariable
}

// Classify maps err onto the taxonomy.
// Returns false when err is nil or carries no EvaluationError.
func Classify(err error) (EvaluationError, bool) {
	if err == nil {
		return 0, false
	}

	// VariableError unwraps to InvalidVariable, so As finds it too.
	var kind EvaluationError
	if errors.As(err, &kind) {
		return kind, true
	}
	return 0, false
}
