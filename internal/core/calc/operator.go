package calc

import (
	"errors"
	"strings"
)

// ErrUnknownOperator is returned when an operator name cannot be parsed.
var ErrUnknownOperator = errors.New("unknown operator")

// Operator identifies the binary operation selected on the keypad.
//
// OperatorNone stands for the equals action: it resolves any pending
// operation and leaves nothing pending.
type Operator int

const (
	// OperatorNone is the equals action.
	OperatorNone Operator = iota
	// OperatorAdd adds the next operand.
	OperatorAdd
	// OperatorSubtract subtracts the next operand.
	OperatorSubtract
	// OperatorMultiply multiplies by the next operand.
	OperatorMultiply
	// OperatorDivide divides by the next operand.
	OperatorDivide
)

// String returns the lowercase operator name.
func (o Operator) String() string {
	switch o {
	case OperatorNone:
		return "none"
	case OperatorAdd:
		return "add"
	case OperatorSubtract:
		return "subtract"
	case OperatorMultiply:
		return "multiply"
	case OperatorDivide:
		return "divide"
	default:
		return "unknown"
	}
}

// Symbol returns the human-readable symbol used in history expressions.
func (o Operator) Symbol() string {
	switch o {
	case OperatorAdd:
		return "+"
	case OperatorSubtract:
		return "-"
	case OperatorMultiply:
		return "×"
	case OperatorDivide:
		return "÷"
	default:
		return ""
	}
}

// ParseOperator accepts operator names ("add"), keypad symbols ("+", "*")
// and display symbols ("×"). "equals", "=" and "none" map to OperatorNone.
func ParseOperator(value string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "equals", "=":
		return OperatorNone, nil
	case "add", "+":
		return OperatorAdd, nil
	case "subtract", "-", "−":
		return OperatorSubtract, nil
	case "multiply", "*", "×", "x":
		return OperatorMultiply, nil
	case "divide", "/", "÷":
		return OperatorDivide, nil
	default:
		return OperatorNone, ErrUnknownOperator
	}
}
