// Package calc implements the calculator state machine.
//
// # State
//
// State is a value. Every operation takes the current State and returns the
// next one; nothing is mutated in place, so callers decide how a State is
// owned and serialized.
//
// # Evaluation order
//
// Input is evaluated strictly left to right as pressed. Each operator press
// folds any operator that is already pending before recording the new one,
// so the key sequence 2 + 3 × 4 = evaluates as (2+3)×4 = 20.
//
// # Errors
//
// Operations are total. A display that cannot be represented as a finite
// number becomes the ErrorDisplay sentinel, after which every operation
// except Clear is a no-op.
//
// Division by zero is not an error: it folds to 0.
package calc

import (
	"math"
	"strconv"
	"strings"
)

// ErrorDisplay is the display sentinel for a non-finite value.
const ErrorDisplay = "Error"

// State is the complete state of one calculator.
type State struct {
	// Display is the operand being entered or the last result. It is always a
	// decimal numeral (optionally with a trailing point) or ErrorDisplay.
	Display string
	// Previous is the left-hand operand of a pending operation.
	Previous string
	// HasPrevious reports whether Previous is set.
	HasPrevious bool
	// Pending is the operator waiting for its right-hand operand.
	Pending Operator
	// AwaitingOperand is true right after an operator or equals press: the
	// next digit starts a fresh operand instead of extending Display.
	AwaitingOperand bool
}

// Fold is the fact emitted for one completed binary operation.
type Fold struct {
	Left     float64
	Right    float64
	Operator Operator
	Result   float64
}

// DivisionByZero reports whether the fold took the zero-divisor fallback.
func (f Fold) DivisionByZero() bool {
	return f.Operator == OperatorDivide && f.Right == 0
}

// New returns a cleared calculator state.
func New() State {
	return State{Display: "0"}
}

// IsError reports whether the display holds the error sentinel.
func (s State) IsError() bool {
	return s.Display == ErrorDisplay
}

// Value parses the display as a number.
func (s State) Value() (float64, bool) {
	return parseNumber(s.Display)
}

// InputDigit enters one decimal digit. Anything other than '0'-'9' is ignored.
func (s State) InputDigit(d rune) State {
	if d < '0' || d > '9' || s.IsError() {
		return s
	}
	if s.AwaitingOperand {
		s.Display = string(d)
		s.AwaitingOperand = false
		return s
	}
	if s.Display == "0" {
		s.Display = string(d)
		return s
	}
	s.Display += string(d)
	return s
}

// InputDecimalPoint starts the fractional part of the operand. A second
// press on the same operand is a no-op.
func (s State) InputDecimalPoint() State {
	if s.IsError() {
		return s
	}
	if s.AwaitingOperand {
		s.Display = "0."
		s.AwaitingOperand = false
		return s
	}
	if !strings.Contains(s.Display, ".") {
		s.Display += "."
	}
	return s
}

// ToggleSign negates the displayed value. Zero stays "0".
func (s State) ToggleSign() State {
	value, ok := s.Value()
	if !ok {
		return s
	}
	s.Display = FormatNumber(-value)
	return s
}

// InputPercent divides the displayed value by 100.
func (s State) InputPercent() State {
	value, ok := s.Value()
	if !ok {
		return s
	}
	s.Display = FormatNumber(value / 100)
	return s
}

// Backspace removes the last entered character. It does nothing while the
// calculator awaits a fresh operand, and a single character resets to "0".
func (s State) Backspace() State {
	if s.IsError() || s.AwaitingOperand {
		return s
	}
	if len(s.Display) <= 1 {
		s.Display = "0"
		return s
	}
	display := s.Display[:len(s.Display)-1]
	if display == "-" || display == "-0" {
		display = "0"
	}
	s.Display = display
	return s
}

// Clear resets the calculator, including the error state.
func (s State) Clear() State {
	return New()
}

// PerformOperation resolves the pending operator, if any, against the
// displayed operand and records next as the new pending operator.
//
// Without a left-hand operand (first press after entry or Clear) the
// displayed value becomes it. With one and an operator pending, the pending
// operator is folded and the returned Fold is valid (ok is true); the result
// becomes both the display and the new left-hand operand. After equals the
// left-hand operand is the last result and is kept as is, so 2 + 3 = 7 + 1 =
// yields 6.
//
// A fold whose result is not finite puts the calculator in the error state
// and reports ok as false.
func (s State) PerformOperation(next Operator) (State, Fold, bool) {
	current, ok := s.Value()
	if !ok {
		return s, Fold{}, false
	}

	var fold Fold
	folded := false
	if !s.HasPrevious {
		s.Previous = FormatNumber(current)
		s.HasPrevious = true
	} else if s.Pending != OperatorNone {
		previous, _ := parseNumber(s.Previous)
		result := Apply(previous, current, s.Pending)
		s.Display = FormatNumber(result)
		if s.IsError() {
			s.Previous = ""
			s.HasPrevious = false
			s.Pending = OperatorNone
			s.AwaitingOperand = true
			return s, Fold{}, false
		}
		s.Previous = s.Display
		fold = Fold{Left: previous, Right: current, Operator: s.Pending, Result: result}
		folded = true
	}

	s.Pending = next
	s.AwaitingOperand = true
	return s, fold, folded
}

// Apply folds two operands under op. Dividing by zero yields 0 rather than
// an infinity. OperatorNone returns next unchanged.
func Apply(previous, next float64, op Operator) float64 {
	switch op {
	case OperatorAdd:
		return previous + next
	case OperatorSubtract:
		return previous - next
	case OperatorMultiply:
		return previous * next
	case OperatorDivide:
		if next == 0 {
			return 0
		}
		return previous / next
	default:
		return next
	}
}

// FormatNumber renders a value as a plain decimal numeral. Negative zero is
// normalized to "0"; non-finite values become ErrorDisplay.
func FormatNumber(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrorDisplay
	}
	if value == 0 {
		return "0"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func parseNumber(value string) (float64, bool) {
	if value == "" || value == ErrorDisplay {
		return 0, false
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}
