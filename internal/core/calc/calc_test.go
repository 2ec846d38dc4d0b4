package calc

import (
	"math"
	"testing"
)

// press feeds keypad-like tokens through the state machine.
func press(t *testing.T, s State, tokens ...string) State {
	t.Helper()
	for _, token := range tokens {
		switch token {
		case ".":
			s = s.InputDecimalPoint()
		case "+/-":
			s = s.ToggleSign()
		case "%":
			s = s.InputPercent()
		case "<-":
			s = s.Backspace()
		case "C":
			s = s.Clear()
		case "+", "-", "*", "/", "=":
			op, err := ParseOperator(token)
			if err != nil {
				t.Fatalf("parse operator %q: %v", token, err)
			}
			s, _, _ = s.PerformOperation(op)
		default:
			for _, r := range token {
				s = s.InputDigit(r)
			}
		}
	}
	return s
}

func TestInputDigit(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{name: "replaces lone zero", tokens: []string{"5"}, want: "5"},
		{name: "appends", tokens: []string{"5", "3"}, want: "53"},
		{name: "zero stays single", tokens: []string{"0", "0"}, want: "0"},
		{name: "after operator starts fresh", tokens: []string{"12", "+", "7"}, want: "7"},
		{name: "after decimal", tokens: []string{"0", ".", "5"}, want: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(t, New(), tt.tokens...)
			if got.Display != tt.want {
				t.Fatalf("display = %q, want %q", got.Display, tt.want)
			}
		})
	}
}

func TestInputDigitIgnoresNonDigits(t *testing.T) {
	s := New().InputDigit('7')
	for _, r := range []rune{'a', '.', '-', ' ', '٣'} {
		if got := s.InputDigit(r); got != s {
			t.Fatalf("InputDigit(%q) changed state to %+v", r, got)
		}
	}
}

func TestInputDecimalPoint(t *testing.T) {
	s := press(t, New(), "3", ".", "14")
	if s.Display != "3.14" {
		t.Fatalf("display = %q, want %q", s.Display, "3.14")
	}
	if got := s.InputDecimalPoint(); got.Display != "3.14" {
		t.Fatalf("second decimal point changed display to %q", got.Display)
	}

	s = press(t, New(), "4", "+", ".")
	if s.Display != "0." {
		t.Fatalf("display after operator = %q, want %q", s.Display, "0.")
	}
	if s.AwaitingOperand {
		t.Fatal("expected awaiting flag to clear")
	}
}

func TestToggleSign(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{display: "0", want: "0"},
		{display: "5", want: "-5"},
		{display: "-5", want: "5"},
		{display: "0.25", want: "-0.25"},
		{display: "0.", want: "0"},
	}
	for _, tt := range tests {
		s := New()
		s.Display = tt.display
		if got := s.ToggleSign().Display; got != tt.want {
			t.Errorf("ToggleSign(%q) = %q, want %q", tt.display, got, tt.want)
		}
	}
}

func TestInputPercent(t *testing.T) {
	s := press(t, New(), "50", "%")
	if s.Display != "0.5" {
		t.Fatalf("display = %q, want %q", s.Display, "0.5")
	}
}

func TestBackspace(t *testing.T) {
	tests := []struct {
		name    string
		display string
		want    string
	}{
		{name: "single character resets", display: "7", want: "0"},
		{name: "drops last digit", display: "123", want: "12"},
		{name: "drops trailing point", display: "3.", want: "3"},
		{name: "dangling minus", display: "-5", want: "0"},
		{name: "negative zero", display: "-0.", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Display = tt.display
			if got := s.Backspace().Display; got != tt.want {
				t.Fatalf("Backspace(%q) = %q, want %q", tt.display, got, tt.want)
			}
		})
	}
}

func TestBackspaceIgnoredWhileAwaitingOperand(t *testing.T) {
	s := press(t, New(), "42", "+")
	if got := s.Backspace(); got != s {
		t.Fatalf("backspace changed state while awaiting: %+v", got)
	}
}

func TestClear(t *testing.T) {
	s := press(t, New(), "9", "*", "3", "C")
	if s != New() {
		t.Fatalf("clear = %+v, want %+v", s, New())
	}
}

func TestPerformOperationSequentialEvaluation(t *testing.T) {
	s := press(t, New(), "2", "+", "3", "*", "4", "=")
	if s.Display != "20" {
		t.Fatalf("display = %q, want %q", s.Display, "20")
	}
	if s.Pending != OperatorNone {
		t.Fatalf("pending = %v, want none", s.Pending)
	}
	if !s.AwaitingOperand {
		t.Fatal("expected awaiting operand after equals")
	}
}

func TestPerformOperationDivisionByZero(t *testing.T) {
	s := press(t, New(), "5", "/", "0")
	next, fold, ok := s.PerformOperation(OperatorNone)
	if !ok {
		t.Fatal("expected fold")
	}
	if next.Display != "0" {
		t.Fatalf("display = %q, want %q", next.Display, "0")
	}
	if !fold.DivisionByZero() {
		t.Fatal("expected division by zero fold")
	}
}

func TestPerformOperationFirstPressRecordsOperand(t *testing.T) {
	s := press(t, New(), "8")
	next, _, ok := s.PerformOperation(OperatorSubtract)
	if ok {
		t.Fatal("first operator press must not fold")
	}
	if !next.HasPrevious || next.Previous != "8" {
		t.Fatalf("previous = %q (set %v), want 8", next.Previous, next.HasPrevious)
	}
	if next.Pending != OperatorSubtract {
		t.Fatalf("pending = %v, want subtract", next.Pending)
	}
}

func TestPerformOperationEmitsFold(t *testing.T) {
	s := press(t, New(), "7", "-", "10")
	_, fold, ok := s.PerformOperation(OperatorNone)
	if !ok {
		t.Fatal("expected fold")
	}
	want := Fold{Left: 7, Right: 10, Operator: OperatorSubtract, Result: -3}
	if fold != want {
		t.Fatalf("fold = %+v, want %+v", fold, want)
	}
}

func TestPerformOperationAfterEqualsKeepsResultAsLeftOperand(t *testing.T) {
	s := press(t, New(), "2", "+", "3", "=", "7", "+")
	if s.Previous != "5" || !s.HasPrevious {
		t.Fatalf("previous = %q (%v), want %q", s.Previous, s.HasPrevious, "5")
	}
	if s.Pending != OperatorAdd || !s.AwaitingOperand {
		t.Fatalf("unexpected state after operator: %+v", s)
	}

	s = s.InputDigit('1')
	s, fold, ok := s.PerformOperation(OperatorNone)
	if !ok {
		t.Fatal("expected a fold")
	}
	if s.Display != "6" {
		t.Fatalf("display = %q, want %q", s.Display, "6")
	}
	want := Fold{Left: 5, Right: 1, Operator: OperatorAdd, Result: 6}
	if fold != want {
		t.Fatalf("fold = %+v, want %+v", fold, want)
	}

	s = press(t, New(), "2", "+", "3", "=", "C", "7", "+", "1", "=")
	if s.Display != "8" {
		t.Fatalf("display after clear = %q, want %q", s.Display, "8")
	}

	s = press(t, New(), "2", "+", "3", "=", "*", "4", "=")
	if s.Display != "20" {
		t.Fatalf("chained result display = %q, want %q", s.Display, "20")
	}
}

func TestPerformOperationOverflowEntersErrorState(t *testing.T) {
	s := New()
	s.Display = FormatNumber(math.MaxFloat64)
	s, _, _ = s.PerformOperation(OperatorMultiply)
	s = s.InputDigit('9')
	next, _, ok := s.PerformOperation(OperatorNone)
	if ok {
		t.Fatal("overflow must not report a fold")
	}
	if !next.IsError() {
		t.Fatalf("display = %q, want %q", next.Display, ErrorDisplay)
	}

	for name, got := range map[string]State{
		"digit":     next.InputDigit('1'),
		"point":     next.InputDecimalPoint(),
		"sign":      next.ToggleSign(),
		"percent":   next.InputPercent(),
		"backspace": next.Backspace(),
	} {
		if !got.IsError() {
			t.Errorf("%s left error state: %q", name, got.Display)
		}
	}
	if cleared := next.Clear(); cleared.Display != "0" {
		t.Fatalf("clear display = %q, want 0", cleared.Display)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		prev, next float64
		op         Operator
		want       float64
	}{
		{prev: 2, next: 3, op: OperatorAdd, want: 5},
		{prev: 2, next: 3, op: OperatorSubtract, want: -1},
		{prev: 2, next: 3, op: OperatorMultiply, want: 6},
		{prev: 3, next: 2, op: OperatorDivide, want: 1.5},
		{prev: 3, next: 0, op: OperatorDivide, want: 0},
		{prev: 3, next: 9, op: OperatorNone, want: 9},
	}
	for _, tt := range tests {
		if got := Apply(tt.prev, tt.next, tt.op); got != tt.want {
			t.Errorf("Apply(%v, %v, %v) = %v, want %v", tt.prev, tt.next, tt.op, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 0, want: "0"},
		{value: math.Copysign(0, -1), want: "0"},
		{value: 1e21, want: "1000000000000000000000"},
		{value: 0.1 + 0.2, want: "0.30000000000000004"},
		{value: math.Inf(1), want: ErrorDisplay},
		{value: math.NaN(), want: ErrorDisplay},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.value); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestParseOperator(t *testing.T) {
	tests := map[string]Operator{
		"add":    OperatorAdd,
		"+":      OperatorAdd,
		"-":      OperatorSubtract,
		"*":      OperatorMultiply,
		"×":      OperatorMultiply,
		"/":      OperatorDivide,
		"equals": OperatorNone,
		"=":      OperatorNone,
	}
	for input, want := range tests {
		got, err := ParseOperator(input)
		if err != nil {
			t.Fatalf("ParseOperator(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("ParseOperator(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseOperator("modulo"); err != ErrUnknownOperator {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
}
