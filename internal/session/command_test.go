package session

import (
	"context"
	"testing"

	"github.com/louisbranch/tally/internal/core/calc"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
)

func TestExecuteDispatchesCommands(t *testing.T) {
	ctx := context.Background()
	s := New(WithIDGenerator(sequentialIDs()))

	steps := []struct {
		cmd  Command
		want string
	}{
		{cmd: Command{Action: ActionDigit, Digit: '4'}, want: "4"},
		{cmd: Command{Action: ActionDecimalPoint}, want: "4."},
		{cmd: Command{Action: ActionDigit, Digit: '5'}, want: "4.5"},
		{cmd: Command{Action: ActionToggleSign}, want: "-4.5"},
		{cmd: Command{Action: ActionOperation, Operator: calc.OperatorMultiply}, want: "-4.5"},
		{cmd: Command{Action: ActionDigit, Digit: '2'}, want: "2"},
		{cmd: Command{Action: ActionOperation, Operator: calc.OperatorNone}, want: "-9"},
		{cmd: Command{Action: ActionPercent}, want: "-0.09"},
		{cmd: Command{Action: ActionBackspace}, want: "-0.09"},
		{cmd: Command{Action: ActionClear}, want: "0"},
		{cmd: Command{Action: ActionRestoreHistory, EntryID: "e1"}, want: "-9"},
		{cmd: Command{Action: ActionClearHistory}, want: "-9"},
	}
	for i, step := range steps {
		snap, err := s.Execute(ctx, step.cmd)
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, step.cmd.Action, err)
		}
		if snap.Display != step.want {
			t.Fatalf("step %d (%s): display = %q, want %q", i, step.cmd.Action, snap.Display, step.want)
		}
	}
	if len(s.History()) != 0 {
		t.Fatal("expected history cleared")
	}
}

func TestExecuteRejectsInvalidCommands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cmd  Command
		code apperrors.Code
	}{
		{name: "digit", cmd: Command{Action: ActionDigit, Digit: 'x'}, code: apperrors.CodeInvalidDigit},
		{name: "restore without id", cmd: Command{Action: ActionRestoreHistory}, code: apperrors.CodeHistoryEntryIDEmpty},
		{name: "restore unknown", cmd: Command{Action: ActionRestoreHistory, EntryID: "nope"}, code: apperrors.CodeHistoryEntryNotFound},
		{name: "action", cmd: Command{Action: "launch"}, code: apperrors.CodeInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Execute(ctx, tt.cmd)
			if !apperrors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	for _, action := range Actions() {
		got, err := ParseAction(" " + string(action) + " ")
		if err != nil || got != action {
			t.Fatalf("ParseAction(%q) = %q, %v", action, got, err)
		}
	}
	if _, err := ParseAction("launch"); err == nil {
		t.Fatal("expected error for unknown action")
	}
	if got := ActionClear.SpanName(); got != "calculator.clear" {
		t.Fatalf("span name = %q", got)
	}
}
