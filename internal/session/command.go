package session

import (
	"context"
	"fmt"

	"github.com/louisbranch/tally/internal/core/calc"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
)

// Command is one action with its argument, as received from a remote caller.
type Command struct {
	Action Action
	// Digit is the digit for ActionDigit.
	Digit rune
	// Operator is the operator for ActionOperation.
	Operator calc.Operator
	// EntryID is the history entry for ActionRestoreHistory.
	EntryID string
}

// Execute dispatches a command to the matching session operation.
func (s *Session) Execute(ctx context.Context, cmd Command) (Snapshot, error) {
	switch cmd.Action {
	case ActionDigit:
		if cmd.Digit < '0' || cmd.Digit > '9' {
			return s.Snapshot(), apperrors.WithMetadata(apperrors.CodeInvalidDigit,
				fmt.Sprintf("digit %q is not 0-9", cmd.Digit),
				map[string]string{"digit": string(cmd.Digit)})
		}
		return s.InputDigit(ctx, cmd.Digit), nil
	case ActionDecimalPoint:
		return s.InputDecimalPoint(ctx), nil
	case ActionToggleSign:
		return s.ToggleSign(ctx), nil
	case ActionPercent:
		return s.InputPercent(ctx), nil
	case ActionBackspace:
		return s.Backspace(ctx), nil
	case ActionClear:
		return s.Clear(ctx), nil
	case ActionOperation:
		return s.PerformOperation(ctx, cmd.Operator), nil
	case ActionRestoreHistory:
		if cmd.EntryID == "" {
			return s.Snapshot(), apperrors.New(apperrors.CodeHistoryEntryIDEmpty, "history entry id is required")
		}
		return s.RestoreFromHistory(ctx, cmd.EntryID)
	case ActionClearHistory:
		return s.ClearHistory(ctx), nil
	default:
		return s.Snapshot(), apperrors.WithMetadata(apperrors.CodeInvalidAction,
			fmt.Sprintf("unknown action %q", cmd.Action),
			map[string]string{"action": string(cmd.Action)})
	}
}
