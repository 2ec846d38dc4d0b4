package session

import (
	"fmt"
	"strings"
)

// Action names one calculator operation a session performs.
type Action string

const (
	ActionDigit          Action = "digit"
	ActionDecimalPoint   Action = "decimal_point"
	ActionToggleSign     Action = "toggle_sign"
	ActionPercent        Action = "percent"
	ActionBackspace      Action = "backspace"
	ActionClear          Action = "clear"
	ActionOperation      Action = "operation"
	ActionRestoreHistory Action = "restore_history"
	ActionClearHistory   Action = "clear_history"
)

var actions = []Action{
	ActionDigit,
	ActionDecimalPoint,
	ActionToggleSign,
	ActionPercent,
	ActionBackspace,
	ActionClear,
	ActionOperation,
	ActionRestoreHistory,
	ActionClearHistory,
}

// Actions returns every action, in declaration order.
func Actions() []Action {
	return append([]Action(nil), actions...)
}

// ParseAction resolves an action name, ignoring case and surrounding space.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, action := range actions {
		if string(action) == name {
			return action, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", name)
}

// SpanName is the tracing span recorded for the action.
func (a Action) SpanName() string {
	return "calculator." + string(a)
}
