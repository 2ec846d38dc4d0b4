// Package keypad translates key names into calculator operations.
//
// Keys follow browser KeyboardEvent.key names: "0"-"9", ".", ",", "+", "-",
// "*", "/", "%", "=", "Enter", "Backspace", "Escape", "c", "C" and "F9".
package keypad

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/tally/internal/core/calc"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"github.com/louisbranch/tally/internal/session"
)

// Key is one parsed key press.
type Key struct {
	Name    string
	Command session.Command
	// Equals marks a key that only acts when an operator is pending.
	Equals bool
}

var named = map[string]session.Command{
	".":         {Action: session.ActionDecimalPoint},
	",":         {Action: session.ActionDecimalPoint},
	"Backspace": {Action: session.ActionBackspace},
	"Escape":    {Action: session.ActionClear},
	"c":         {Action: session.ActionClear},
	"C":         {Action: session.ActionClear},
	"+":         {Action: session.ActionOperation, Operator: calc.OperatorAdd},
	"-":         {Action: session.ActionOperation, Operator: calc.OperatorSubtract},
	"*":         {Action: session.ActionOperation, Operator: calc.OperatorMultiply},
	"/":         {Action: session.ActionOperation, Operator: calc.OperatorDivide},
	"%":         {Action: session.ActionPercent},
	"F9":        {Action: session.ActionToggleSign},
}

// Parse resolves a key name.
func Parse(name string) (Key, error) {
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return Key{Name: name, Command: session.Command{Action: session.ActionDigit, Digit: rune(name[0])}}, nil
	}
	if name == "Enter" || name == "=" {
		return Key{
			Name:    name,
			Command: session.Command{Action: session.ActionOperation, Operator: calc.OperatorNone},
			Equals:  true,
		}, nil
	}
	if cmd, ok := named[name]; ok {
		return Key{Name: name, Command: cmd}, nil
	}
	return Key{}, apperrors.WithMetadata(apperrors.CodeInvalidKey,
		fmt.Sprintf("unknown key %q", name),
		map[string]string{"key": name})
}

// ParseAll resolves every key, failing on the first unknown one.
func ParseAll(names []string) ([]Key, error) {
	keys := make([]Key, 0, len(names))
	for _, name := range names {
		key, err := Parse(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Split breaks a line of whitespace-separated key names into keys. Runs of
// digits and decimal separators ("12.5") expand into one key per character.
func Split(line string) []string {
	var names []string
	for _, field := range strings.Fields(line) {
		if isNumeral(field) {
			for _, r := range field {
				names = append(names, string(r))
			}
			continue
		}
		names = append(names, field)
	}
	return names
}

// Press applies a key sequence to a session and returns the final snapshot.
// Keys are validated before any is applied, so an unknown key leaves the
// session untouched.
func Press(ctx context.Context, s *session.Session, names ...string) (session.Snapshot, error) {
	if len(names) == 0 {
		return s.Snapshot(), apperrors.New(apperrors.CodeKeysEmpty, "no keys to press")
	}
	keys, err := ParseAll(names)
	if err != nil {
		return s.Snapshot(), err
	}
	snap := s.Snapshot()
	for _, key := range keys {
		if key.Equals && snap.Pending == calc.OperatorNone {
			continue
		}
		snap, err = s.Execute(ctx, key.Command)
		if err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func isNumeral(field string) bool {
	if len(field) < 2 {
		return false
	}
	for _, r := range field {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
