package scenario

import (
	"context"
	"fmt"

	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/louisbranch/tally/internal/keypad"
	"github.com/louisbranch/tally/internal/session"
)

func (r *Runner) runStep(ctx context.Context, s *session.Session, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch step.Kind {
	case "press":
		_, err := keypad.Press(ctx, s, stringSlice(step.Args["keys"])...)
		return err
	case "digit":
		digit := stringArg(step.Args, "digit")
		if len(digit) != 1 {
			return fmt.Errorf("digit %q is not a single character", digit)
		}
		_, err := s.Execute(ctx, session.Command{Action: session.ActionDigit, Digit: rune(digit[0])})
		return err
	case "decimal":
		s.InputDecimalPoint(ctx)
	case "negate":
		s.ToggleSign(ctx)
	case "percent":
		s.InputPercent(ctx)
	case "backspace":
		s.Backspace(ctx)
	case "clear":
		s.Clear(ctx)
	case "operate":
		op, err := calc.ParseOperator(stringArg(step.Args, "operator"))
		if err != nil {
			return err
		}
		s.PerformOperation(ctx, op)
	case "restore":
		return r.runRestoreStep(ctx, s, step)
	case "clear_history":
		s.ClearHistory(ctx)
	case "expect_display":
		if want, got := stringArg(step.Args, "text"), s.Snapshot().Text; got != want {
			return r.assertions.Failf("display = %q, want %q", got, want)
		}
	case "expect_raw":
		if want, got := stringArg(step.Args, "text"), s.Snapshot().Display; got != want {
			return r.assertions.Failf("raw display = %q, want %q", got, want)
		}
	case "expect_pending":
		if want, got := stringArg(step.Args, "operator"), s.Snapshot().Pending.String(); got != want {
			return r.assertions.Failf("pending operator = %s, want %s", got, want)
		}
	case "expect_history":
		if want, got := intArg(step.Args, "count"), len(s.History()); got != want {
			return r.assertions.Failf("history length = %d, want %d", got, want)
		}
	case "expect_last":
		return r.runExpectLastStep(s, step)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	return nil
}

func (r *Runner) runRestoreStep(ctx context.Context, s *session.Session, step Step) error {
	index := intArg(step.Args, "index")
	entries := s.History()
	if index < 1 || index > len(entries) {
		return fmt.Errorf("history index %d out of range (%d entries)", index, len(entries))
	}
	_, err := s.RestoreFromHistory(ctx, entries[index-1].ID)
	return err
}

func (r *Runner) runExpectLastStep(s *session.Session, step Step) error {
	entries := s.History()
	if len(entries) == 0 {
		return r.assertions.Failf("history is empty, want last entry %q", stringArg(step.Args, "expression"))
	}
	last := entries[0]
	wantExpression := stringArg(step.Args, "expression")
	wantResult := stringArg(step.Args, "result")
	if last.Expression != wantExpression || last.Result != wantResult {
		return r.assertions.Failf("last entry = %q = %q, want %q = %q",
			last.Expression, last.Result, wantExpression, wantResult)
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func intArg(args map[string]any, key string) int {
	switch value := args[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	default:
		return 0
	}
}

func stringSlice(value any) []string {
	switch values := value.(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			if text, ok := item.(string); ok {
				out = append(out, text)
			}
		}
		return out
	default:
		return nil
	}
}
