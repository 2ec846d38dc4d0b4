// Package session owns one calculator: its engine state and its history log.
//
// A Session serializes every operation, so callers may share one across
// goroutines; each call observes the result of the previous one. Completed
// folds are appended to the session's history and then published to any
// registered Observer.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/louisbranch/tally/internal/core/display"
	"github.com/louisbranch/tally/internal/core/history"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"github.com/louisbranch/tally/internal/platform/id"
	"github.com/louisbranch/tally/internal/platform/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/tally/internal/session"

// Observer receives facts from a session. Calls happen while the session lock
// is held, so implementations must not call back into the session.
type Observer interface {
	ObserveAction(action Action)
	ObserveFold(fold calc.Fold)
}

// Snapshot is the externally visible state after an operation.
type Snapshot struct {
	// Display is the raw engine display.
	Display string
	// Text is Display rendered for presentation.
	Text            string
	Pending         calc.Operator
	AwaitingOperand bool
	HistoryLen      int
}

// Option configures a Session.
type Option func(*Session)

// WithObserver registers an observer for actions and folds.
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithClock overrides the clock stamped on history entries.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides history entry id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Session) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithHistoryCapacity sets the history log capacity.
func WithHistoryCapacity(capacity int) Option {
	return func(s *Session) {
		s.history = history.NewLog(capacity)
	}
}

// Session is one calculator instance.
type Session struct {
	mu        sync.Mutex
	state     calc.State
	history   *history.Log
	observers []Observer
	now       func() time.Time
	newID     func() (string, error)
	tracer    trace.Tracer
	fallback  atomic.Uint64
}

// New creates a session in the cleared state with an empty history.
func New(opts ...Option) *Session {
	s := &Session{
		state:   calc.New(),
		history: history.NewLog(history.DefaultCapacity),
		now:     time.Now,
		newID:   id.NewID,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InputDigit appends a decimal digit. Anything else is a no-op.
func (s *Session) InputDigit(ctx context.Context, digit rune) Snapshot {
	return s.transition(ctx, ActionDigit, func(state calc.State) calc.State {
		return state.InputDigit(digit)
	}, attribute.String("calculator.digit", string(digit)))
}

// InputDecimalPoint starts the fractional part of the operand.
func (s *Session) InputDecimalPoint(ctx context.Context) Snapshot {
	return s.transition(ctx, ActionDecimalPoint, calc.State.InputDecimalPoint)
}

// ToggleSign negates the display.
func (s *Session) ToggleSign(ctx context.Context) Snapshot {
	return s.transition(ctx, ActionToggleSign, calc.State.ToggleSign)
}

// InputPercent divides the display by 100.
func (s *Session) InputPercent(ctx context.Context) Snapshot {
	return s.transition(ctx, ActionPercent, calc.State.InputPercent)
}

// Backspace removes the last entered character.
func (s *Session) Backspace(ctx context.Context) Snapshot {
	return s.transition(ctx, ActionBackspace, calc.State.Backspace)
}

// Clear resets the calculator. History is kept.
func (s *Session) Clear(ctx context.Context) Snapshot {
	return s.transition(ctx, ActionClear, calc.State.Clear)
}

// PerformOperation folds any pending operation and records next as pending.
// calc.OperatorNone acts as equals.
func (s *Session) PerformOperation(ctx context.Context, next calc.Operator) Snapshot {
	_, span := s.tracer.Start(ctx, ActionOperation.SpanName(),
		trace.WithAttributes(attribute.String("calculator.operator", next.String())))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, fold, ok := s.state.PerformOperation(next)
	s.state = state
	s.notifyAction(ActionOperation)
	if ok {
		s.record(fold)
		span.SetAttributes(
			attribute.String("calculator.fold.operator", fold.Operator.String()),
			attribute.Bool("calculator.fold.division_by_zero", fold.DivisionByZero()),
		)
	}
	return s.snapshotLocked()
}

// RestoreFromHistory clears the operator state and puts the entry's result
// on the display.
func (s *Session) RestoreFromHistory(ctx context.Context, entryID string) (Snapshot, error) {
	_, span := s.tracer.Start(ctx, ActionRestoreHistory.SpanName(),
		trace.WithAttributes(attribute.String("calculator.history.entry_id", entryID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.history.Find(entryID)
	if !ok {
		err := apperrors.WithMetadata(apperrors.CodeHistoryEntryNotFound,
			fmt.Sprintf("history entry %q not found", entryID),
			map[string]string{"entry_id": entryID})
		span.RecordError(err)
		return s.snapshotLocked(), err
	}

	state := calc.New()
	state.Display = s.history.Restore(entry)
	s.state = state
	s.notifyAction(ActionRestoreHistory)
	return s.snapshotLocked(), nil
}

// ClearHistory empties the history log.
func (s *Session) ClearHistory(ctx context.Context) Snapshot {
	_, span := s.tracer.Start(ctx, ActionClearHistory.SpanName())
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear()
	s.notifyAction(ActionClearHistory)
	return s.snapshotLocked()
}

// DisplayText returns the rendered display.
func (s *Session) DisplayText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return display.Render(s.state.Display)
}

// History returns the completed calculations, newest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns a copy of the engine state.
func (s *Session) State() calc.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(ctx context.Context, action Action, apply func(calc.State) calc.State, attrs ...attribute.KeyValue) Snapshot {
	_, span := s.tracer.Start(ctx, action.SpanName(), trace.WithAttributes(attrs...))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = apply(s.state)
	s.notifyAction(action)
	return s.snapshotLocked()
}

func (s *Session) record(fold calc.Fold) {
	s.history.Append(history.NewEntry(s.entryID(), fold, s.now()))
	for _, observer := range s.observers {
		observer.ObserveFold(fold)
	}
}

func (s *Session) entryID() string {
	entryID, err := s.newID()
	if err == nil && entryID != "" {
		return entryID
	}
	log.Printf("history entry id: %v; using sequence id", err)
	return fmt.Sprintf("seq-%d", s.fallback.Add(1))
}

func (s *Session) notifyAction(action Action) {
	for _, observer := range s.observers {
		observer.ObserveAction(action)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Display:         s.state.Display,
		Text:            display.Render(s.state.Display),
		Pending:         s.state.Pending,
		AwaitingOperand: s.state.AwaitingOperand,
		HistoryLen:      s.history.Len(),
	}
}
