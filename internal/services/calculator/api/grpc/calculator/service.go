// Package calculator implements the tally.calculator.v1 gRPC service over a
// session store.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/louisbranch/tally/internal/core/history"
	"github.com/louisbranch/tally/internal/keypad"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"github.com/louisbranch/tally/internal/platform/grpc/pagination"
	"github.com/louisbranch/tally/internal/platform/id"
	"github.com/louisbranch/tally/internal/services/calculator/storage"
	"github.com/louisbranch/tally/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultListHistoryPageSize = 10
	maxListHistoryPageSize     = history.DefaultCapacity
)

// SessionGauge tracks how many sessions are open.
type SessionGauge interface {
	SessionOpened()
	SessionClosed()
}

// Option configures a Service.
type Option func(*Service)

// WithObserver attaches an observer to every session the service creates.
func WithObserver(observer session.Observer) Option {
	return func(s *Service) { s.observer = observer }
}

// WithSessionGauge reports session opens and closes.
func WithSessionGauge(gauge SessionGauge) Option {
	return func(s *Service) { s.gauge = gauge }
}

// WithClock overrides the service clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Service exposes calculator.v1 gRPC operations.
type Service struct {
	store    storage.SessionStore
	observer session.Observer
	gauge    SessionGauge
	clock    func() time.Time
	newID    func() (string, error)
}

// NewService creates a calculator service backed by a session store.
func NewService(store storage.SessionStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: time.Now,
		newID: id.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession opens a new calculator session.
func (s *Service) CreateSession(ctx context.Context, _ *calculatorv1.CreateSessionRequest) (*calculatorv1.SessionResponse, error) {
	if s == nil || s.store == nil {
		return nil, status.Error(codes.Internal, "session store is not configured")
	}
	sessionID, err := s.newID()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "generate session id: %v", err)
	}

	var opts []session.Option
	if s.observer != nil {
		opts = append(opts, session.WithObserver(s.observer))
	}
	calculator := session.New(opts...)
	now := s.clock().UTC()
	if err := s.store.CreateSession(ctx, storage.SessionRecord{
		ID:        sessionID,
		Session:   calculator,
		CreatedAt: now,
	}); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, status.Error(codes.AlreadyExists, "session already exists")
		}
		return nil, status.Errorf(codes.Internal, "create session: %v", err)
	}
	if s.gauge != nil {
		s.gauge.SessionOpened()
	}
	return sessionResponse(sessionID, calculator.Snapshot()), nil
}

// CloseSession discards a session and its history.
func (s *Service) CloseSession(ctx context.Context, in *calculatorv1.CloseSessionRequest) (*calculatorv1.CloseSessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "close session request is required")
	}
	sessionID, err := requireSessionID(in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return nil, apperrors.HandleError(storeError(sessionID, err))
	}
	if s.gauge != nil {
		s.gauge.SessionClosed()
	}
	return &calculatorv1.CloseSessionResponse{}, nil
}

// Apply runs one engine operation against a session.
func (s *Service) Apply(ctx context.Context, in *calculatorv1.ApplyRequest) (*calculatorv1.SessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "apply request is required")
	}
	record, err := s.lookup(ctx, in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	cmd, err := commandFromRequest(in)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	snap, err := record.Session.Execute(ctx, cmd)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	return sessionResponse(record.ID, snap), nil
}

// PressKeys applies a keypad sequence against a session.
func (s *Service) PressKeys(ctx context.Context, in *calculatorv1.PressKeysRequest) (*calculatorv1.SessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "press keys request is required")
	}
	record, err := s.lookup(ctx, in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	snap, err := keypad.Press(ctx, record.Session, in.Keys...)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	return sessionResponse(record.ID, snap), nil
}

// GetDisplay returns the current state of a session.
func (s *Service) GetDisplay(ctx context.Context, in *calculatorv1.GetDisplayRequest) (*calculatorv1.SessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "get display request is required")
	}
	record, err := s.lookup(ctx, in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	return sessionResponse(record.ID, record.Session.Snapshot()), nil
}

// ListHistory returns one page of a session's history, newest first.
func (s *Service) ListHistory(ctx context.Context, in *calculatorv1.ListHistoryRequest) (*calculatorv1.ListHistoryResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "list history request is required")
	}
	record, err := s.lookup(ctx, in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}

	pageSize := pagination.ClampPageSize(in.PageSize, pagination.PageSizeConfig{
		Default: defaultListHistoryPageSize,
		Max:     maxListHistoryPageSize,
	})
	offset, err := pagination.DecodeOffset(in.PageToken)
	if err != nil {
		return nil, apperrors.HandleError(apperrors.Wrap(apperrors.CodeInvalidPageToken, "invalid page token", err))
	}

	entries := record.Session.History()
	start, end, next := pagination.Window(len(entries), offset, pageSize)
	resp := &calculatorv1.ListHistoryResponse{
		Entries:       make([]calculatorv1.HistoryEntry, 0, end-start),
		NextPageToken: pagination.EncodeOffset(next),
		TotalSize:     len(entries),
	}
	for _, entry := range entries[start:end] {
		resp.Entries = append(resp.Entries, HistoryEntryToAPI(entry))
	}
	return resp, nil
}

// RestoreHistory puts a history entry's result back on the display.
func (s *Service) RestoreHistory(ctx context.Context, in *calculatorv1.RestoreHistoryRequest) (*calculatorv1.SessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "restore history request is required")
	}
	record, err := s.lookup(ctx, in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	snap, err := record.Session.Execute(ctx, session.Command{
		Action:  session.ActionRestoreHistory,
		EntryID: strings.TrimSpace(in.EntryID),
	})
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	return sessionResponse(record.ID, snap), nil
}

// ClearHistory empties a session's history.
func (s *Service) ClearHistory(ctx context.Context, in *calculatorv1.ClearHistoryRequest) (*calculatorv1.SessionResponse, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "clear history request is required")
	}
	record, err := s.lookup(ctx, in.SessionID)
	if err != nil {
		return nil, apperrors.HandleError(err)
	}
	return sessionResponse(record.ID, record.Session.ClearHistory(ctx)), nil
}

// ExpireIdle closes sessions unused since before cutoff.
func (s *Service) ExpireIdle(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.store.ExpireSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if s.gauge != nil {
		for i := 0; i < removed; i++ {
			s.gauge.SessionClosed()
		}
	}
	return removed, nil
}

func (s *Service) lookup(ctx context.Context, rawID string) (storage.SessionRecord, error) {
	if s == nil || s.store == nil {
		return storage.SessionRecord{}, errors.New("session store is not configured")
	}
	sessionID, err := requireSessionID(rawID)
	if err != nil {
		return storage.SessionRecord{}, err
	}
	record, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return storage.SessionRecord{}, storeError(sessionID, err)
	}
	return record, nil
}

func requireSessionID(raw string) (string, error) {
	sessionID := strings.TrimSpace(raw)
	if sessionID == "" {
		return "", apperrors.New(apperrors.CodeSessionIDEmpty, "session id is required")
	}
	return sessionID, nil
}

func storeError(sessionID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WithMetadata(apperrors.CodeSessionNotFound,
			fmt.Sprintf("session %q not found", sessionID),
			map[string]string{"session_id": sessionID})
	}
	return apperrors.Wrap(apperrors.CodeUnknown, "session store", err)
}

func commandFromRequest(in *calculatorv1.ApplyRequest) (session.Command, error) {
	action, err := session.ParseAction(in.Action)
	if err != nil {
		return session.Command{}, apperrors.WithMetadata(apperrors.CodeInvalidAction, err.Error(),
			map[string]string{"action": in.Action})
	}
	cmd := session.Command{Action: action, EntryID: strings.TrimSpace(in.EntryID)}
	switch action {
	case session.ActionDigit:
		digit, size := utf8.DecodeRuneInString(in.Digit)
		if size == 0 || size != len(in.Digit) {
			return session.Command{}, apperrors.WithMetadata(apperrors.CodeInvalidDigit,
				fmt.Sprintf("digit %q is not a single character", in.Digit),
				map[string]string{"digit": in.Digit})
		}
		cmd.Digit = digit
	case session.ActionOperation:
		op, err := calc.ParseOperator(in.Operator)
		if err != nil {
			return session.Command{}, apperrors.WithMetadata(apperrors.CodeInvalidOperator, err.Error(),
				map[string]string{"operator": in.Operator})
		}
		cmd.Operator = op
	}
	return cmd, nil
}

func sessionResponse(sessionID string, snap session.Snapshot) *calculatorv1.SessionResponse {
	return &calculatorv1.SessionResponse{Session: SessionToAPI(sessionID, snap)}
}

// SessionToAPI converts a snapshot to its API form.
func SessionToAPI(sessionID string, snap session.Snapshot) calculatorv1.Session {
	return calculatorv1.Session{
		ID:              sessionID,
		Display:         snap.Display,
		Text:            snap.Text,
		PendingOperator: snap.Pending.String(),
		AwaitingOperand: snap.AwaitingOperand,
		HistoryLen:      snap.HistoryLen,
	}
}

// HistoryEntryToAPI converts a history entry to its API form.
func HistoryEntryToAPI(entry history.Entry) calculatorv1.HistoryEntry {
	return calculatorv1.HistoryEntry{
		ID:         entry.ID,
		Expression: entry.Expression,
		Result:     entry.Result,
		CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

var _ calculatorv1.CalculatorServiceServer = (*Service)(nil)
