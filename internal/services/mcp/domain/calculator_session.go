package domain

import (
	"context"
	"fmt"
	"sync"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	apperrors "github.com/louisbranch/tally/internal/platform/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// SessionSource owns the calculator session an MCP server drives. The
// session is created on first use and recreated when the calculator service
// no longer knows it.
type SessionSource struct {
	client calculatorv1.CalculatorServiceClient

	mu sync.Mutex
	id string
}

// NewSessionSource creates a source backed by client.
func NewSessionSource(client calculatorv1.CalculatorServiceClient) *SessionSource {
	return &SessionSource{client: client}
}

// Current returns the active session id without creating one.
func (s *SessionSource) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// ID returns the active session id, creating a session when none exists.
func (s *SessionSource) ID(ctx context.Context, invocationID string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("calculator client is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" {
		return s.id, nil
	}

	callCtx, _, err := NewOutgoingContext(ctx, invocationID)
	if err != nil {
		return "", fmt.Errorf("create request metadata: %w", err)
	}
	resp, err := s.client.CreateSession(callCtx, &calculatorv1.CreateSessionRequest{})
	if err != nil {
		return "", fmt.Errorf("create calculator session: %s", apperrors.UserMessageFromStatus(err))
	}
	if resp == nil || resp.Session.ID == "" {
		return "", fmt.Errorf("create calculator session: response is missing")
	}
	s.id = resp.Session.ID
	return s.id, nil
}

// Forget drops sessionID if it is still the active session.
func (s *SessionSource) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == sessionID {
		s.id = ""
	}
}

// Close ends the active session on the calculator service.
func (s *SessionSource) Close(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.id
	s.id = ""
	s.mu.Unlock()
	if sessionID == "" || s.client == nil {
		return nil
	}

	callCtx, _, err := NewOutgoingContext(ctx, "")
	if err != nil {
		return fmt.Errorf("create request metadata: %w", err)
	}
	_, err = s.client.CloseSession(callCtx, &calculatorv1.CloseSessionRequest{SessionID: sessionID})
	if err != nil && !apperrors.IsCode(err, apperrors.CodeSessionNotFound) {
		return fmt.Errorf("close calculator session: %s", apperrors.UserMessageFromStatus(err))
	}
	return nil
}

// callWithSession runs call against the active session. A session the
// service has expired is replaced once and the call retried.
func callWithSession[Resp any](
	ctx context.Context,
	sessions *SessionSource,
	invocationID string,
	call func(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*Resp, error),
) (*Resp, ToolCallMetadata, error) {
	for attempt := 0; ; attempt++ {
		sessionID, err := sessions.ID(ctx, invocationID)
		if err != nil {
			return nil, ToolCallMetadata{}, err
		}

		callCtx, sent, err := NewOutgoingContext(ctx, invocationID)
		if err != nil {
			return nil, ToolCallMetadata{}, fmt.Errorf("create request metadata: %w", err)
		}

		var header metadata.MD
		resp, err := call(callCtx, sessionID, grpc.Header(&header))
		meta := MergeResponseMetadata(sent, header)
		if err == nil {
			if resp == nil {
				return nil, meta, fmt.Errorf("calculator response is missing")
			}
			return resp, meta, nil
		}
		if attempt == 0 && apperrors.IsCode(err, apperrors.CodeSessionNotFound) {
			sessions.Forget(sessionID)
			continue
		}
		return nil, meta, fmt.Errorf("%s", apperrors.UserMessageFromStatus(err))
	}
}
