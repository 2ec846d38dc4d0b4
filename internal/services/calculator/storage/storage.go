// Package storage defines the session registry contract for the calculator
// service.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/tally/internal/session"
)

var (
	// ErrNotFound indicates a requested session is missing.
	ErrNotFound = errors.New("session not found")
	// ErrAlreadyExists indicates a session id is already registered.
	ErrAlreadyExists = errors.New("session already exists")
)

// SessionRecord is one registered calculator session.
type SessionRecord struct {
	ID        string
	Session   *session.Session
	CreatedAt time.Time
	// LastUsedAt is refreshed on every lookup.
	LastUsedAt time.Time
}

// SessionStore keeps calculator sessions for the lifetime of the process.
type SessionStore interface {
	CreateSession(ctx context.Context, record SessionRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
	// ExpireSessions removes sessions unused since before cutoff and returns
	// how many were removed.
	ExpireSessions(ctx context.Context, cutoff time.Time) (int, error)
}
