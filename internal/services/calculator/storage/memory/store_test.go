package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/tally/internal/services/calculator/storage"
	"github.com/louisbranch/tally/internal/session"
)

func TestStoreCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	record := storage.SessionRecord{ID: "s1", Session: session.New(), CreatedAt: now}

	if err := store.CreateSession(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateSession(ctx, record); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want ErrAlreadyExists", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Session != record.Session {
		t.Fatal("expected the stored session pointer")
	}

	if err := store.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetSession(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteSession(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreExpireSessions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return base.Add(time.Hour) }

	for _, id := range []string{"old", "fresh"} {
		if err := store.CreateSession(ctx, storage.SessionRecord{ID: id, Session: session.New(), CreatedAt: base}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := store.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("touch fresh: %v", err)
	}

	removed, err := store.ExpireSessions(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if removed != 1 || store.Len() != 1 {
		t.Fatalf("removed = %d, remaining = %d; want 1 and 1", removed, store.Len())
	}
	if _, err := store.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
}
