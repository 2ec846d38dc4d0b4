package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/tally/internal/core/calc"
)

func TestRound(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 0, want: "0"},
		{value: 5, want: "5"},
		{value: 0.1 + 0.2, want: "0.3"},
		{value: 2.0 / 3.0, want: "0.6666666667"},
		{value: -2.0 / 3.0, want: "-0.6666666667"},
		{value: 1234567890123, want: "1234567890000"},
		{value: 0.00000001234, want: "0.00000001234"},
		{value: 123.456, want: "123.456"},
	}
	for _, tt := range tests {
		if got := Round(tt.value); got != tt.want {
			t.Errorf("Round(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := NewEntry("e1", calc.Fold{Left: 1, Right: 3, Operator: calc.OperatorDivide, Result: 1.0 / 3.0}, now)

	if entry.Expression != "1 ÷ 3" {
		t.Fatalf("expression = %q, want %q", entry.Expression, "1 ÷ 3")
	}
	if entry.Result != "0.3333333333" {
		t.Fatalf("result = %q, want %q", entry.Result, "0.3333333333")
	}
	if entry.ID != "e1" || !entry.CreatedAt.Equal(now) {
		t.Fatalf("unexpected entry metadata: %+v", entry)
	}
}

func TestLogAppendNewestFirst(t *testing.T) {
	log := NewLog(0)
	log.Append(Entry{ID: "a"})
	log.Append(Entry{ID: "b"})

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != "b" || entries[1].ID != "a" {
		t.Fatalf("order = [%s %s], want [b a]", entries[0].ID, entries[1].ID)
	}
}

func TestLogEvictsOldestBeyondCapacity(t *testing.T) {
	log := NewLog(DefaultCapacity)
	for i := 0; i < DefaultCapacity+1; i++ {
		log.Append(Entry{ID: fmt.Sprintf("e%d", i)})
	}

	if log.Len() != DefaultCapacity {
		t.Fatalf("len = %d, want %d", log.Len(), DefaultCapacity)
	}
	if _, ok := log.Find("e0"); ok {
		t.Fatal("expected first appended entry to be evicted")
	}
	entries := log.Entries()
	if entries[0].ID != "e50" {
		t.Fatalf("newest = %q, want e50", entries[0].ID)
	}
	if entries[len(entries)-1].ID != "e1" {
		t.Fatalf("oldest = %q, want e1", entries[len(entries)-1].ID)
	}
}

func TestLogEntriesReturnsCopy(t *testing.T) {
	log := NewLog(2)
	log.Append(Entry{ID: "a", Result: "1"})

	entries := log.Entries()
	entries[0].Result = "changed"

	got, ok := log.Find("a")
	if !ok {
		t.Fatal("expected entry a")
	}
	if got.Result != "1" {
		t.Fatalf("result = %q, want 1", got.Result)
	}
}

func TestLogClearAndRestore(t *testing.T) {
	log := NewLog(5)
	entry := Entry{ID: "a", Expression: "2 + 3", Result: "5"}
	log.Append(entry)

	if got := log.Restore(entry); got != "5" {
		t.Fatalf("restore = %q, want 5", got)
	}

	log.Clear()
	if log.Len() != 0 {
		t.Fatalf("len after clear = %d, want 0", log.Len())
	}
	if _, ok := log.Find("a"); ok {
		t.Fatal("expected entry to be gone after clear")
	}
}
