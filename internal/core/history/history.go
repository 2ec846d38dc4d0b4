// Package history keeps the bounded log of completed calculations.
package history

import (
	"time"

	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/shopspring/decimal"
)

// DefaultCapacity is the number of entries a log retains.
const DefaultCapacity = 50

// significantDigits bounds operands and results recorded in entries.
const significantDigits = 10

// Entry records one completed fold. Entries are never modified.
type Entry struct {
	ID         string
	Expression string
	Result     string
	CreatedAt  time.Time
}

// NewEntry builds the entry for a fold, e.g. "2 + 3" = "5".
func NewEntry(id string, fold calc.Fold, createdAt time.Time) Entry {
	return Entry{
		ID:         id,
		Expression: Round(fold.Left) + " " + fold.Operator.Symbol() + " " + Round(fold.Right),
		Result:     Round(fold.Result),
		CreatedAt:  createdAt,
	}
}

// Round renders value rounded to 10 significant digits as a plain numeral.
func Round(value float64) string {
	if value == 0 {
		return "0"
	}
	d := decimal.NewFromFloat(value)
	integerDigits := int(d.NumDigits()) + int(d.Exponent())
	return d.Round(int32(significantDigits - integerDigits)).String()
}

// Log is an ordered, newest-first sequence of entries with a fixed capacity.
// It is not safe for concurrent use; the owning session serializes access.
type Log struct {
	entries  []Entry
	capacity int
}

// NewLog creates an empty log. A non-positive capacity uses DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append prepends entry and evicts the oldest entry beyond capacity.
func (l *Log) Append(entry Entry) {
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
}

// Clear removes every entry.
func (l *Log) Clear() {
	l.entries = nil
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Capacity returns the maximum number of retained entries.
func (l *Log) Capacity() int {
	return l.capacity
}

// Entries returns a copy of the entries, newest first.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Find looks up an entry by id.
func (l *Log) Find(id string) (Entry, bool) {
	for _, entry := range l.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Restore returns the value an entry puts back on the display.
func (l *Log) Restore(entry Entry) string {
	return entry.Result
}
