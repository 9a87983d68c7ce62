// Package activity keeps the bounded, newest-first feed of human-readable
// simulation events.
package activity

import (
	"time"

	"github.com/nexuslabs/nexus-agents/core"
)

// DefaultCapacity matches the dashboard's scrollback.
const DefaultCapacity = 200

// Log is an append-only, capacity-bounded event feed. New entries go to the
// front; entries beyond the capacity are discarded.
type Log struct {
	entries  []core.ActivityEntry
	capacity int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append prepends one entry, stamping the timestamp if unset.
func (l *Log) Append(entry core.ActivityEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	l.entries = append([]core.ActivityEntry{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
}

// Entries returns a copy of the feed, newest first.
func (l *Log) Entries() []core.ActivityEntry {
	out := make([]core.ActivityEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Replace swaps in restored entries at the persistence boundary.
func (l *Log) Replace(entries []core.ActivityEntry) {
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	l.entries = make([]core.ActivityEntry, len(entries))
	copy(l.entries, entries)
}
