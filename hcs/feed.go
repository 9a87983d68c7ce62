// Package hcs simulates the append-only broadcast message bus between
// agents. Broadcasts are retained in a bounded newest-first feed for the
// dashboard and, when a bus connection is configured, republished on NATS
// so external consumers can tap the stream.
package hcs

import (
	"encoding/json"
	"log"

	"github.com/nexuslabs/nexus-agents/core"
)

// DefaultCapacity matches the dashboard's message scrollback.
const DefaultCapacity = 50

// Feed holds recent broadcasts, newest first.
type Feed struct {
	messages  []core.HCSMessage
	capacity  int
	messenger *Messenger
}

// NewFeed creates a feed. messenger may be nil, in which case broadcasts
// are only retained locally.
func NewFeed(capacity int, messenger *Messenger) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity, messenger: messenger}
}

// Submit records one broadcast and republishes it on the bus. A publish
// failure is logged, never surfaced: the simulated topic has no delivery
// guarantee to uphold.
func (f *Feed) Submit(msg core.HCSMessage) {
	f.messages = append([]core.HCSMessage{msg}, f.messages...)
	if len(f.messages) > f.capacity {
		f.messages = f.messages[:f.capacity]
	}
	if f.messenger != nil {
		payload, err := json.Marshal(msg)
		if err == nil {
			err = f.messenger.Publish(SubjectBroadcast, payload)
		}
		if err != nil {
			log.Printf("hcs: failed to publish broadcast from %s: %v", msg.AgentID, err)
		}
	}
}

// Messages returns a copy of the feed, newest first.
func (f *Feed) Messages() []core.HCSMessage {
	out := make([]core.HCSMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

// Replace swaps in restored messages at the persistence boundary.
func (f *Feed) Replace(messages []core.HCSMessage) {
	if len(messages) > f.capacity {
		messages = messages[:f.capacity]
	}
	f.messages = make([]core.HCSMessage, len(messages))
	copy(f.messages, messages)
}
