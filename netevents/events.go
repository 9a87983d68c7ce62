// Package netevents drives the transient network-wide fee events and the
// periodic network statistics recompute. At most one event is active at a
// time; its multiplier composes multiplicatively with the governance base
// multiplier.
package netevents

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/nexuslabs/nexus-agents/core"
)

// Spawn delay bounds while no event is active.
const (
	minSpawnDelay = 40 * time.Second
	spawnJitter   = 40 * time.Second
)

// Catalog returns the fixed set of event templates.
func Catalog() []core.NetworkEvent {
	return []core.NetworkEvent{
		{
			ID:          "EVT-1",
			Title:       "Network Congestion",
			Description: "High traffic volume. Transaction fees increased.",
			Kind:        core.EventCongestion,
			Multiplier:  1.5,
			Duration:    30 * time.Second,
		},
		{
			ID:          "EVT-2",
			Title:       "Consensus Upgrade",
			Description: "Network optimization. Transaction fees reduced.",
			Kind:        core.EventUpgrade,
			Multiplier:  0.7,
			Duration:    45 * time.Second,
		},
		{
			ID:          "EVT-3",
			Title:       "HCS Anomaly",
			Description: "Message bus delays. Minor fee fluctuation.",
			Kind:        core.EventAnomaly,
			Multiplier:  1.1,
			Duration:    20 * time.Second,
		},
	}
}

// Generator owns the single active event and its spawn schedule.
type Generator struct {
	catalog     []core.NetworkEvent
	active      *core.ActiveNetworkEvent
	nextSpawnAt time.Time
	rng         *rand.Rand
	now         func() time.Time
}

func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	return &Generator{catalog: Catalog(), rng: rng, now: now}
}

// Poll advances the event lifecycle one check: it expires a due event, or
// spawns a new one once the idle delay has elapsed. Returned entries are
// the log lines the transition produced.
func (g *Generator) Poll() []core.ActivityEntry {
	now := g.now()

	if g.active != nil {
		if now.After(g.active.ExpiresAt) {
			ended := g.active
			g.active = nil
			g.nextSpawnAt = time.Time{}
			return []core.ActivityEntry{{
				Message:   fmt.Sprintf("Network Event Ended: %s", ended.Title),
				Severity:  core.SeverityInfo,
				Timestamp: now,
			}}
		}
		return nil
	}

	if g.nextSpawnAt.IsZero() {
		g.nextSpawnAt = now.Add(minSpawnDelay + time.Duration(g.rng.Int63n(int64(spawnJitter))))
		return nil
	}
	if now.Before(g.nextSpawnAt) {
		return nil
	}

	evt := g.catalog[g.rng.Intn(len(g.catalog))]
	g.active = &core.ActiveNetworkEvent{
		NetworkEvent: evt,
		ExpiresAt:    now.Add(evt.Duration),
	}
	g.nextSpawnAt = time.Time{}
	return []core.ActivityEntry{{
		Message:   fmt.Sprintf("NETWORK EVENT: %s - %s", evt.Title, evt.Description),
		Severity:  core.SeverityInfo,
		Timestamp: now,
	}}
}

// Active returns a copy of the active event, or nil.
func (g *Generator) Active() *core.ActiveNetworkEvent {
	if g.active == nil {
		return nil
	}
	evt := *g.active
	return &evt
}

// Multiplier is the active event's fee multiplier, 1.0 when none is active.
func (g *Generator) Multiplier() float64 {
	if g.active == nil {
		return 1.0
	}
	return g.active.Multiplier
}

// Restore reinstates a persisted event. An event whose expiry has already
// elapsed is discarded rather than reactivated.
func (g *Generator) Restore(evt *core.ActiveNetworkEvent) {
	if evt == nil || !g.now().Before(evt.ExpiresAt) {
		g.active = nil
		return
	}
	copied := *evt
	g.active = &copied
}
