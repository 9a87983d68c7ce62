package netevents

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/nexuslabs/nexus-agents/core"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGenerator() (*Generator, *testClock) {
	clock := &testClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	return NewGenerator(rand.New(rand.NewSource(1)), clock.now), clock
}

func pollUntilActive(t *testing.T, g *Generator, clock *testClock) core.ActiveNetworkEvent {
	t.Helper()
	for i := 0; i < 200; i++ {
		g.Poll()
		if evt := g.Active(); evt != nil {
			return *evt
		}
		clock.advance(time.Second)
	}
	t.Fatal("no event spawned after 200s of polling")
	return core.ActiveNetworkEvent{}
}

func TestNoEventBeforeSpawnDelay(t *testing.T) {
	g, clock := newTestGenerator()
	g.Poll() // schedules only
	clock.advance(39 * time.Second)
	if logs := g.Poll(); logs != nil || g.Active() != nil {
		t.Fatal("event spawned before the minimum idle delay")
	}
	if g.Multiplier() != 1.0 {
		t.Fatalf("idle multiplier = %v, want 1.0", g.Multiplier())
	}
}

func TestSpawnedEventComesFromCatalog(t *testing.T) {
	g, clock := newTestGenerator()
	evt := pollUntilActive(t, g, clock)

	found := false
	for _, tpl := range Catalog() {
		if tpl.ID == evt.ID {
			found = true
			if evt.Multiplier != tpl.Multiplier {
				t.Fatalf("event multiplier = %v, want %v", evt.Multiplier, tpl.Multiplier)
			}
			if !evt.ExpiresAt.Equal(clock.now().Add(tpl.Duration)) {
				t.Fatalf("event expiry = %v, want now+%v", evt.ExpiresAt, tpl.Duration)
			}
		}
	}
	if !found {
		t.Fatalf("active event %q is not in the catalog", evt.ID)
	}
	if g.Multiplier() != evt.Multiplier {
		t.Fatalf("generator multiplier = %v, want %v", g.Multiplier(), evt.Multiplier)
	}
}

func TestEventExpiresAndLogsEnd(t *testing.T) {
	g, clock := newTestGenerator()
	evt := pollUntilActive(t, g, clock)

	// Still active one second before expiry.
	clock.t = evt.ExpiresAt.Add(-time.Second)
	if logs := g.Poll(); logs != nil {
		t.Fatalf("event ended early: %+v", logs)
	}

	clock.t = evt.ExpiresAt.Add(time.Second)
	logs := g.Poll()
	if g.Active() != nil {
		t.Fatal("event still active after expiry")
	}
	if g.Multiplier() != 1.0 {
		t.Fatalf("multiplier = %v after expiry, want 1.0", g.Multiplier())
	}
	if len(logs) != 1 || !strings.Contains(logs[0].Message, "Network Event Ended") {
		t.Fatalf("unexpected end logs %+v", logs)
	}
}

func TestOnlyOneEventActiveAtATime(t *testing.T) {
	g, clock := newTestGenerator()
	first := pollUntilActive(t, g, clock)

	// Polling while active never spawns a second event.
	clock.advance(time.Second)
	g.Poll()
	active := g.Active()
	if active == nil || active.ID != first.ID {
		t.Fatalf("active event changed mid-flight: %+v", active)
	}
}

func TestRestoreDiscardsExpiredEvent(t *testing.T) {
	g, clock := newTestGenerator()
	g.Restore(&core.ActiveNetworkEvent{
		NetworkEvent: Catalog()[0],
		ExpiresAt:    clock.now().Add(-time.Second),
	})
	if g.Active() != nil {
		t.Fatal("expired event was reactivated")
	}

	g.Restore(&core.ActiveNetworkEvent{
		NetworkEvent: Catalog()[1],
		ExpiresAt:    clock.now().Add(30 * time.Second),
	})
	if active := g.Active(); active == nil || active.ID != "EVT-2" {
		t.Fatalf("live event was not restored: %+v", active)
	}
	if g.Multiplier() != 0.7 {
		t.Fatalf("restored multiplier = %v, want 0.7", g.Multiplier())
	}
}

func TestRecomputeRespectsFloors(t *testing.T) {
	s := NewStats(rand.New(rand.NewSource(1)))
	for i := 0; i < 500; i++ {
		stats := s.Recompute(3, 800, 1.2)
		if stats.TPS < 10000 {
			t.Fatalf("tps = %d fell below the floor", stats.TPS)
		}
		if stats.ConsensusTime < 1.5 {
			t.Fatalf("consensus time = %v fell below the floor", stats.ConsensusTime)
		}
		if stats.ActiveAgents != 3 || stats.TotalStaked != 800 || stats.FeeMultiplier != 1.2 {
			t.Fatalf("aggregates not folded in: %+v", stats)
		}
	}
}

func TestAddFeesAccumulates(t *testing.T) {
	s := NewStats(rand.New(rand.NewSource(1)))
	s.AddFees(0.5)
	s.AddFees(0.25)
	if got := s.Current().TotalFees; got < 0.75-1e-9 || got > 0.75+1e-9 {
		t.Fatalf("total fees = %v, want 0.75", got)
	}
}

func TestRestoreReseedsZeroMetrics(t *testing.T) {
	s := NewStats(rand.New(rand.NewSource(1)))
	s.Restore(core.NetworkStats{TotalFees: 1.5})
	got := s.Current()
	if got.TPS != 12456 || got.ConsensusTime != 2.1 || got.FeeMultiplier != 1.0 {
		t.Fatalf("zero metrics not reseeded: %+v", got)
	}
	if got.TotalFees != 1.5 {
		t.Fatalf("restored fees = %v, want 1.5", got.TotalFees)
	}
}
