package governance

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/nexuslabs/nexus-agents/core"
)

// testClock is a manually advanced wall clock.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService() (*Service, *testClock) {
	clock := &testClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	return NewService(rand.New(rand.NewSource(1)), clock.now), clock
}

// pollUntilProposal drives Poll past the randomized creation delay.
func pollUntilProposal(t *testing.T, s *Service, clock *testClock) {
	t.Helper()
	for i := 0; i < 200; i++ {
		s.Poll()
		if s.Proposal() != nil {
			return
		}
		clock.advance(time.Second)
	}
	t.Fatal("no proposal created after 200s of polling")
}

func TestFirstPollOnlySchedulesCreation(t *testing.T) {
	s, _ := newTestService()
	if logs := s.Poll(); logs != nil {
		t.Fatalf("first poll produced logs: %+v", logs)
	}
	if s.Proposal() != nil {
		t.Fatal("proposal created before the idle delay elapsed")
	}
}

func TestProposalIsCreatedAfterIdleDelay(t *testing.T) {
	s, clock := newTestService()
	s.Poll()

	// Creation is delayed at least a minute and at most two.
	clock.advance(59 * time.Second)
	s.Poll()
	if s.Proposal() != nil {
		t.Fatal("proposal created before the minimum delay")
	}

	clock.advance(62 * time.Second)
	logs := s.Poll()
	p := s.Proposal()
	if p == nil {
		t.Fatal("expected a proposal after the maximum delay")
	}
	if p.Status != core.ProposalActive {
		t.Fatalf("proposal status = %q, want active", p.Status)
	}
	if !strings.HasPrefix(p.ID, "PROP-") {
		t.Fatalf("proposal id = %q, want PROP- prefix", p.ID)
	}
	if !p.ExpiresAt.Equal(p.CreatedAt.Add(2 * time.Minute)) {
		t.Fatalf("voting window = %v", p.ExpiresAt.Sub(p.CreatedAt))
	}
	if len(logs) != 1 || !strings.Contains(logs[0].Message, "New Governance Proposal") {
		t.Fatalf("unexpected creation logs %+v", logs)
	}
}

func TestStakeWeightedTallyDecidesOutcome(t *testing.T) {
	s, clock := newTestService()
	pollUntilProposal(t, s, clock)

	// Two voters with 500 and 300 staked, voting yes and no.
	s.AddVotes(500, 0)
	s.AddVotes(0, 300)
	p := s.Proposal()
	if p.VotesFor != 500 || p.VotesAgainst != 300 {
		t.Fatalf("tally = %d/%d, want 500/300", p.VotesFor, p.VotesAgainst)
	}

	clock.advance(2*time.Minute + time.Second)
	logs := s.Poll()
	if got := s.Proposal().Status; got != core.ProposalPassed {
		t.Fatalf("status = %q, want passed", got)
	}
	if len(logs) != 1 || logs[0].Severity != core.SeveritySuccess {
		t.Fatalf("unexpected pass logs %+v", logs)
	}
}

func TestTiedTallyFails(t *testing.T) {
	s, clock := newTestService()
	pollUntilProposal(t, s, clock)

	s.AddVotes(300, 300)
	clock.advance(2*time.Minute + time.Second)
	logs := s.Poll()
	if got := s.Proposal().Status; got != core.ProposalFailed {
		t.Fatalf("status = %q, want failed on a tie", got)
	}
	if len(logs) != 1 || logs[0].Severity != core.SeverityError {
		t.Fatalf("unexpected fail logs %+v", logs)
	}
}

func TestExecutedProposalUpdatesBaseMultiplier(t *testing.T) {
	s, clock := newTestService()
	pollUntilProposal(t, s, clock)
	want := s.Proposal().Effect.Value

	s.AddVotes(100, 0)
	clock.advance(2*time.Minute + time.Second)
	s.Poll() // active -> passed

	// Execution only happens after the short apply delay.
	s.Poll()
	if s.BaseMultiplier() != 1.0 {
		t.Fatal("multiplier changed before the execute delay")
	}
	clock.advance(3 * time.Second)
	logs := s.Poll()
	if got := s.Proposal().Status; got != core.ProposalExecuted {
		t.Fatalf("status = %q, want executed", got)
	}
	if s.BaseMultiplier() != want {
		t.Fatalf("multiplier = %v, want %v", s.BaseMultiplier(), want)
	}
	if len(logs) != 1 || !strings.Contains(logs[0].Message, "Fee Multiplier") {
		t.Fatalf("unexpected execute logs %+v", logs)
	}

	// The slot clears after the grace period, then a new cycle schedules.
	clock.advance(11 * time.Second)
	s.Poll()
	if s.Proposal() != nil {
		t.Fatal("executed proposal was not removed")
	}
	if s.BaseMultiplier() != want {
		t.Fatal("removal reset the base multiplier")
	}
}

func TestFailedProposalLeavesMultiplierAlone(t *testing.T) {
	s, clock := newTestService()
	pollUntilProposal(t, s, clock)

	clock.advance(2*time.Minute + time.Second)
	s.Poll() // no votes: fails
	if s.BaseMultiplier() != 1.0 {
		t.Fatalf("multiplier = %v, want untouched 1.0", s.BaseMultiplier())
	}
	clock.advance(11 * time.Second)
	s.Poll()
	if s.Proposal() != nil {
		t.Fatal("failed proposal was not removed")
	}
}

func TestVotesIgnoredOnceVotingCloses(t *testing.T) {
	s, clock := newTestService()
	pollUntilProposal(t, s, clock)

	clock.advance(2*time.Minute + time.Second)
	s.Poll()
	s.AddVotes(1000, 0)
	p := s.Proposal()
	if p.VotesFor != 0 {
		t.Fatalf("late votes were counted: %d", p.VotesFor)
	}
}

func TestProposalAccessorReturnsACopy(t *testing.T) {
	s, clock := newTestService()
	pollUntilProposal(t, s, clock)

	p := s.Proposal()
	p.VotesFor = 9999
	if s.Proposal().VotesFor != 0 {
		t.Fatal("mutating the returned proposal changed the service state")
	}
}

func TestRestoreReinstatesStateAndTimers(t *testing.T) {
	s, clock := newTestService()
	s.Restore(&core.GovernanceProposal{
		ID:     "PROP-restored",
		Status: core.ProposalPassed,
		Effect: core.ProposalEffect{Type: core.EffectFeeMultiplier, Value: 0.8},
	}, 1.2)

	if s.BaseMultiplier() != 1.2 {
		t.Fatalf("restored multiplier = %v, want 1.2", s.BaseMultiplier())
	}
	clock.advance(3 * time.Second)
	s.Poll()
	if got := s.Proposal().Status; got != core.ProposalExecuted {
		t.Fatalf("restored passed proposal did not execute, status %q", got)
	}
	if s.BaseMultiplier() != 0.8 {
		t.Fatalf("multiplier = %v, want 0.8 after execution", s.BaseMultiplier())
	}
}

func TestRestoreWithZeroMultiplierKeepsDefault(t *testing.T) {
	s, _ := newTestService()
	s.Restore(nil, 0)
	if s.BaseMultiplier() != 1.0 {
		t.Fatalf("multiplier = %v, want default 1.0", s.BaseMultiplier())
	}
}
