// Package governance runs the proposal lifecycle: creation after an idle
// delay, a fixed voting window with stake-weighted tallies, resolution at
// expiry, delayed effect application for passed proposals, and removal
// after a grace period. It also owns the persistent base fee multiplier
// that executed proposals replace.
package governance

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/nexuslabs/nexus-agents/core"
)

const (
	minCreateDelay = 60 * time.Second
	createJitter   = 60 * time.Second
	votingWindow   = 2 * time.Minute
	executeDelay   = 2 * time.Second
	removalDelay   = 10 * time.Second
)

type template struct {
	title       string
	description string
	value       float64
}

var templates = []template{
	{"NIP-42: Reduce Network Fees", "Lower transaction fees by 20% to stimulate activity.", 0.8},
	{"NIP-43: Increase Validator Rewards", "Increase fees by 20% to secure the network.", 1.2},
	{"NIP-44: Optimization Patch", "Slight fee reduction for optimized smart contracts.", 0.95},
}

// Service owns the single proposal slot and the base fee multiplier.
type Service struct {
	proposal       *core.GovernanceProposal
	baseMultiplier float64

	nextCreateAt time.Time
	executeAt    time.Time
	removeAt     time.Time

	rng *rand.Rand
	now func() time.Time
}

func NewService(rng *rand.Rand, now func() time.Time) *Service {
	return &Service{baseMultiplier: 1.0, rng: rng, now: now}
}

// Poll advances the proposal lifecycle one check and returns the log lines
// any transition produced.
func (s *Service) Poll() []core.ActivityEntry {
	now := s.now()

	if s.proposal == nil {
		if s.nextCreateAt.IsZero() {
			s.nextCreateAt = now.Add(minCreateDelay + time.Duration(s.rng.Int63n(int64(createJitter))))
			return nil
		}
		if now.Before(s.nextCreateAt) {
			return nil
		}
		tpl := templates[s.rng.Intn(len(templates))]
		s.proposal = &core.GovernanceProposal{
			ID:          fmt.Sprintf("PROP-%s", uuid.NewString()[:8]),
			Title:       tpl.title,
			Description: tpl.description,
			CreatedAt:   now,
			ExpiresAt:   now.Add(votingWindow),
			Status:      core.ProposalActive,
			Effect:      core.ProposalEffect{Type: core.EffectFeeMultiplier, Value: tpl.value},
		}
		s.nextCreateAt = time.Time{}
		return []core.ActivityEntry{{
			Message:   fmt.Sprintf("New Governance Proposal Created: %s", tpl.title),
			Severity:  core.SeverityInfo,
			Timestamp: now,
		}}
	}

	switch s.proposal.Status {
	case core.ProposalActive:
		if now.Before(s.proposal.ExpiresAt) {
			return nil
		}
		if s.proposal.VotesFor > s.proposal.VotesAgainst {
			s.proposal.Status = core.ProposalPassed
			s.executeAt = now.Add(executeDelay)
			return []core.ActivityEntry{{
				Message:   fmt.Sprintf("Proposal %s PASSED. Executing changes...", s.proposal.ID),
				Severity:  core.SeveritySuccess,
				Timestamp: now,
			}}
		}
		s.proposal.Status = core.ProposalFailed
		s.removeAt = now.Add(removalDelay)
		return []core.ActivityEntry{{
			Message:   fmt.Sprintf("Proposal %s FAILED.", s.proposal.ID),
			Severity:  core.SeverityError,
			Timestamp: now,
		}}

	case core.ProposalPassed:
		if now.Before(s.executeAt) {
			return nil
		}
		s.baseMultiplier = s.proposal.Effect.Value
		s.proposal.Status = core.ProposalExecuted
		s.removeAt = now.Add(removalDelay)
		return []core.ActivityEntry{{
			Message:   fmt.Sprintf("Network Fee Multiplier updated to %gx", s.baseMultiplier),
			Severity:  core.SeveritySuccess,
			Timestamp: now,
		}}

	case core.ProposalExecuted, core.ProposalFailed:
		if now.Before(s.removeAt) {
			return nil
		}
		s.proposal = nil
	}
	return nil
}

// AddVotes folds engine-tallied vote deltas into the active proposal.
// Voting power is whatever stake the engine observed at tally time; deltas
// from agents voting in the same tick arrive pre-summed.
func (s *Service) AddVotes(votesFor, votesAgainst int) {
	if s.proposal == nil || s.proposal.Status != core.ProposalActive {
		return
	}
	s.proposal.VotesFor += votesFor
	s.proposal.VotesAgainst += votesAgainst
}

// Proposal returns a copy of the current proposal, or nil.
func (s *Service) Proposal() *core.GovernanceProposal {
	if s.proposal == nil {
		return nil
	}
	p := *s.proposal
	return &p
}

// BaseMultiplier is the persistent fee multiplier set by the last executed
// proposal, 1.0 by default.
func (s *Service) BaseMultiplier() float64 {
	return s.baseMultiplier
}

// Restore reinstates persisted governance state.
func (s *Service) Restore(proposal *core.GovernanceProposal, baseMultiplier float64) {
	if baseMultiplier > 0 {
		s.baseMultiplier = baseMultiplier
	}
	if proposal == nil {
		s.proposal = nil
		return
	}
	p := *proposal
	s.proposal = &p
	now := s.now()
	switch p.Status {
	case core.ProposalPassed:
		s.executeAt = now.Add(executeDelay)
	case core.ProposalExecuted, core.ProposalFailed:
		s.removeAt = now.Add(removalDelay)
	}
}
