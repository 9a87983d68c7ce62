package simulation

import (
	"github.com/nexuslabs/nexus-agents/core"
)

// Snapshot captures the full observable state for persistence.
func (s *Simulation) Snapshot() *core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() *core.Snapshot {
	return &core.Snapshot{
		Version:           core.SnapshotVersion,
		SavedAt:           s.now(),
		Agents:            copyAgents(s.agents),
		Ledger:            s.ledger.All(),
		ActivityLogs:      s.log.Entries(),
		HCSMessages:       s.feed.Messages(),
		Oracle:            s.oracle.Data(),
		Proposal:          s.gov.Proposal(),
		NetworkEvent:      s.events.Active(),
		BaseFeeMultiplier: s.gov.BaseMultiplier(),
		Stats:             s.stats.Current(),
	}
}

// Restore reinstates a persisted snapshot. Agents restored mid-schedule
// simply re-evaluate on the next tick; a network event whose expiry already
// elapsed is discarded rather than reactivated.
func (s *Simulation) Restore(snap *core.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agents = copyAgents(snap.Agents)
	for i := range s.agents {
		if s.agents[i].Memory == nil {
			s.agents[i].Memory = map[string]interface{}{}
		}
		if s.agents[i].Level == 0 {
			s.agents[i].Level = core.LevelForXP(s.agents[i].XP)
		}
		// An agent persisted before its workflow arrived has no workflow to
		// wait for anymore.
		if s.agents[i].Status == core.AgentInitializing {
			s.agents[i].Status = core.AgentError
		}
	}
	s.ledger.Replace(snap.Ledger)
	s.log.Replace(snap.ActivityLogs)
	s.feed.Replace(snap.HCSMessages)
	s.oracle.Restore(snap.Oracle)
	s.gov.Restore(snap.Proposal, snap.BaseFeeMultiplier)
	s.events.Restore(snap.NetworkEvent)
	s.stats.Restore(snap.Stats)
}
