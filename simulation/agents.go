package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/nexuslabs/nexus-agents/core"
)

// DeployAgent funds and registers a new agent, then generates its workflow
// in the background. The agent stays in initializing until the generator
// answers: a valid workflow starts the mission, anything else is a terminal
// error with no partial workflow accepted.
func (s *Simulation) DeployAgent(taskDescription string) core.Agent {
	s.mu.Lock()
	agentID := fmt.Sprintf("Nexus-%d", 100+s.rng.Intn(900))
	balance := s.cfg.InitialBalance + s.rng.Float64()*s.cfg.BalanceJitter
	agent := core.Agent{
		ID:              agentID,
		TaskDescription: taskDescription,
		Status:          core.AgentInitializing,
		Steps:           []core.Step{},
		Balance:         balance,
		Memory:          map[string]interface{}{},
		Level:           1,
	}
	s.agents = append(s.agents, agent)
	s.ledger.Register(agentID, s.cfg.GovAirdrop)

	s.appendLog(core.ActivityEntry{
		Message:  fmt.Sprintf("Deploying new agent %s...", agentID),
		Severity: core.SeverityInfo,
	})
	s.appendLog(core.ActivityEntry{
		Message:  fmt.Sprintf("[%s] Wallet funded: ħ%.4f.", agentID, balance),
		Severity: core.SeverityInfo,
		AgentID:  agentID,
	})
	s.appendLog(core.ActivityEntry{
		Message:  fmt.Sprintf("[%s] Airdropped %d NEX-GOV tokens.", agentID, s.cfg.GovAirdrop),
		Severity: core.SeverityInfo,
		AgentID:  agentID,
	})
	s.notify(EventAgentUpdated, agent)
	s.notify(EventLedgerUpdated, s.ledger.All())
	s.markDirty()
	s.mu.Unlock()

	go s.generateWorkflow(agentID, taskDescription)
	return agent
}

func (s *Simulation) generateWorkflow(agentID, taskDescription string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	steps, err := s.generator.GenerateWorkflow(ctx, taskDescription)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.agentIndex(agentID)
	if idx < 0 {
		return
	}
	// A stop that raced the generator wins; never resurrect an errored agent.
	if s.agents[idx].Status != core.AgentInitializing {
		return
	}

	if err != nil {
		s.agents[idx].Status = core.AgentError
		s.appendLog(core.ActivityEntry{
			Message:  fmt.Sprintf("[%s] Workflow generation failed. %v", agentID, err),
			Severity: core.SeverityError,
			AgentID:  agentID,
		})
	} else {
		s.agents[idx].Status = core.AgentRunning
		s.agents[idx].Steps = steps
		s.appendLog(core.ActivityEntry{
			Message:  fmt.Sprintf("[%s] Workflow generated. Mission Start.", agentID),
			Severity: core.SeveritySuccess,
			AgentID:  agentID,
		})
	}
	s.notify(EventAgentUpdated, s.agents[idx])
	s.markDirty()
}

// StopAgent irreversibly halts an agent. Any scheduled action becomes a
// no-op on its next evaluation; completed steps are not rolled back.
func (s *Simulation) StopAgent(agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.agentIndex(agentID)
	if idx < 0 {
		return fmt.Errorf("unknown agent %s", agentID)
	}
	if s.agents[idx].Status == core.AgentCompleted || s.agents[idx].Status == core.AgentError {
		return nil
	}
	s.agents[idx].Status = core.AgentError
	s.agents[idx].NextActionAt = time.Time{}
	s.appendLog(core.ActivityEntry{
		Message:  fmt.Sprintf("Agent %s stopped by operator.", agentID),
		Severity: core.SeverityInfo,
		AgentID:  agentID,
	})
	s.notify(EventAgentUpdated, s.agents[idx])
	s.markDirty()
	return nil
}

// Agents returns a copy of all agents in deployment order.
func (s *Simulation) Agents() []core.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAgents(s.agents)
}

// Agent returns one agent by id.
func (s *Simulation) Agent(agentID string) (core.Agent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.agentIndex(agentID)
	if idx < 0 {
		return core.Agent{}, false
	}
	return copyAgent(s.agents[idx]), true
}

// Ledger returns a copy of all agents' holdings.
func (s *Simulation) Ledger() map[string]core.Holdings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

// Oracle returns the current oracle data.
func (s *Simulation) Oracle() core.OracleData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.Data()
}

// Messages returns the recent HCS broadcasts, newest first.
func (s *Simulation) Messages() []core.HCSMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Messages()
}

// Proposal returns the current governance proposal, or nil.
func (s *Simulation) Proposal() *core.GovernanceProposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gov.Proposal()
}

// ActiveEvent returns the active network event, or nil.
func (s *Simulation) ActiveEvent() *core.ActiveNetworkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.Active()
}

// Stats returns the latest network metrics.
func (s *Simulation) Stats() core.NetworkStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Current()
}

// Activity returns the activity log, newest first.
func (s *Simulation) Activity() []core.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// TransactionDetails resolves a synthetic transaction id to its expanded
// dashboard view. Fees are displayed at the persistent base multiplier.
func (s *Simulation) TransactionDetails(txID string) (core.TransactionDetails, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, agent := range s.agents {
		for _, step := range agent.Steps {
			if step.TransactionID != txID {
				continue
			}
			return core.TransactionDetails{
				ID:                 txID,
				Status:             "SUCCESS",
				ConsensusTimestamp: s.now().UTC().Format(time.RFC3339Nano),
				Memo:               step.Name,
				Fee:                fmt.Sprintf("ħ%.6f", step.Cost*s.gov.BaseMultiplier()),
				AssetTransfers:     step.Transfers,
			}, true
		}
	}
	return core.TransactionDetails{}, false
}

func (s *Simulation) agentIndex(agentID string) int {
	for i, a := range s.agents {
		if a.ID == agentID {
			return i
		}
	}
	return -1
}

func copyAgents(agents []core.Agent) []core.Agent {
	out := make([]core.Agent, len(agents))
	for i, a := range agents {
		out[i] = copyAgent(a)
	}
	return out
}

func copyAgent(a core.Agent) core.Agent {
	a.Steps = append([]core.Step(nil), a.Steps...)
	memory := make(map[string]interface{}, len(a.Memory))
	for k, v := range a.Memory {
		memory[k] = v
	}
	a.Memory = memory
	return a
}
