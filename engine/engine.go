// Package engine advances every running agent's workflow state machine on a
// fixed tick. Each tick observes one consistent snapshot of shared state,
// stages every mutation in per-tick accumulators, and hands the batch back
// to the caller for an atomic commit, so no two agents ever see each
// other's same-tick effects interleaved.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/nexuslabs/nexus-agents/core"
)

// Config holds the pacing knobs of the per-agent state machine.
type Config struct {
	// StepStartDelay is the fixed latency before a pending step begins.
	StepStartDelay time.Duration
	// BaseStepDelay is the level-1 completion delay for an in-progress step.
	BaseStepDelay time.Duration
	// DelayPerLevel is subtracted from BaseStepDelay per level above 1.
	DelayPerLevel time.Duration
	// MinStepDelay floors the completion delay.
	MinStepDelay time.Duration
	// DelayJitter bounds the random addition to the completion delay.
	DelayJitter time.Duration
	// XPBase and XPJitter shape the experience gain per completed step.
	XPBase   int
	XPJitter int
}

func DefaultConfig() Config {
	return Config{
		StepStartDelay: time.Second,
		BaseStepDelay:  1500 * time.Millisecond,
		DelayPerLevel:  100 * time.Millisecond,
		MinStepDelay:   500 * time.Millisecond,
		DelayJitter:    500 * time.Millisecond,
		XPBase:         50,
		XPJitter:       50,
	}
}

// Engine holds the tick configuration and the injected randomness source.
// It carries no simulation state of its own; every tick works purely on the
// snapshot it is given.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config, rng *rand.Rand) *Engine {
	return &Engine{cfg: cfg, rng: rng}
}

// TickContext is the consistent snapshot a single tick runs against.
// Agents are in deployment order; Holdings is the pre-tick ledger view.
type TickContext struct {
	Now                 time.Time
	Agents              []core.Agent
	Holdings            map[string]core.Holdings
	Oracle              core.OracleData
	Proposal            *core.GovernanceProposal
	EffectiveMultiplier float64
}

// LedgerOp is one staged ledger mutation, applied at commit.
type LedgerOp interface {
	ledgerOp()
}

// MintNFTOp mints an NFT into an agent's holdings.
type MintNFTOp struct {
	AgentID string
	AssetID string
	Suffix  int
}

// TransferFTOp moves a fungible balance between two agents.
type TransferFTOp struct {
	From    string
	To      string
	TokenID string
	Amount  int
}

// StakeOp moves governance tokens from liquid to staked.
type StakeOp struct {
	AgentID string
	Amount  int
}

func (MintNFTOp) ledgerOp()    {}
func (TransferFTOp) ledgerOp() {}
func (StakeOp) ledgerOp()      {}

// TickResult accumulates everything one tick produced. Changed is false
// when no agent was ready to act, in which case the whole result is empty
// and the caller skips the commit.
type TickResult struct {
	Changed      bool
	Agents       map[string]core.Agent
	LedgerOps    []LedgerOp
	Logs         []core.ActivityEntry
	FeesAccrued  float64
	Messages     []core.HCSMessage
	VotesFor     int
	VotesAgainst int
}

// Tick advances every running agent by at most one logical transition.
// Agents are processed in deployment order; all of them observe the same
// pre-tick snapshot, and same-tick vote deltas are summed.
func (e *Engine) Tick(ctx TickContext) TickResult {
	res := TickResult{Agents: make(map[string]core.Agent)}
	for _, agent := range ctx.Agents {
		if agent.Status != core.AgentRunning {
			continue
		}
		e.stepAgent(ctx, agent, &res)
	}
	return res
}

// stepAgent applies one state-machine transition for a single agent,
// staging its effects into the accumulator.
func (e *Engine) stepAgent(ctx TickContext, agent core.Agent, res *TickResult) {
	agent.Steps = append([]core.Step(nil), agent.Steps...)

	if idx := findStep(agent.Steps, core.StepInProgress); idx >= 0 {
		e.advanceInProgress(ctx, agent, idx, res)
		return
	}
	if idx := findStep(agent.Steps, core.StepPending); idx >= 0 {
		e.advancePending(ctx, agent, idx, res)
		return
	}
	if len(agent.Steps) > 0 && allTerminal(agent.Steps) {
		agent.Status = core.AgentCompleted
		res.record(agent, ctx.Now, core.ActivityEntry{
			Message:  "All tasks completed. Agent entering standby mode.",
			Severity: core.SeverityInfo,
			AgentID:  agent.ID,
		})
	}
}

// advancePending evaluates a pending step: pacing, condition, affordability,
// and finally promotion to in-progress.
func (e *Engine) advancePending(ctx TickContext, agent core.Agent, idx int, res *TickResult) {
	step := agent.Steps[idx]

	if agent.NextActionAt.IsZero() {
		agent.NextActionAt = ctx.Now.Add(e.cfg.StepStartDelay)
		res.record(agent, ctx.Now)
		return
	}
	if ctx.Now.Before(agent.NextActionAt) {
		return
	}

	if step.Condition != nil && !conditionMet(*step.Condition, agent.Memory) {
		agent.Steps[idx].Status = core.StepSkipped
		agent.NextActionAt = time.Time{}
		res.record(agent, ctx.Now, core.ActivityEntry{
			Message:  fmt.Sprintf("Condition not met, skipping step: %q", step.Name),
			Severity: core.SeverityInfo,
			AgentID:  agent.ID,
		})
		return
	}

	cost := step.Cost * ctx.EffectiveMultiplier
	if agent.Balance < cost {
		agent.Status = core.AgentError
		agent.NextActionAt = time.Time{}
		res.record(agent, ctx.Now, core.ActivityEntry{
			Message: fmt.Sprintf("Execution failed: Insufficient funds. Required: ~ħ%.6f, Balance: ħ%.6f",
				cost, agent.Balance),
			Severity: core.SeverityError,
			AgentID:  agent.ID,
		})
		return
	}

	agent.Steps[idx].Status = core.StepInProgress
	agent.NextActionAt = time.Time{}
	res.record(agent, ctx.Now, core.ActivityEntry{
		Message:  fmt.Sprintf("Executing: %s (Cost: ~ħ%.6f)", step.Name, cost),
		Severity: core.SeverityInfo,
		AgentID:  agent.ID,
	})
}

// advanceInProgress paces and completes the running step: level-dependent
// delay first, then the kind-specific effect, cost, experience and the
// synthetic transaction id.
func (e *Engine) advanceInProgress(ctx TickContext, agent core.Agent, idx int, res *TickResult) {
	if agent.NextActionAt.IsZero() {
		agent.NextActionAt = ctx.Now.Add(e.completionDelay(agent.Level))
		res.record(agent, ctx.Now)
		return
	}
	if ctx.Now.Before(agent.NextActionAt) {
		return
	}

	step := agent.Steps[idx]
	transfers, logs := e.applyEffect(ctx, &agent, step, res)
	res.Logs = append(res.Logs, stamp(logs, ctx.Now)...)

	actualCost := step.Cost * ctx.EffectiveMultiplier
	agent.Balance -= actualCost
	res.FeesAccrued += actualCost

	agent.XP += e.cfg.XPBase + e.rng.Intn(e.cfg.XPJitter)
	if next := core.LevelForXP(agent.XP); next > agent.Level {
		agent.Level = next
		res.Logs = append(res.Logs, core.ActivityEntry{
			Message:   fmt.Sprintf("LEVEL UP! Agent %s reached Level %d. Efficiency increased.", agent.ID, next),
			Severity:  core.SeveritySuccess,
			Timestamp: ctx.Now,
			AgentID:   agent.ID,
		})
	}

	txID := core.NewTransactionID(e.rng, ctx.Now)
	agent.Steps[idx].Status = core.StepCompleted
	agent.Steps[idx].TransactionID = txID
	agent.Steps[idx].Transfers = transfers
	agent.NextActionAt = time.Time{}

	res.record(agent, ctx.Now, core.ActivityEntry{
		Message: fmt.Sprintf("Step Complete: %s. Cost: ħ%.6f. TxID: %s",
			step.Name, actualCost, txID),
		Severity: core.SeveritySuccess,
		AgentID:  agent.ID,
	})
}

// completionDelay shrinks with agent level and carries bounded jitter.
func (e *Engine) completionDelay(level int) time.Duration {
	delay := e.cfg.BaseStepDelay - time.Duration(level-1)*e.cfg.DelayPerLevel
	if delay < e.cfg.MinStepDelay {
		delay = e.cfg.MinStepDelay
	}
	if e.cfg.DelayJitter > 0 {
		delay += time.Duration(e.rng.Int63n(int64(e.cfg.DelayJitter)))
	}
	return delay
}

// conditionMet compares the named memory value against the threshold. A
// missing or non-numeric memory value never satisfies the condition.
func conditionMet(cond core.Condition, memory map[string]interface{}) bool {
	v, ok := memory[cond.Key]
	if !ok {
		return false
	}
	num, ok := toFloat(v)
	if !ok {
		return false
	}
	switch cond.Operator {
	case core.OpGreaterThan:
		return num > cond.Value
	case core.OpLessThan:
		return num < cond.Value
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func findStep(steps []core.Step, status core.StepStatus) int {
	for i, s := range steps {
		if s.Status == status {
			return i
		}
	}
	return -1
}

func allTerminal(steps []core.Step) bool {
	for _, s := range steps {
		if !s.Terminal() {
			return false
		}
	}
	return true
}

func stamp(entries []core.ActivityEntry, now time.Time) []core.ActivityEntry {
	for i := range entries {
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = now
		}
	}
	return entries
}

// record marks the tick as changed, stores the updated agent and appends
// any log lines.
func (r *TickResult) record(agent core.Agent, now time.Time, logs ...core.ActivityEntry) {
	r.Changed = true
	r.Agents[agent.ID] = agent
	r.Logs = append(r.Logs, stamp(logs, now)...)
}
