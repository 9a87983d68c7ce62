// Package simulation owns the canonical instances of every subsystem and
// drives them from a single cooperative timer loop. Each timer case runs
// snapshot -> compute -> commit under one mutex, so no two subsystem ticks
// ever interleave and outside readers only observe committed state.
package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nexuslabs/nexus-agents/activity"
	"github.com/nexuslabs/nexus-agents/core"
	"github.com/nexuslabs/nexus-agents/engine"
	"github.com/nexuslabs/nexus-agents/governance"
	"github.com/nexuslabs/nexus-agents/hcs"
	"github.com/nexuslabs/nexus-agents/ledger"
	"github.com/nexuslabs/nexus-agents/netevents"
	"github.com/nexuslabs/nexus-agents/oracle"
)

// Live event types pushed to dashboard subscribers.
const (
	EventActivity        = "ACTIVITY"
	EventAgentUpdated    = "AGENT_UPDATED"
	EventLedgerUpdated   = "LEDGER_UPDATED"
	EventProposalUpdated = "PROPOSAL_UPDATED"
	EventNetworkEvent    = "NETWORK_EVENT"
	EventOracleUpdated   = "ORACLE_UPDATED"
	EventHCSMessage      = "HCS_MESSAGE"
	EventStatsUpdated    = "STATS_UPDATED"
)

// WorkflowGenerator is the external AI service contract: one call per
// agent deployment.
type WorkflowGenerator interface {
	GenerateWorkflow(ctx context.Context, taskDescription string) ([]core.Step, error)
}

// Notifier receives live events for fan-out to dashboard clients.
type Notifier interface {
	Broadcast(eventType string, payload interface{})
}

// Config holds the timer cadences and initial funding parameters.
type Config struct {
	EngineTick      time.Duration
	OracleRefresh   time.Duration
	StatsInterval   time.Duration
	EventPoll       time.Duration
	GovernancePoll  time.Duration
	InitialBalance  float64
	BalanceJitter   float64
	GovAirdrop      int
	ActivityLogSize int
	HCSFeedSize     int
}

func DefaultConfig() Config {
	return Config{
		EngineTick:      200 * time.Millisecond,
		OracleRefresh:   5 * time.Second,
		StatsInterval:   2 * time.Second,
		EventPoll:       time.Second,
		GovernancePoll:  time.Second,
		InitialBalance:  50,
		BalanceJitter:   50,
		GovAirdrop:      1000,
		ActivityLogSize: activity.DefaultCapacity,
		HCSFeedSize:     hcs.DefaultCapacity,
	}
}

// Simulation is the orchestrator. All fields behind mu are owned by the
// timer loop; public methods take the lock and work on copies.
type Simulation struct {
	mu sync.Mutex

	cfg       Config
	agents    []core.Agent
	ledger    *ledger.Store
	oracle    *oracle.Feed
	events    *netevents.Generator
	stats     *netevents.Stats
	gov       *governance.Service
	engine    *engine.Engine
	log       *activity.Log
	feed      *hcs.Feed
	generator WorkflowGenerator
	notifier  Notifier

	rng *rand.Rand
	now func() time.Time

	dirty    bool
	lastSave time.Time
	saver    func(*core.Snapshot)
}

// saveInterval debounces snapshot writes; the commit cadence of the engine
// is far too hot to hit disk every tick.
const saveInterval = 2 * time.Second

// Option adjusts construction without widening the constructor signature.
type Option func(*Simulation)

// WithClock injects a deterministic time source.
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) { s.now = now }
}

// WithNotifier attaches a live-event sink.
func WithNotifier(n Notifier) Option {
	return func(s *Simulation) { s.notifier = n }
}

// WithSaver attaches a snapshot sink invoked after dirty commits.
func WithSaver(saver func(*core.Snapshot)) Option {
	return func(s *Simulation) { s.saver = saver }
}

// WithHCSMessenger routes broadcasts onto the NATS bus.
func WithHCSMessenger(m *hcs.Messenger) Option {
	return func(s *Simulation) { s.feed = hcs.NewFeed(s.cfg.HCSFeedSize, m) }
}

func New(cfg Config, generator WorkflowGenerator, rng *rand.Rand, opts ...Option) *Simulation {
	s := &Simulation{
		cfg:       cfg,
		generator: generator,
		rng:       rng,
		now:       time.Now,
	}
	s.ledger = ledger.NewStore()
	s.oracle = oracle.NewFeed(rng)
	s.stats = netevents.NewStats(rng)
	s.log = activity.NewLog(cfg.ActivityLogSize)
	s.feed = hcs.NewFeed(cfg.HCSFeedSize, nil)
	s.engine = engine.New(engine.DefaultConfig(), rng)
	for _, opt := range opts {
		opt(s)
	}
	// The generators read the (possibly injected) clock, so build them last.
	s.events = netevents.NewGenerator(rng, func() time.Time { return s.now() })
	s.gov = governance.NewService(rng, func() time.Time { return s.now() })
	return s
}

// Run drives the timer loop until ctx is cancelled. It never blocks inside
// a tick; all waiting is modelled as scheduled future ticks.
func (s *Simulation) Run(ctx context.Context) {
	engineTicker := time.NewTicker(s.cfg.EngineTick)
	oracleTicker := time.NewTicker(s.cfg.OracleRefresh)
	statsTicker := time.NewTicker(s.cfg.StatsInterval)
	eventTicker := time.NewTicker(s.cfg.EventPoll)
	govTicker := time.NewTicker(s.cfg.GovernancePoll)
	defer engineTicker.Stop()
	defer oracleTicker.Stop()
	defer statsTicker.Stop()
	defer eventTicker.Stop()
	defer govTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case <-engineTicker.C:
			s.TickEngine()
		case <-oracleTicker.C:
			s.RefreshOracle()
		case <-statsTicker.C:
			s.RecomputeStats()
		case <-eventTicker.C:
			s.PollEvents()
		case <-govTicker.C:
			s.PollGovernance()
		}
	}
}

// TickEngine runs one engine tick: snapshot shared state, advance every
// running agent, and commit the accumulated batch if anything changed.
func (s *Simulation) TickEngine() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := engine.TickContext{
		Now:                 s.now(),
		Agents:              s.agents,
		Holdings:            s.ledger.All(),
		Oracle:              s.oracle.Data(),
		Proposal:            s.gov.Proposal(),
		EffectiveMultiplier: s.gov.BaseMultiplier() * s.events.Multiplier(),
	}
	res := s.engine.Tick(ctx)
	if !res.Changed {
		return
	}

	for i, agent := range s.agents {
		if updated, ok := res.Agents[agent.ID]; ok {
			s.agents[i] = updated
			s.notify(EventAgentUpdated, updated)
		}
	}
	for _, op := range res.LedgerOps {
		if err := s.applyLedgerOp(op); err != nil {
			// The op was validated against the tick snapshot; a commit-time
			// failure means another agent consumed the balance this tick.
			s.appendLog(core.ActivityEntry{
				Message:   fmt.Sprintf("Ledger commit rejected: %v", err),
				Severity:  core.SeverityError,
				Timestamp: ctx.Now,
			})
		}
	}
	if len(res.LedgerOps) > 0 {
		s.notify(EventLedgerUpdated, s.ledger.All())
	}
	for _, entry := range res.Logs {
		s.appendLog(entry)
	}
	if res.FeesAccrued > 0 {
		s.stats.AddFees(res.FeesAccrued)
	}
	for _, msg := range res.Messages {
		s.feed.Submit(msg)
		s.notify(EventHCSMessage, msg)
	}
	if res.VotesFor > 0 || res.VotesAgainst > 0 {
		s.gov.AddVotes(res.VotesFor, res.VotesAgainst)
		s.notify(EventProposalUpdated, s.gov.Proposal())
	}
	s.markDirty()
}

// RefreshOracle advances the price/sentiment random walk.
func (s *Simulation) RefreshOracle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.oracle.Refresh()
	s.notify(EventOracleUpdated, data)
}

// RecomputeStats refreshes the aggregated network metrics.
func (s *Simulation) RecomputeStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	running := 0
	for _, a := range s.agents {
		if a.Status == core.AgentRunning {
			running++
		}
	}
	stats := s.stats.Recompute(running, s.ledger.TotalStaked(), s.gov.BaseMultiplier())
	s.notify(EventStatsUpdated, stats)
}

// PollEvents advances the network-event lifecycle.
func (s *Simulation) PollEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.events.Poll()
	for _, entry := range entries {
		s.appendLog(entry)
	}
	if len(entries) > 0 {
		s.notify(EventNetworkEvent, s.events.Active())
		s.markDirty()
	}
}

// PollGovernance advances the proposal lifecycle.
func (s *Simulation) PollGovernance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.gov.Poll()
	for _, entry := range entries {
		s.appendLog(entry)
	}
	if len(entries) > 0 {
		s.notify(EventProposalUpdated, s.gov.Proposal())
		s.markDirty()
	}
}

func (s *Simulation) applyLedgerOp(op engine.LedgerOp) error {
	switch o := op.(type) {
	case engine.MintNFTOp:
		_, err := s.ledger.MintNFT(o.AgentID, o.AssetID, o.Suffix)
		return err
	case engine.TransferFTOp:
		return s.ledger.Transfer(o.From, o.To, o.TokenID, o.Amount)
	case engine.StakeOp:
		return s.ledger.Stake(o.AgentID, o.Amount)
	default:
		return fmt.Errorf("unknown ledger op %T", op)
	}
}

func (s *Simulation) appendLog(entry core.ActivityEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	s.log.Append(entry)
	s.notify(EventActivity, entry)
}

func (s *Simulation) notify(eventType string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(eventType, payload)
	}
}

func (s *Simulation) markDirty() {
	s.dirty = true
	if s.saver == nil {
		return
	}
	now := s.now()
	if now.Sub(s.lastSave) < saveInterval {
		return
	}
	s.saver(s.snapshotLocked())
	s.lastSave = now
	s.dirty = false
}

// flush persists a final snapshot on shutdown.
func (s *Simulation) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saver != nil {
		s.saver(s.snapshotLocked())
		s.dirty = false
	}
}
