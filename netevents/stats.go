package netevents

import (
	"math"
	"math/rand"

	"github.com/nexuslabs/nexus-agents/core"
)

// Stats maintains the aggregated network metrics shown on the dashboard.
// Throughput and consensus latency drift randomly within floors; agent and
// stake counts are recomputed from live state each cycle.
type Stats struct {
	current core.NetworkStats
	rng     *rand.Rand
}

func NewStats(rng *rand.Rand) *Stats {
	return &Stats{
		rng: rng,
		current: core.NetworkStats{
			TPS:           12456,
			ConsensusTime: 2.1,
			FeeMultiplier: 1.0,
		},
	}
}

// Recompute advances the drifting metrics and folds in the aggregates
// supplied by the caller.
func (s *Stats) Recompute(activeAgents, totalStaked int, baseMultiplier float64) core.NetworkStats {
	tps := s.current.TPS + int((s.rng.Float64()-0.4)*100)
	if tps < 10000 {
		tps = 10000
	}
	consensus := s.current.ConsensusTime + (s.rng.Float64()-0.5)*0.1
	consensus = math.Round(consensus*100) / 100
	if consensus < 1.5 {
		consensus = 1.5
	}
	s.current.TPS = tps
	s.current.ConsensusTime = consensus
	s.current.ActiveAgents = activeAgents
	s.current.TotalStaked = totalStaked
	s.current.FeeMultiplier = baseMultiplier
	return s.current
}

// AddFees accrues transaction fees collected by the engine.
func (s *Stats) AddFees(amount float64) {
	s.current.TotalFees += amount
}

// Current returns the latest metrics.
func (s *Stats) Current() core.NetworkStats {
	return s.current
}

// Restore replaces the metrics at the persistence boundary.
func (s *Stats) Restore(stats core.NetworkStats) {
	s.current = stats
	if s.current.TPS == 0 {
		s.current.TPS = 12456
	}
	if s.current.ConsensusTime == 0 {
		s.current.ConsensusTime = 2.1
	}
	if s.current.FeeMultiplier == 0 {
		s.current.FeeMultiplier = 1.0
	}
}
