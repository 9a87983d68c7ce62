package core

import (
	"time"
)

// AgentStatus tracks an agent through its lifecycle.
type AgentStatus string

const (
	AgentInitializing AgentStatus = "initializing"
	AgentRunning      AgentStatus = "running"
	AgentCompleted    AgentStatus = "completed"
	AgentError        AgentStatus = "error"
)

// Agent is a simulated autonomous actor executing a generated workflow.
// Created on deployment, mutated only by the execution engine, never deleted.
type Agent struct {
	ID              string                 `json:"id"`
	TaskDescription string                 `json:"taskDescription"`
	Status          AgentStatus            `json:"status"`
	Steps           []Step                 `json:"steps"`
	Balance         float64                `json:"hbarBalance"`
	Memory          map[string]interface{} `json:"memory"`
	XP              int                    `json:"xp"`
	Level           int                    `json:"level"`

	// NextActionAt paces step transitions; the zero value means no action
	// is scheduled.
	NextActionAt time.Time `json:"nextActionAt,omitempty"`
}

// LevelForXP derives an agent level from total experience.
func LevelForXP(xp int) int {
	return xp/500 + 1
}

// GovTokenID is the governance token every agent is airdropped on deployment.
const GovTokenID = "NEX-GOV"

// MintOrigin is the synthetic sender recorded for freshly minted assets.
const MintOrigin = "MINT"

// FungibleToken is a token balance held by an agent.
type FungibleToken struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

// NonFungibleToken is a uniquely identified asset held by an agent.
type NonFungibleToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Holdings are one agent's ledger entry.
type Holdings struct {
	FTs       []FungibleToken    `json:"fts"`
	NFTs      []NonFungibleToken `json:"nfts"`
	StakedGov int                `json:"stakedNexGov"`
}

// AssetTransfer records one asset movement produced by a completed step.
type AssetTransfer struct {
	AssetID string `json:"assetId"`
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  int    `json:"amount,omitempty"`
}

// Sentiment is the oracle's categorical market read.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Oracle memory keys agents can query and reference in conditions.
const (
	OracleKeyHBARPrice       = "hbarPrice"
	OracleKeyMarketSentiment = "marketSentiment"
)

// OracleData is a snapshot of the simulated price/sentiment feed.
type OracleData struct {
	HBARPrice       float64   `json:"hbarPrice"`
	MarketSentiment Sentiment `json:"marketSentiment"`
}

// HCSMessage is one broadcast on the simulated consensus message bus.
type HCSMessage struct {
	AgentID   string    `json:"agentId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ProposalStatus tracks a governance proposal through its lifecycle.
type ProposalStatus string

const (
	ProposalActive   ProposalStatus = "active"
	ProposalPassed   ProposalStatus = "passed"
	ProposalFailed   ProposalStatus = "failed"
	ProposalExecuted ProposalStatus = "executed"
)

// ProposalEffect is the network parameter change a passed proposal applies.
type ProposalEffect struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// EffectFeeMultiplier replaces the persistent base fee multiplier.
const EffectFeeMultiplier = "fee_multiplier"

// GovernanceProposal is a time-boxed, stake-weighted vote.
type GovernanceProposal struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	VotesFor     int            `json:"votesFor"`
	VotesAgainst int            `json:"votesAgainst"`
	CreatedAt    time.Time      `json:"createdAt"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	Status       ProposalStatus `json:"status"`
	Effect       ProposalEffect `json:"effect"`
}

// EventKind categorises transient network events.
type EventKind string

const (
	EventCongestion EventKind = "congestion"
	EventUpgrade    EventKind = "upgrade"
	EventAnomaly    EventKind = "anomaly"
)

// NetworkEvent is a catalog entry for a fee-scaling network condition.
type NetworkEvent struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Kind        EventKind     `json:"type"`
	Multiplier  float64       `json:"multiplier"`
	Duration    time.Duration `json:"duration"`
}

// ActiveNetworkEvent is a catalog entry that has been activated and given an
// absolute expiry.
type ActiveNetworkEvent struct {
	NetworkEvent
	ExpiresAt time.Time `json:"expiresAt"`
}

// NetworkStats are the aggregated read-mostly network metrics.
type NetworkStats struct {
	TPS           int     `json:"tps"`
	ActiveAgents  int     `json:"activeAgents"`
	ConsensusTime float64 `json:"consensusTime"`
	TotalFees     float64 `json:"totalFees"`
	FeeMultiplier float64 `json:"feeMultiplier"`
	TotalStaked   int     `json:"totalStaked"`
}

// Severity classifies activity log entries.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// ActivityEntry is one human-readable line in the activity log.
type ActivityEntry struct {
	Message   string    `json:"message"`
	Severity  Severity  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AgentID   string    `json:"agentId,omitempty"`
}

// TransactionDetails is the expanded view of a completed step's synthetic
// transaction, served to the dashboard on demand.
type TransactionDetails struct {
	ID                 string          `json:"id"`
	Status             string          `json:"status"`
	ConsensusTimestamp string          `json:"consensusTimestamp"`
	Memo               string          `json:"memo"`
	Fee                string          `json:"fee"`
	AssetTransfers     []AssetTransfer `json:"assetTransfers,omitempty"`
}
