package core

import "time"

// SnapshotVersion guards snapshot compatibility; bump it whenever the
// persisted shape changes.
const SnapshotVersion = "v4"

// Snapshot is the full observable simulation state persisted across
// restarts. Date fields round-trip through RFC 3339 via encoding/json.
type Snapshot struct {
	Version           string              `json:"version"`
	SavedAt           time.Time           `json:"savedAt"`
	Agents            []Agent             `json:"agents"`
	Ledger            map[string]Holdings `json:"ledger"`
	ActivityLogs      []ActivityEntry     `json:"activityLogs"`
	HCSMessages       []HCSMessage        `json:"hcsMessages"`
	Oracle            OracleData          `json:"oracleData"`
	Proposal          *GovernanceProposal `json:"activeProposal,omitempty"`
	NetworkEvent      *ActiveNetworkEvent `json:"activeNetworkEvent,omitempty"`
	BaseFeeMultiplier float64             `json:"baseFeeMultiplier"`
	Stats             NetworkStats        `json:"networkStats"`
}
