package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/nexuslabs/nexus-agents/core"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadWithoutSnapshotReturnsNil(t *testing.T) {
	store := openTestStore(t)
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := openTestStore(t)
	saved := &core.Snapshot{
		SavedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Agents: []core.Agent{{
			ID:      "Nexus-1",
			Status:  core.AgentRunning,
			Balance: 75.5,
			XP:      120,
			Level:   1,
			Memory:  map[string]interface{}{"hbarPrice": 0.09},
		}},
		Ledger: map[string]core.Holdings{
			"Nexus-1": {
				FTs:       []core.FungibleToken{{ID: core.GovTokenID, Amount: 500}},
				StakedGov: 500,
			},
		},
		ActivityLogs: []core.ActivityEntry{{Message: "hello", Severity: core.SeverityInfo}},
		Oracle:       core.OracleData{HBARPrice: 0.09, MarketSentiment: core.SentimentBullish},
		Proposal: &core.GovernanceProposal{
			ID:     "PROP-abc",
			Status: core.ProposalActive,
			Effect: core.ProposalEffect{Type: core.EffectFeeMultiplier, Value: 0.8},
		},
		BaseFeeMultiplier: 1.2,
		Stats:             core.NetworkStats{TPS: 12456, ActiveAgents: 1},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("snapshot not found after save")
	}
	if loaded.Version != core.SnapshotVersion {
		t.Fatalf("version = %q, want %q", loaded.Version, core.SnapshotVersion)
	}
	if len(loaded.Agents) != 1 || loaded.Agents[0].ID != "Nexus-1" {
		t.Fatalf("agents did not round-trip: %+v", loaded.Agents)
	}
	if loaded.Agents[0].Memory["hbarPrice"] != 0.09 {
		t.Fatalf("agent memory did not round-trip: %+v", loaded.Agents[0].Memory)
	}
	if loaded.Ledger["Nexus-1"].StakedGov != 500 {
		t.Fatalf("ledger did not round-trip: %+v", loaded.Ledger)
	}
	if loaded.Proposal == nil || loaded.Proposal.ID != "PROP-abc" {
		t.Fatalf("proposal did not round-trip: %+v", loaded.Proposal)
	}
	if loaded.BaseFeeMultiplier != 1.2 {
		t.Fatalf("base multiplier = %v, want 1.2", loaded.BaseFeeMultiplier)
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(&core.Snapshot{Stats: core.NetworkStats{ActiveAgents: 1}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(&core.Snapshot{Stats: core.NetworkStats{ActiveAgents: 7}}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Stats.ActiveAgents != 7 {
		t.Fatalf("loaded stale snapshot: %+v", loaded.Stats)
	}
}

func TestLoadDiscardsMismatchedVersion(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(&core.Snapshot{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Simulate a snapshot written by an older build.
	old := core.Snapshot{Version: "v3"}
	err := store.db.Update(func(txn *badger.Txn) error {
		data, merr := json.Marshal(old)
		if merr != nil {
			return merr
		}
		return txn.Set([]byte(snapshotKey), data)
	})
	if err != nil {
		t.Fatalf("write stale snapshot: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("stale-version snapshot was not discarded: %+v", loaded)
	}
}
