// Package storage persists the simulation's observable state as a single
// versioned snapshot in BadgerDB, restored at startup. The snapshot is a
// serialize/deserialize boundary only; no simulation logic lives here.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"

	"github.com/nexuslabs/nexus-agents/core"
)

const snapshotKey = "simulation/snapshot"

// SnapshotStore wraps a BadgerDB instance holding the latest snapshot.
type SnapshotStore struct {
	db *badger.DB
}

// Open creates or opens the store under dataDir.
func Open(dataDir string) (*SnapshotStore, error) {
	opts := badger.DefaultOptions(filepath.Join(dataDir, "badgerdb"))
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Save overwrites the stored snapshot.
func (s *SnapshotStore) Save(snap *core.Snapshot) error {
	snap.Version = core.SnapshotVersion
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), data)
	})
}

// Load returns the stored snapshot, or nil when none exists or the stored
// version no longer matches — a fresh simulation start in both cases.
func (s *SnapshotStore) Load() (*core.Snapshot, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Version != core.SnapshotVersion {
		return nil, nil
	}
	return &snap, nil
}

// Close flushes and closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
