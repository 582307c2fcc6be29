/*
Package storage provides BoltDB-backed persistence for simulation results.

The storage package implements the Store interface using BoltDB as the
underlying database. Results are serialized as JSON and task-set snapshots
as the YAML rendering of package persist, each in its own bucket.

# Architecture

	┌──────────────────── BOLTDB STORAGE ────────────────────┐
	│                                                         │
	│  BoltStore  (file: <dataDir>/rtsim.db)                  │
	│     │                                                   │
	│     ├── results    key: run ID       value: JSON Result │
	│     └── tasksets   key: fingerprint  value: YAML        │
	│                    (hex)                                │
	│                                                         │
	│  Read:  db.View()   concurrent                          │
	│  Write: db.Update() serialized, fsync on commit         │
	└─────────────────────────────────────────────────────────┘

Keys are sorted by bbolt, which lets FindResult resolve an abbreviated run ID
with a single cursor seek, the way `rtsim results show 4f0c` does. Results
are listed in StartedAt order, not key order, since run IDs are random UUIDs.

A result references its task set only by fingerprint. Saving the task set
snapshot next to it keeps a result interpretable after the task-set file on
disk has changed.

# Usage

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveTaskSet(set); err != nil {
		return err
	}
	if err := store.SaveResult(res); err != nil {
		return err
	}

Lookups of missing keys return errors wrapping ErrNotFound. A bbolt file can
only be opened by one process at a time; a second NewBoltStore on the same
directory blocks until the first store is closed.
*/
package storage
