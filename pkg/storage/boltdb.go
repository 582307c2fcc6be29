package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/cuemby/rtsim/pkg/persist"
	"github.com/cuemby/rtsim/pkg/simulation"
	"github.com/cuemby/rtsim/pkg/task"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketResults  = []byte("results")
	bucketTaskSets = []byte("tasksets")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "rtsim.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketResults, bucketTaskSets} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Result operations
func (s *BoltStore) SaveResult(res *simulation.Result) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		return b.Put([]byte(res.ID), data)
	})
}

func (s *BoltStore) GetResult(id string) (*simulation.Result, error) {
	var res simulation.Result
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("result %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindResult returns the single result whose ID starts with prefix.
func (s *BoltStore) FindResult(prefix string) (*simulation.Result, error) {
	var res simulation.Result
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		p := []byte(prefix)

		k, v := c.Seek(p)
		if k == nil || !bytes.HasPrefix(k, p) {
			return fmt.Errorf("result %s: %w", prefix, ErrNotFound)
		}
		if next, _ := c.Next(); next != nil && bytes.HasPrefix(next, p) && !bytes.Equal(k, p) {
			return fmt.Errorf("result %s: %w", prefix, ErrAmbiguous)
		}
		return json.Unmarshal(v, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListResults returns every stored result, oldest first.
func (s *BoltStore) ListResults() ([]*simulation.Result, error) {
	var results []*simulation.Result
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		return b.ForEach(func(k, v []byte) error {
			var res simulation.Result
			if err := json.Unmarshal(v, &res); err != nil {
				return err
			}
			results = append(results, &res)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(results, func(a, b *simulation.Result) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return results, nil
}

func (s *BoltStore) DeleteResult(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		return b.Delete([]byte(id))
	})
}

func taskSetKey(fingerprint uint64) []byte {
	return []byte(strconv.FormatUint(fingerprint, 16))
}

// SaveTaskSet stores the YAML rendering of set under its fingerprint.
func (s *BoltStore) SaveTaskSet(set *task.Set) error {
	data, err := persist.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode task set %q: %w", set.Name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTaskSets)
		return b.Put(taskSetKey(set.Fingerprint()), data)
	})
}

func (s *BoltStore) GetTaskSet(fingerprint uint64) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTaskSets)
		v := b.Get(taskSetKey(fingerprint))
		if v == nil {
			return fmt.Errorf("task set %016x: %w", fingerprint, ErrNotFound)
		}
		// bbolt values are only valid inside the transaction
		data = bytes.Clone(v)
		return nil
	})
	return data, err
}
