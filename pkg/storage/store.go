package storage

import (
	"errors"

	"github.com/cuemby/rtsim/pkg/simulation"
	"github.com/cuemby/rtsim/pkg/task"
)

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when an ID prefix matches several results.
	ErrAmbiguous = errors.New("ambiguous id prefix")
)

// Store defines the interface for simulation result storage
type Store interface {
	// Results
	SaveResult(res *simulation.Result) error
	GetResult(id string) (*simulation.Result, error)
	FindResult(prefix string) (*simulation.Result, error)
	ListResults() ([]*simulation.Result, error)
	DeleteResult(id string) error

	// Task sets, keyed by fingerprint
	SaveTaskSet(set *task.Set) error
	GetTaskSet(fingerprint uint64) ([]byte, error)

	// Utility
	Close() error
}
