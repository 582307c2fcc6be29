package simulation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Duplicate stands in for a run whose task set and scheduler are identical
// to an already evaluated one. It owns no simulation state and reports the
// shared result through a view.
type Duplicate struct {
	id          string
	fingerprint uint64
	source      View
}

// NewDuplicate wraps source for the task set identified by fingerprint.
func NewDuplicate(source View, fingerprint uint64) (*Duplicate, error) {
	if !source.Valid() {
		return nil, errors.New("duplicate of an unfinished run")
	}
	if source.Fingerprint() != fingerprint {
		return nil, fmt.Errorf("%w: result %s is for task set %016x, not %016x",
			ErrTaskSetMismatch, source.ID(), source.Fingerprint(), fingerprint)
	}
	return &Duplicate{
		id:          uuid.New().String(),
		fingerprint: fingerprint,
		source:      source,
	}, nil
}

func (d *Duplicate) ID() string          { return d.id }
func (d *Duplicate) Fingerprint() uint64 { return d.fingerprint }

// SourceID is the ID of the run that produced the shared result.
func (d *Duplicate) SourceID() string {
	return d.source.ID()
}

func (d *Duplicate) View() View {
	return d.source
}
