package simulation

import (
	"fmt"
	"math/bits"
	"sync"
)

// FinishedSet records completion per handle. It is safe for concurrent use.
type FinishedSet struct {
	mu    sync.Mutex
	words []uint64
	size  int
}

// NewFinishedSet creates a set for handles 0..size-1.
func NewFinishedSet(size int) *FinishedSet {
	return &FinishedSet{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

func (s *FinishedSet) check(h Handle) error {
	if int(h) < 0 || int(h) >= s.size {
		return fmt.Errorf("%w: handle %d, size %d", ErrIndexOutOfRange, h, s.size)
	}
	return nil
}

// Mark records h as finished.
func (s *FinishedSet) Mark(h Handle) error {
	if err := s.check(h); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[h/64] |= 1 << (uint(h) % 64)
	return nil
}

// Has reports whether h is finished.
func (s *FinishedSet) Has(h Handle) (bool, error) {
	if err := s.check(h); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words[h/64]&(1<<(uint(h)%64)) != 0, nil
}

// Count returns the number of finished handles.
func (s *FinishedSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s *FinishedSet) Len() int {
	return s.size
}

// All reports whether every handle is finished.
func (s *FinishedSet) All() bool {
	return s.Count() == s.size
}
