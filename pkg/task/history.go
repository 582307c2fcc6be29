package task

import "strings"

// history is the window of the last k deadline outcomes of an (m,k) task.
// head is the slot of the most recent outcome.
type history struct {
	met  []bool
	head int
	m    int
}

// newHistory starts with k met deadlines.
func newHistory(m, k int) *history {
	h := &history{met: make([]bool, k), m: m, head: k - 1}
	for i := range h.met {
		h.met[i] = true
	}
	return h
}

func (h *history) record(met bool) {
	h.head = (h.head + 1) % len(h.met)
	h.met[h.head] = met
}

// at returns the outcome pos steps back, pos 1 being the most recent.
func (h *history) at(pos int) bool {
	k := len(h.met)
	return h.met[((h.head-(pos-1))%k+k)%k]
}

func (h *history) metCount() int {
	n := 0
	for _, v := range h.met {
		if v {
			n++
		}
	}
	return n
}

// failing reports whether fewer than m of the last k deadlines were met.
func (h *history) failing() bool {
	return h.metCount() < h.m
}

// position returns the position of the n-th met deadline counting from the
// most recent outcome, or k+1 when fewer than n deadlines were met.
func (h *history) position(n int) int {
	seen := 0
	for pos := 1; pos <= len(h.met); pos++ {
		if h.at(pos) {
			seen++
			if seen == n {
				return pos
			}
		}
	}
	return len(h.met) + 1
}

// distance is the number of consecutive misses that would put the task into
// a failing state; 0 when it already is.
func (h *history) distance() int {
	return len(h.met) - h.position(h.m) + 1
}

// String renders the window oldest first, 1 for met and 0 for missed.
func (h *history) String() string {
	var b strings.Builder
	for pos := len(h.met); pos >= 1; pos-- {
		if h.at(pos) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
