// Package pipeline implements the level pipeline: the Level state machine,
// the serial cascade, the threaded cascade, and the enumeration driver that
// ties the Composer, the dedup cascade, the drug-likeness gates, and the
// three external ports together (spec.md §4.4, §4.7, §5).
package pipeline

import (
	"sync"

	"github.com/cx-luo/synthline/internal/molecule"
)

// State is the per-level state machine of spec.md §4.7:
// Pending -> Active -> Draining -> Retired.
type State int

const (
	Pending State = iota
	Active
	Draining
	Retired
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Active:
		return "Active"
	case Draining:
		return "Draining"
	case Retired:
		return "Retired"
	default:
		return "Unknown"
	}
}

// Level is one numbered level's FIFO queue plus its state machine. It is the
// structured, bounded, per-level unit Design Notes §9 calls for in place of
// per-level arrays of mutexes and condition variables: one lock guards one
// level's queue and state transitions together.
type Level struct {
	Index int
	Cap   int // soft cap; 0 = unbounded (spec.md §4.4)

	mu    sync.Mutex
	queue []*molecule.Molecule
	state State
}

// NewLevel constructs a level with the given soft queue cap.
func NewLevel(index, cap int) *Level {
	return &Level{Index: index, Cap: cap, state: Pending}
}

// Push enqueues m, transitioning Pending -> Active on the first enqueue
// (spec.md §4.7).
func (l *Level) Push(m *molecule.Molecule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, m)
	if l.state == Pending {
		l.state = Active
	}
}

// Pop removes and returns the front of the queue, if any.
func (l *Level) Pop() (*molecule.Molecule, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	m := l.queue[0]
	l.queue = l.queue[1:]
	return m, true
}

// Len reports the current queue length.
func (l *Level) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// AtCap reports whether the queue is at or above its soft cap. A cap of 0
// means unbounded, so AtCap is always false in that case.
func (l *Level) AtCap() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Cap > 0 && len(l.queue) >= l.Cap
}

// State returns the level's current state.
func (l *Level) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// MarkDraining transitions Active -> Draining once the predecessor level has
// retired (spec.md §4.7).
func (l *Level) MarkDraining() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Active || l.state == Pending {
		l.state = Draining
	}
}

// MarkRetired transitions to Retired and releases the queued molecule
// objects (spec.md §4.3, §4.4: "its per-level filter and queued molecule
// objects are released").
func (l *Level) MarkRetired() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Retired
	l.queue = nil
}

// IsEmpty reports whether the queue currently holds no molecules.
func (l *Level) IsEmpty() bool {
	return l.Len() == 0
}
