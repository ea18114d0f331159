// Package dedup implements the two-tier Bloom-filter cascade guarding the
// admit path (spec.md §4.3): a per-level filter sized to that level's
// expected population, and a global filter sized to the sum of all level
// populations.
package dedup

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/errs"
)

// minFilterBits is the floor applied when a level's expected population is
// unknown (0): a tiny filter would have an unusably high false-positive
// rate for any nonzero insert count.
const minFilterBits = 1024

// filter wraps a *bloom.BloomFilter with the mutex spec.md §5 calls for:
// "insert-only under a shared mutex... safe for concurrent reads with
// serialized inserts". TestAndAdd needs both test and insert to be atomic
// with respect to other goroutines, so one mutex guards the whole operation
// rather than splitting read/write locking.
type filter struct {
	mu sync.Mutex
	bf *bloom.BloomFilter
}

func newFilter(expectedPopulation uint, falsePositiveRate float64) (*filter, error) {
	n := expectedPopulation
	if n == 0 {
		n = minFilterBits
	}
	bf := bloom.NewWithEstimates(n, falsePositiveRate)
	return &filter{bf: bf}, nil
}

// test reports whether id is present without inserting it.
func (f *filter) test(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bf.TestString(id)
}

// Cascade is the two-tier Bloom-filter cascade: one filter per level plus
// one process-wide global filter (spec.md §4.3).
type Cascade struct {
	cfg    config.Config
	global *filter

	mu     sync.Mutex
	levels map[int]*filter
}

// NewCascade constructs the cascade's global filter, sized to the sum of all
// configured level populations at the configured global false-positive rate.
// Bloom-filter construction failure is ResourceExhausted and fatal (spec.md §4.8).
func NewCascade(cfg config.Config) (*Cascade, error) {
	var total uint
	for _, lp := range cfg.LevelPopulations {
		total += lp.Population
	}
	g, err := newFilter(total, cfg.GlobalFPRate)
	if err != nil {
		return nil, errs.Wrap(errs.ResourceExhausted, err, "dedup: constructing global bloom filter")
	}
	return &Cascade{cfg: cfg, global: g, levels: make(map[int]*filter)}, nil
}

// OpenLevel lazily constructs the per-level filter for level k, sized to
// that level's expected population at the configured per-level
// false-positive rate. Calling OpenLevel more than once for the same k is a
// no-op returning the existing filter.
func (c *Cascade) OpenLevel(k int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.levels[k]; ok {
		return nil
	}
	f, err := newFilter(c.cfg.PopulationFor(k), c.cfg.PerLevelFPRate)
	if err != nil {
		return errs.Wrap(errs.ResourceExhausted, err, "dedup: constructing per-level bloom filter")
	}
	c.levels[k] = f
	return nil
}

// RetireLevel releases level k's filter. Per spec.md §4.3: "Per-level
// filters are released the moment the level is retired."
func (c *Cascade) RetireLevel(k int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.levels, k)
}

func (c *Cascade) levelFilter(k int) *filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels[k]
}

// Admit implements the per-level and global halves of spec.md §4.3's admit
// rule (the drug-likeness half is evaluated separately by internal/gates
// before Admit is ever called): identity is admitted iff it is absent from
// both the per-level filter for level k and the global filter. On
// admission, identity is inserted into both.
func (c *Cascade) Admit(k int, identity string) bool {
	lf := c.levelFilter(k)
	if lf == nil {
		// Level filter not opened (or already retired): nothing can be
		// recorded for this level, so the identity is not admitted.
		return false
	}
	// Lock both filters for the full test-then-insert sequence: admission
	// must be a single atomic check across both tiers, or two concurrent
	// composers could each observe "absent" and both admit the same
	// identity. Lock order is always level-then-global, so two levels never
	// deadlock against each other (they never lock one another's level
	// filter).
	lf.mu.Lock()
	defer lf.mu.Unlock()
	c.global.mu.Lock()
	defer c.global.mu.Unlock()

	if lf.bf.TestString(identity) {
		return false
	}
	if c.global.bf.TestString(identity) {
		return false
	}
	lf.bf.AddString(identity)
	c.global.bf.AddString(identity)
	return true
}

// ContainsGlobal reports whether identity has ever been inserted into the
// global filter (exposed for the false-negative-rate test, testable
// property 10).
func (c *Cascade) ContainsGlobal(identity string) bool {
	return c.global.test(identity)
}

// ContainsLevel reports whether identity has been inserted into level k's
// filter.
func (c *Cascade) ContainsLevel(k int, identity string) bool {
	lf := c.levelFilter(k)
	if lf == nil {
		return false
	}
	return lf.test(identity)
}
