package pipeline

import (
	"math/rand"
	"sync"
)

// seededUniform is a concurrency-safe gates.UniformSource backed by a single
// seeded PRNG, so a serial run with the probabilistic rarity filter enabled
// is reproducible end to end by fixing the seed (spec.md §4.5, testable
// property 7). In the threaded cascade every worker draws from this one
// generator, so the interleaving of draws, and with it the set of admitted
// molecules, can differ between runs with the same seed.
type seededUniform struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSeededUniform(seed int64) *seededUniform {
	return &seededUniform{rng: rand.New(rand.NewSource(seed))}
}

func (s *seededUniform) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
