package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness consumed by generators. Implementations must be
// safe for concurrent use.
type Source interface {
	IntN(n int) int
	Float64() float64
}

type locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a deterministic source for the given seed.
func New(seed uint64) Source {
	return &locked{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSystem returns a source seeded from the runtime's entropy.
func NewSystem() Source {
	return New(rand.Uint64())
}

func (l *locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

func (l *locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}
