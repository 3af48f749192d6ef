// Package random provides the single random source used for item selection
// and tile shuffling.
package random

import (
	"hash/fnv"
	"math/rand/v2"
	"sync"
)

// Source produces uniformly distributed integers
type Source interface {
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// New returns a source seeded from the runtime's entropy
func New() Source {
	return NewSeeded(rand.Uint64())
}

// NewSeeded returns a reproducible source; safe for concurrent use
func NewSeeded(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// ForKey returns a deterministic source derived from key, so the same key
// always yields the same sequence.
func ForKey(key string) Source {
	h := fnv.New64a()
	h.Write([]byte(key))
	return NewSeeded(h.Sum64())
}

// Shuffle permutes items in place with Fisher-Yates
func Shuffle[T any](src Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Pick returns a uniformly chosen element; ok is false for an empty slice
func Pick[T any](src Source, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[src.IntN(len(items))], true
}
