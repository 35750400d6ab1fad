// Package sampler provides the unbiased shuffle and subset selection used by
// the draw engine.
package sampler

import (
	"math/rand"
	"sync"
	"time"
)

// Source is a uniform random integer source. Intn returns a value in [0, n).
type Source interface {
	Intn(n int) int
}

// lockedSource wraps a *rand.Rand so it can be shared between goroutines.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed.
func NewSource(seed int64) Source {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSource returns a goroutine-safe Source seeded from the wall clock.
func NewTimeSource() Source {
	return NewSource(time.Now().UnixNano())
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// Shuffle returns a uniformly random permutation of items (Fisher-Yates).
// The input slice is not modified.
func Shuffle[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PickRandom returns count items chosen uniformly without replacement, in the
// order they were drawn. When count >= len(items) every item is returned in a
// shuffled order.
func PickRandom[T any](src Source, items []T, count int) []T {
	if count < 0 {
		count = 0
	}
	shuffled := Shuffle(src, items)
	if count >= len(shuffled) {
		return shuffled
	}
	return shuffled[:count]
}
