package sampler

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("name-%03d", i)
	}
	return out
}

func TestShuffle_IsPermutationAndDoesNotMutateInput(t *testing.T) {
	src := NewSource(42)
	in := names(50)
	orig := append([]string(nil), in...)

	out := Shuffle(src, in)

	assert.Equal(t, orig, in, "input must not be modified")
	require.Len(t, out, len(in))
	sorted := append([]string(nil), out...)
	sort.Strings(sorted)
	assert.Equal(t, orig, sorted)
}

func TestShuffle_EmptyAndSingle(t *testing.T) {
	src := NewSource(1)
	assert.Empty(t, Shuffle(src, []string{}))
	assert.Equal(t, []string{"only"}, Shuffle(src, []string{"only"}))
}

func TestShuffle_AllOrderingsReachable(t *testing.T) {
	src := NewSource(7)
	seen := map[string]int{}
	const trials = 6000
	for i := 0; i < trials; i++ {
		out := Shuffle(src, []string{"a", "b", "c"})
		seen[fmt.Sprint(out)]++
	}
	require.Len(t, seen, 6)
	for perm, n := range seen {
		// each of the 3! orderings expected ~1000 times
		assert.InDelta(t, trials/6, n, 150, "ordering %s", perm)
	}
}

func TestPickRandom_CountBelowLength(t *testing.T) {
	src := NewSource(3)
	in := names(100)

	out := PickRandom(src, in, 45)

	require.Len(t, out, 45)
	seen := map[string]bool{}
	for _, n := range out {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
		assert.Contains(t, in, n)
	}
}

func TestPickRandom_CountAtOrAboveLengthReturnsEverything(t *testing.T) {
	src := NewSource(3)
	in := names(10)

	for _, count := range []int{10, 45} {
		out := PickRandom(src, in, count)
		require.Len(t, out, 10)
		assert.ElementsMatch(t, in, out)
	}
}

func TestPickRandom_NegativeCount(t *testing.T) {
	assert.Empty(t, PickRandom(NewSource(1), names(5), -1))
}

func TestPickRandom_Uniformity(t *testing.T) {
	const (
		n      = 20
		k      = 5
		trials = 20000
	)
	src := NewSource(2026)
	in := names(n)
	hits := map[string]int{}
	for i := 0; i < trials; i++ {
		for _, name := range PickRandom(src, in, k) {
			hits[name]++
		}
	}

	want := float64(k) / float64(n)
	for _, name := range in {
		freq := float64(hits[name]) / trials
		// standard error is ~0.003 here; allow a generous band
		assert.LessOrEqual(t, math.Abs(freq-want), 0.02, "%s frequency %.4f", name, freq)
	}
}
