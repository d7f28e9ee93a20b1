// Package sampling provides the seeded random primitives used by the dataset
// generators.
//
// Every Sampler is a deterministic function of its seed and the sequence of
// calls made on it: two samplers built from the same seed and driven the same
// way return identical values. Generators therefore create one Sampler per
// table and never share it.
package sampling

import (
	"fmt"
	"math/rand/v2"
)

// streamSalt separates the two PCG state words so that seed 0 still yields a
// well-mixed stream.
const streamSalt = 0x9e3779b97f4a7c15

// Sampler draws random values from a seeded PCG generator.
type Sampler struct {
	rng *rand.Rand
}

// New returns a sampler seeded with seed.
func New(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^streamSalt))}
}

// IntRange returns a uniform integer in [lo, hi). If hi <= lo it returns lo.
func (s *Sampler) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}

// Bool returns true or false with equal probability.
func (s *Sampler) Bool() bool {
	return s.rng.IntN(2) == 1
}

// Choice draws k values from pop uniformly with replacement.
func (s *Sampler) Choice(pop []int64, k int) []int64 {
	if len(pop) == 0 || k <= 0 {
		return nil
	}
	out := make([]int64, k)
	for i := range out {
		out[i] = pop[s.rng.IntN(len(pop))]
	}
	return out
}

// SampleDistinct returns k distinct indices drawn from [0, n).
//
// It runs the first k steps of a Fisher-Yates shuffle over a virtual array
// 0..n-1, recording only the displaced slots in a map. Every ordered
// k-permutation of [0, n) is equally likely, memory is O(k) regardless of n,
// and the result depends only on the sampler state.
func (s *Sampler) SampleDistinct(n, k int) ([]int, error) {
	if k < 0 || n < 0 {
		return nil, fmt.Errorf("sampling: negative size (n=%d, k=%d)", n, k)
	}
	if k > n {
		return nil, fmt.Errorf("sampling: cannot take %d distinct values from %d", k, n)
	}

	displaced := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := displaced[i]; ok {
			return v
		}
		return i
	}

	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(n-i)
		vi, vj := at(i), at(j)
		displaced[j] = vi
		displaced[i] = vj
		out[i] = vj
	}
	return out, nil
}

// SampleDistinctFrom returns k distinct elements of pop, chosen by position.
func (s *Sampler) SampleDistinctFrom(pop []int64, k int) ([]int64, error) {
	idx, err := s.SampleDistinct(len(pop), k)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(idx))
	for i, j := range idx {
		out[i] = pop[j]
	}
	return out, nil
}

// Shuffle permutes n elements in place through swap.
func (s *Sampler) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// DaysBetween returns a uniform day offset in [0, days].
func (s *Sampler) DaysBetween(days int) int {
	if days <= 0 {
		return 0
	}
	return s.rng.IntN(days + 1)
}
