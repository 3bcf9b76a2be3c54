/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import (
	"math/rand/v2"
)

// Source supplies the randomness behind shuffles, letter draws and category
// draws. IntN must return a uniform value in [0, n) and may panic if n <= 0,
// matching math/rand/v2.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSource draws from the auto-seeded math/rand/v2 generator.
func DefaultSource() Source {
	return globalSource{}
}

// NewSeededSource returns a deterministic source, for replays and tests.
func NewSeededSource(seed1, seed2 uint64) Source {
	return rand.New(rand.NewPCG(seed1, seed2))
}

func orDefault(rng Source) Source {
	if rng == nil {
		return DefaultSource()
	}
	return rng
}

// shuffle performs an in-place Fisher-Yates shuffle.
func shuffle[T any](rng Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
