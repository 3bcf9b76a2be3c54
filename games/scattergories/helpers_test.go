package scattergories

import "fmt"

// scripted returns its values in order (reduced mod n), then zeros.
type scripted struct {
	vals []int
	i    int
}

func (s *scripted) IntN(n int) int {
	if s.i >= len(s.vals) {
		return 0
	}
	v := s.vals[s.i] % n
	s.i++
	return v
}

func testPool(n int) []string {
	pool := make([]string, n)
	for i := range pool {
		pool[i] = fmt.Sprintf("Category %02d", i+1)
	}
	return pool
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("player-%d", i)
	}
	return out
}
