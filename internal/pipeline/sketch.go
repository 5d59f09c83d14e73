package pipeline

import "github.com/bastiangx/logclust/internal/hashing"

// Sketch is a fixed-size Count-Min-style counter array keyed by StrHash. It
// never produces false negatives relative to a threshold: a word's true
// count is always <= its slot's counter (collisions only inflate counts).
// Allocated at pass entry, discarded at pass exit (§3 lifecycles).
type Sketch struct {
	counters []int
	modulus  uint64
	seed     uint64
}

// NewSketch allocates a sketch with size slots, keyed with the given seed.
func NewSketch(size int, seed uint64) *Sketch {
	if size <= 0 {
		size = 1
	}
	return &Sketch{counters: make([]int, size), modulus: uint64(size), seed: seed}
}

// Increment bumps the counter for key by one occurrence.
func (s *Sketch) Increment(key []byte) {
	s.counters[hashing.StrHash(string(key), s.modulus, s.seed)]++
}

// Count returns the sketch's (over-)estimate for key.
func (s *Sketch) Count(key []byte) int {
	return s.counters[hashing.StrHash(string(key), s.modulus, s.seed)]
}

// PossiblyFrequent reports whether key's sketch slot has reached support.
// False means key is definitely below support; true means it might be at or
// above it (§4.1 rationale: trades a false-positive rate for memory).
func (s *Sketch) PossiblyFrequent(key []byte, support int) bool {
	return s.Count(key) >= support
}
