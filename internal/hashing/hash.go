// Package hashing implements the pipeline's stable string hash and the
// per-table seed derivation. The word and cluster sketches, the vocabulary
// table, and the prefix trie all hash through StrHash; the candidate table
// is keyed by raw identity-key bytes instead.
package hashing

// StrHash folds s into an accumulator seeded at seed, one byte at a time,
// via h = h XOR ((h<<5) + (h>>2) + b), then reduces mod m (m == 0 yields
// 0). Every hashed structure in the pipeline uses this one recurrence
// rather than a stand-in like fnv or maphash, each with its own seed and
// modulus.
func StrHash(s string, m, seed uint64) uint64 {
	h := seed
	for i := 0; i < len(s); i++ {
		h = h ^ ((h << 5) + (h >> 2) + uint64(s[i]))
	}
	if m == 0 {
		return 0
	}
	return h % m
}

// Seeds holds the per-table hash seeds derived from a single master seed.
type Seeds struct {
	WordTable     uint64
	WordSketch    uint64
	ClusterSketch uint64
	ClusterTable  uint64
	PrefixSketch  uint64
}

// DeriveSeeds draws five values, in this fixed order, from a small PRNG
// seeded by initSeed: word table, word sketch, cluster sketch, cluster
// table, prefix sketch. The order matters for reproducibility — two runs
// with the same initSeed must produce bit-identical output (§8).
func DeriveSeeds(initSeed uint64) Seeds {
	rng := newSeedRNG(initSeed)
	return Seeds{
		WordTable:     rng.next(),
		WordSketch:    rng.next(),
		ClusterSketch: rng.next(),
		ClusterTable:  rng.next(),
		PrefixSketch:  rng.next(),
	}
}

// seedRNG is a small deterministic xorshift64* generator. It exists purely
// to derive hash seeds from one master seed; it is not used anywhere
// results need cryptographic or statistical rigor.
type seedRNG struct{ state uint64 }

func newSeedRNG(seed uint64) *seedRNG {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &seedRNG{state: seed}
}

func (r *seedRNG) next() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 0x2545F4914F6CDD1D
}

// NextUint64 exposes the generator as a plain function value, e.g. for
// RandomAlphanumeric token-sentinel generation.
func (r *seedRNG) NextUint64() uint64 { return r.next() }

// NewRandomSource returns a fresh seeded generator usable wherever callers
// need a stream of deterministic pseudo-random values (e.g. token sentinel
// collision avoidance), independent of the five derived table seeds.
func NewRandomSource(seed uint64) func() uint64 {
	r := newSeedRNG(seed)
	return r.next
}
