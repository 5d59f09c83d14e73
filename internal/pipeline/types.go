// Package pipeline implements the density-based log line clustering engine:
// the multi-pass frequent-word and cluster-candidate mining pipeline, its
// sketches, its prefix-trie support aggregation, and its word-weight
// cluster joiner.
package pipeline

// WordID is a dense 1-based id assigned to a frequent word after vocabulary
// finalization. 0 is never a valid id.
type WordID uint32

// Word is a frequent word surviving vocabulary finalization.
type Word struct {
	Key   string
	Count int
	ID    WordID
}

// WildcardBound is the inclusive (min, max) bound on the number of
// non-frequent words occupying a gap.
type WildcardBound struct {
	Min, Max int
}

// Widen grows the bound to also cover actual, per §4.5 ("min := min(min,
// actual), max := max(max, actual)").
func (b *WildcardBound) Widen(actual int) {
	if actual < b.Min {
		b.Min = actual
	}
	if actual > b.Max {
		b.Max = actual
	}
}

// Candidate is a line pattern: an ordered sequence of frequent-word
// references with a (min,max) wildcard bound per gap.
type Candidate struct {
	Constants  []WordID
	Wildcards  []WildcardBound // len == len(Constants)+1
	Count      int
	staging    int // two-phase aggregation commit target (§4.7 step 4)
	JoinedFlag bool
	joined     *JoinedCandidate
	node       *trieNode // terminal aggregation-trie node, set when the trie is built
}

// IdentityKey is the byte-string identity of a candidate: its frequent-word
// ids, separated by the reserved '\n' byte, used to key the candidate
// table and the cluster sketch.
func IdentityKey(ids []WordID) []byte {
	// worst case every id is up to 10 digits plus a separator
	buf := make([]byte, 0, len(ids)*11)
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = appendUint32(buf, uint32(id))
	}
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse the digits just appended
	for l, r := start, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return buf
}

// JoinedCandidate merges a set of Candidates that differ only in low-weight
// (token) positions. K mirrors the source candidates' constant count;
// IsToken marks which positions were replaced by the token sentinel.
type JoinedCandidate struct {
	K         int
	IsToken   []bool
	Words     []WordID // meaningful where IsToken[i] == false
	Wildcards []WildcardBound
	Count     int
	Tokens    [][]WordID // Tokens[i] populated, deduplicated, insertion-ordered, where IsToken[i]
}

// Family buckets surviving candidates by their constant count k, per the
// "dynamic dense vector indexed by k" design note — iteration only ever
// walks 1..biggestK, never a fixed static capacity.
type Family struct {
	buckets  [][]*Candidate // buckets[0] is unused; k starts at 1
	biggestK int
}

// Add appends c to the bucket for its constant count, widening BiggestK.
func (f *Family) Add(c *Candidate) {
	k := len(c.Constants)
	for len(f.buckets) <= k {
		f.buckets = append(f.buckets, nil)
	}
	f.buckets[k] = append(f.buckets[k], c)
	if k > f.biggestK {
		f.biggestK = k
	}
}

// BiggestK returns the largest constant count seen.
func (f *Family) BiggestK() int { return f.biggestK }

// Bucket returns the candidates with exactly k constants, in insertion
// order.
func (f *Family) Bucket(k int) []*Candidate {
	if k < 0 || k >= len(f.buckets) {
		return nil
	}
	return f.buckets[k]
}

// SetBucket replaces the candidates with exactly k constants, used by
// eviction passes that filter in place.
func (f *Family) SetBucket(k int, candidates []*Candidate) {
	for len(f.buckets) <= k {
		f.buckets = append(f.buckets, nil)
	}
	f.buckets[k] = candidates
}

// All iterates every surviving candidate across 1..BiggestK, in ascending k
// order, which is the order §4.7 and §4.8 require their passes to run in.
func (f *Family) All(fn func(c *Candidate)) {
	for k := 1; k <= f.biggestK; k++ {
		for _, c := range f.buckets[k] {
			fn(c)
		}
	}
}

// Evict removes every candidate with count below support (§4.6), leaving
// the candidate table itself untouched (the outlier pass still needs to
// find evicted entries by key and see their stale count). Returns the
// number of surviving candidates.
func (f *Family) Evict(support int) int {
	survivors := 0
	for k := 1; k <= f.biggestK; k++ {
		bucket := f.buckets[k]
		kept := bucket[:0]
		for _, c := range bucket {
			if c.Count >= support {
				kept = append(kept, c)
			}
		}
		f.buckets[k] = kept
		survivors += len(kept)
	}
	return survivors
}
