package pipeline

import "github.com/bastiangx/logclust/internal/hashing"

// trieNode is one node of the support-aggregation prefix trie (§4.7):
// children of any node are kept in descending-hash order; children sharing
// a hash (every wildcard node, or rare word-hash collisions) are
// distinguished by a linear equality scan. A node is either a word node
// (isWildcard false, word set) or a wildcard node (isWildcard true, min/max
// set); both share the same struct since the traversal only ever needs
// "what's my step contribution" (word: (1,1), wildcard: (min,max)).
type trieNode struct {
	hash       uint64
	isWildcard bool
	word       *Word
	min, max   int
	parent     *trieNode
	child      *trieNode
	next       *trieNode
	isEnd      *Candidate
}

func (n *trieNode) step() (min, max int) {
	if n.isWildcard {
		return n.min, n.max
	}
	return 1, 1
}

func (n *trieNode) matchesWildcard(min, max int) bool {
	return n.isWildcard && n.min == min && n.max == max
}

func (n *trieNode) matchesWord(hash uint64, word *Word) bool {
	return !n.isWildcard && n.hash == hash && n.word.ID == word.ID
}

// Aggregator builds the prefix trie over a candidate family and, once built,
// adds each surviving candidate's more-specific descendants' counts into
// it. It is allocated fresh for one aggregation pass and discarded after
// (§3 lifecycle: "Trie nodes live for the aggregation pass only").
type Aggregator struct {
	root  *trieNode
	vocab *Vocabulary
	seed  uint64
	p     uint64 // trie hash modulus, 3F
}

// NewAggregator prepares an aggregator over vocab's frequent words. The
// prefix-sketch seed seeds the trie's word-node hashes, taken mod P = 3F
// (§3: "hash is H(key,P,s_p)"); wildcard nodes carry the sentinel hash P.
func NewAggregator(vocab *Vocabulary, prefixSeed uint64) *Aggregator {
	p := uint64(3 * vocab.F())
	if p == 0 {
		p = 1
	}
	return &Aggregator{
		root:  &trieNode{hash: p + 1},
		vocab: vocab,
		seed:  prefixSeed,
		p:     p,
	}
}

func (a *Aggregator) hashWord(w *Word) uint64 {
	return hashing.StrHash(w.Key, a.p, a.seed)
}

// findOrInsert locates (or creates) parent's child matching the given hash
// and identity, maintaining the descending-hash sibling order.
func (a *Aggregator) findOrInsert(parent *trieNode, hash uint64, isWildcard bool, word *Word, min, max int) *trieNode {
	var prev *trieNode
	cur := parent.child
	for cur != nil && cur.hash > hash {
		prev = cur
		cur = cur.next
	}
	for cur != nil && cur.hash == hash {
		if isWildcard && cur.matchesWildcard(min, max) {
			return cur
		}
		if !isWildcard && cur.matchesWord(hash, word) {
			return cur
		}
		prev = cur
		cur = cur.next
	}
	fresh := &trieNode{hash: hash, isWildcard: isWildcard, word: word, min: min, max: max, parent: parent}
	fresh.next = cur
	if prev == nil {
		parent.child = fresh
	} else {
		prev.next = fresh
	}
	return fresh
}

// insert adds one candidate's path into the trie, marking its terminal node
// (§3: "inserting a candidate produces one wildcard node per non-empty gap
// followed by one word node per constant, in order").
func (a *Aggregator) insert(c *Candidate) {
	ptr := a.root
	k := len(c.Constants)
	for i := 0; i < k; i++ {
		gap := c.Wildcards[i]
		if gap.Max != 0 {
			ptr = a.findOrInsert(ptr, a.p, true, nil, gap.Min, gap.Max)
		}
		word := a.vocab.ByID(c.Constants[i])
		ptr = a.findOrInsert(ptr, a.hashWord(word), false, word, 0, 0)
	}
	trailing := c.Wildcards[k]
	if trailing.Max != 0 {
		ptr = a.findOrInsert(ptr, a.p, true, nil, trailing.Min, trailing.Max)
	}
	ptr.isEnd = c
	c.node = ptr
}

// Build inserts every surviving candidate into the trie, in ascending-k
// order (the order the family already iterates in).
func (a *Aggregator) Build(family *Family) {
	family.All(a.insert)
}

// firstWildcardLocation returns the 1-based constant index whose preceding
// gap is non-empty, 0 if only the trailing gap is non-empty, or -1 if the
// candidate has no wildcards at all (nothing can be more specific than it).
func firstWildcardLocation(c *Candidate) int {
	k := len(c.Constants)
	for i := 0; i < k; i++ {
		if c.Wildcards[i].Max != 0 {
			return i + 1
		}
	}
	if c.Wildcards[k].Max != 0 {
		return 0
	}
	return -1
}

// firstWildcardReverseDepth counts trie levels from a candidate's terminal
// node up to the parent of its first wildcard node.
func firstWildcardReverseDepth(c *Candidate) int {
	loc := firstWildcardLocation(c)
	if loc == -1 {
		return 0
	}
	if loc == 0 {
		return 1
	}
	k := len(c.Constants)
	depth := 0
	for i := loc; i <= k; i++ {
		depth++
		if c.Wildcards[i-1].Max != 0 {
			depth++
		}
	}
	if c.Wildcards[k].Max != 0 {
		depth++
	}
	return depth
}

func (a *Aggregator) commonParent(c *Candidate) *trieNode {
	ptr := c.node
	for i, depth := 0, firstWildcardReverseDepth(c); i < depth; i++ {
		ptr = ptr.parent
	}
	return ptr
}

// findMoreSpecificTail explores parent's subtree accumulating (min,max)
// bounds, aggregating any terminal candidate whose cumulative bound falls
// within c's trailing gap (§4.7 step 2-3, tail case: constant==0).
func (a *Aggregator) findMoreSpecificTail(parent *trieNode, c *Candidate, min, max int) {
	trailing := c.Wildcards[len(c.Wildcards)-1]
	for ptr := parent.child; ptr != nil; ptr = ptr.next {
		stepMin, stepMax := ptr.step()
		newMin, newMax := min+stepMin, max+stepMax

		if newMin < trailing.Min {
			a.findMoreSpecificTail(ptr, c, newMin, newMax)
			continue
		}
		if newMax > trailing.Max {
			continue
		}
		if ptr.isEnd != nil && ptr.isEnd != c {
			c.staging += ptr.isEnd.Count
		}
		a.findMoreSpecificTail(ptr, c, newMin, newMax)
	}
}

// findMoreSpecific walks the trie looking for c's constant at position
// constantIdx (1-based), recursing to the next constant on a match and to
// the tail search once all constants are matched (§4.7 steps 2-3).
func (a *Aggregator) findMoreSpecific(parent *trieNode, c *Candidate, constantIdx, min, max int, hash uint64) {
	if constantIdx == 0 {
		a.findMoreSpecificTail(parent, c, min, max)
		return
	}
	k := len(c.Constants)
	gap := c.Wildcards[constantIdx-1]
	word := a.vocab.ByID(c.Constants[constantIdx-1])

	for ptr := parent.child; ptr != nil; ptr = ptr.next {
		stepMin, stepMax := ptr.step()
		newMin, newMax := min+stepMin, max+stepMax

		if newMin-1 < gap.Min {
			a.findMoreSpecific(ptr, c, constantIdx, newMin, newMax, hash)
			continue
		}
		if newMax-1 > gap.Max {
			continue
		}
		if !ptr.matchesWord(hash, word) {
			a.findMoreSpecific(ptr, c, constantIdx, newMin, newMax, hash)
			continue
		}

		if constantIdx < k {
			nextWord := a.vocab.ByID(c.Constants[constantIdx])
			a.findMoreSpecific(ptr, c, constantIdx+1, 0, 0, a.hashWord(nextWord))
			continue
		}
		trailing := c.Wildcards[k]
		if trailing.Max == 0 {
			if ptr.isEnd != nil && ptr.isEnd != c {
				c.staging += ptr.isEnd.Count
			}
			continue
		}
		if trailing.Min == 0 && ptr.isEnd != nil && ptr.isEnd != c {
			c.staging += ptr.isEnd.Count
		}
		a.findMoreSpecific(ptr, c, 0, 0, 0, hash)
	}
}

func (a *Aggregator) aggregateCandidate(c *Candidate) {
	loc := firstWildcardLocation(c)
	var hash uint64
	if loc > 0 {
		hash = a.hashWord(a.vocab.ByID(c.Constants[loc-1]))
	}
	a.findMoreSpecific(a.commonParent(c), c, loc, 0, 0, hash)
}

// Aggregate runs the full support-aggregation pass over family: builds the
// trie, stages every more-specific descendant's count into each candidate
// via its terminal node (two-phase, to avoid one aggregation feeding
// another within the same pass), then commits the staged counts.
func (a *Aggregator) Aggregate(family *Family) {
	a.Build(family)
	family.All(func(c *Candidate) { c.staging = c.Count })
	family.All(func(c *Candidate) {
		if firstWildcardLocation(c) >= 0 {
			a.aggregateCandidate(c)
		}
	})
	family.All(func(c *Candidate) {
		c.Count = c.staging
		c.staging = 0
	})
}
