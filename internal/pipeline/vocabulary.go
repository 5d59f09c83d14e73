package pipeline

import (
	"math"
	"sort"

	"github.com/bastiangx/logclust/internal/hashing"
)

// vocabNode is one hash-chain entry in the open-chained vocabulary table.
type vocabNode struct {
	key   string
	count int
	id    WordID
	next  *vocabNode
}

// Vocabulary is the exact word-count table built during the vocabulary
// pass: an open-chained hash table with move-to-front on lookup hits, which
// after Finalize retains only words with count >= support and renumbers
// their ids densely to 1..F (§4.2).
type Vocabulary struct {
	seed       uint64
	buckets    []*vocabNode
	nextID     WordID
	totalLines int
	support    int
	finalized  bool
	byID       []*Word // 1-based; byID[0] is unused
	byKey      map[string]*Word
}

// NewVocabulary allocates a vocabulary table with tableSize slots.
func NewVocabulary(tableSize int, seed uint64) *Vocabulary {
	if tableSize <= 0 {
		tableSize = 100000
	}
	return &Vocabulary{seed: seed, buckets: make([]*vocabNode, tableSize)}
}

func (v *Vocabulary) bucketIndex(key string) uint64 {
	return hashing.StrHash(key, uint64(len(v.buckets)), v.seed)
}

// observe increments key's count by one, moving its chain entry to the
// front of its bucket on a hit, or inserting (and assigning a fresh id) on
// a miss.
func (v *Vocabulary) observe(key string) {
	idx := v.bucketIndex(key)
	var prev *vocabNode
	node := v.buckets[idx]
	for node != nil {
		if node.key == key {
			node.count++
			if prev != nil {
				prev.next = node.next
				node.next = v.buckets[idx]
				v.buckets[idx] = node
			}
			return
		}
		prev = node
		node = node.next
	}
	v.nextID++
	fresh := &vocabNode{key: key, count: 1, id: v.nextID, next: v.buckets[idx]}
	v.buckets[idx] = fresh
}

// CountLine increments every distinct word in words by exactly one — a
// word recurring within the line only counts once (§4.2). words should
// already be filtered by the word sketch, if one is enabled.
func (v *Vocabulary) CountLine(words []string) {
	if len(words) > 0 {
		seen := make(map[string]bool, len(words))
		for _, w := range words {
			if seen[w] {
				continue
			}
			seen[w] = true
			v.observe(w)
		}
	}
	v.totalLines++
}

// TotalLines returns the number of lines counted so far.
func (v *Vocabulary) TotalLines() int { return v.totalLines }

// Finalize resolves a percentage support into an absolute one if pctSupport
// is set, sweeps the table for entries with count >= support, and
// renumbers survivors densely to 1..F in original first-seen order. Returns
// F, the number of frequent words.
func (v *Vocabulary) Finalize(support int, pctSupport float64) int {
	if pctSupport > 0 {
		support = int(math.Ceil(float64(v.totalLines) * pctSupport / 100))
	}
	v.support = support

	var survivors []*vocabNode
	for _, head := range v.buckets {
		for n := head; n != nil; n = n.next {
			if n.count >= support {
				survivors = append(survivors, n)
			}
		}
	}
	sort.Slice(survivors, func(i, j int) bool { return survivors[i].id < survivors[j].id })

	v.byID = make([]*Word, len(survivors)+1)
	v.byKey = make(map[string]*Word, len(survivors))
	for i, n := range survivors {
		w := &Word{Key: n.key, Count: n.count, ID: WordID(i + 1)}
		v.byID[i+1] = w
		v.byKey[n.key] = w
	}
	v.finalized = true
	return len(survivors)
}

// Support returns the resolved absolute support threshold (valid only after
// Finalize).
func (v *Vocabulary) Support() int { return v.support }

// Lookup returns the frequent Word for key, if any (valid only after
// Finalize).
func (v *Vocabulary) Lookup(key string) (*Word, bool) {
	w, ok := v.byKey[key]
	return w, ok
}

// ByID returns the frequent Word with the given dense id.
func (v *Vocabulary) ByID(id WordID) *Word {
	if int(id) >= len(v.byID) {
		return nil
	}
	return v.byID[id]
}

// Frequent returns every retained frequent Word, in ascending id order.
func (v *Vocabulary) Frequent() []*Word {
	if len(v.byID) == 0 {
		return nil
	}
	return v.byID[1:]
}

// F returns the number of frequent words.
func (v *Vocabulary) F() int {
	if len(v.byID) == 0 {
		return 0
	}
	return len(v.byID) - 1
}
