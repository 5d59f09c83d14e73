package pipeline

import (
	"github.com/bastiangx/logclust/internal/utils"
	"github.com/tchap/go-patricia/v2/patricia"
)

// CandidateTable is the find-or-insert-by-identity-key store over line
// candidates (§4.5). A patricia.Trie is reused here as a byte-keyed hash
// map: IdentityKey bytes in, *Candidate out. Its radix-compression and
// prefix traversal are unused — the Prefix Trie's wildcard-aware descending-
// hash siblings (§4.7) are a distinct structure built separately in trie.go.
type CandidateTable struct {
	trie *patricia.Trie
}

// NewCandidateTable allocates an empty candidate table.
func NewCandidateTable() *CandidateTable {
	return &CandidateTable{trie: patricia.NewTrie()}
}

func (ct *CandidateTable) get(key []byte) (*Candidate, bool) {
	item := ct.trie.Get(patricia.Prefix(key))
	if item == nil {
		return nil, false
	}
	return item.(*Candidate), true
}

func (ct *CandidateTable) put(key []byte, c *Candidate) {
	ct.trie.Insert(patricia.Prefix(key), c)
}

// CandidateBuilder runs the candidate-construction pass (§4.5): it splits a
// line's words into constants (frequent, or frequent-via-transform) and
// variable runs, finds or inserts the resulting Candidate, widens its
// wildcard bounds, and — in the same pass, per the fused-pass requirement —
// feeds the word dependency matrix when cluster joining is enabled.
type CandidateBuilder struct {
	vocab     *Vocabulary
	transform *Transform
	sketch    *Sketch
	support   int
	table     *CandidateTable
	family    Family
	depMatrix *DepMatrix
	seen      *utils.SeenIDs
}

// NewCandidateBuilder constructs a builder over an already-finalized
// vocabulary. transform, sketch, and depMatrix are each optional (nil
// disables word transform, cluster-candidate sketching, and dependency
// matrix bookkeeping respectively).
func NewCandidateBuilder(vocab *Vocabulary, transform *Transform, sketch *Sketch, depMatrix *DepMatrix) *CandidateBuilder {
	return &CandidateBuilder{
		vocab:     vocab,
		transform: transform,
		sketch:    sketch,
		support:   vocab.Support(),
		table:     NewCandidateTable(),
		depMatrix: depMatrix,
		seen:      utils.NewSeenIDs(),
	}
}

// ProcessLine builds or updates the candidate for one already-tokenized
// line. words are the line's raw tokens post line-pipe processing.
func (cb *CandidateBuilder) ProcessLine(words []string) {
	var constants []WordID
	var gaps []int
	variable := 0
	cb.seen.Reset()

	for _, w := range words {
		word, ok := resolveConstant(cb.vocab, cb.transform, w)
		if !ok {
			variable++
			continue
		}
		constants = append(constants, word.ID)
		gaps = append(gaps, variable)
		variable = 0
		cb.seen.Add(uint32(word.ID))
	}
	if len(constants) == 0 {
		return
	}
	trailing := variable

	if cb.depMatrix != nil {
		cb.depMatrix.ObserveLine(cb.seen.IDs())
	}

	key := IdentityKey(constants)
	if cb.sketch != nil && !cb.sketch.PossiblyFrequent(key, cb.support) {
		// The cluster sketch was already populated in its own dedicated
		// pre-pass (§4.4); here it is only ever consulted, never written.
		return
	}

	candidate, existed := cb.table.get(key)
	isNew := !existed
	if isNew {
		candidate = &Candidate{
			Constants: append([]WordID(nil), constants...),
			Wildcards: make([]WildcardBound, len(constants)+1),
		}
		cb.table.put(key, candidate)
	}
	candidate.Count++
	for i, gap := range gaps {
		if isNew {
			candidate.Wildcards[i] = WildcardBound{Min: gap, Max: gap}
		} else {
			candidate.Wildcards[i].Widen(gap)
		}
	}
	last := len(candidate.Wildcards) - 1
	if isNew {
		candidate.Wildcards[last] = WildcardBound{Min: trailing, Max: trailing}
	} else {
		candidate.Wildcards[last].Widen(trailing)
	}
	if isNew {
		cb.family.Add(candidate)
	}
}

// Family returns the surviving candidates bucketed by constant count.
func (cb *CandidateBuilder) Family() *Family { return &cb.family }

// Lookup returns the candidate with the given frequent-word-id sequence, if
// any was ever built (used by the outlier pass, §4.10).
func (cb *CandidateBuilder) Lookup(ids []WordID) (*Candidate, bool) {
	return cb.table.get(IdentityKey(ids))
}
