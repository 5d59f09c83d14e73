package pipeline

// NewClusterSketch allocates the candidate-identity-key sketch (§4.4): the
// same Count-Min-style structure as the word sketch, keyed by a line's
// candidate identity key instead of a single word. Mutually exclusive with
// support aggregation, which needs every potentially-subsumed candidate
// present in the candidate table — a cluster sketch would silently drop
// some of them before the trie ever sees them.
func NewClusterSketch(size int, seed uint64) *Sketch {
	return NewSketch(size, seed)
}

// ObserveClusterSketch feeds one tokenized line's candidate identity key
// into the cluster sketch's dedicated pre-pass (a full, separate read of
// the input ahead of the candidate-building pass, mirroring the word
// sketch's own pre-pass in §4.1).
func ObserveClusterSketch(sketch *Sketch, vocab *Vocabulary, transform *Transform, words []string) {
	ids := ConstantIDs(vocab, transform, words)
	if len(ids) == 0 {
		return
	}
	sketch.Increment(IdentityKey(ids))
}
