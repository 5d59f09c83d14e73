package pipeline

import "io"

// OutlierPass re-derives each line's candidate key and reports lines whose
// candidate was never built, or was evicted for falling below support
// (§4.10). It shares the vocabulary and transform of the candidate-building
// pass but does not mutate either.
type OutlierPass struct {
	vocab     *Vocabulary
	transform *Transform
	builder   *CandidateBuilder
	support   int
}

// NewOutlierPass wires an outlier detector against the finalized candidate
// table produced by builder.
func NewOutlierPass(vocab *Vocabulary, transform *Transform, builder *CandidateBuilder) *OutlierPass {
	return &OutlierPass{vocab: vocab, transform: transform, builder: builder, support: vocab.Support()}
}

// IsOutlier reports whether a tokenized line's candidate is absent from the
// candidate table or fell below support.
func (o *OutlierPass) IsOutlier(words []string) bool {
	ids := ConstantIDs(o.vocab, o.transform, words)
	if len(ids) == 0 {
		return true
	}
	candidate, found := o.builder.Lookup(ids)
	if !found {
		return true
	}
	return candidate.Count < o.support
}

// Process re-reads raw lines paired with their already-tokenized words (the
// same line-pipeline output from the candidate pass) and writes every
// outlier's original raw line to w.
func (o *OutlierPass) Process(w io.Writer, lines []Line) error {
	for _, l := range lines {
		if !o.IsOutlier(l.Words) {
			continue
		}
		if _, err := io.WriteString(w, l.Raw+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Line pairs one raw input line with its tokenized words, as produced by
// the line pipeline, for Process. The engine does not retain Lines: its
// outlier pass re-reads the input files and calls IsOutlier per line.
type Line struct {
	Raw   string
	Words []string
}
