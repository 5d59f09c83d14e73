package pipeline

// ObserveWordSketch feeds one tokenized line's words into the word sketch's
// pre-pass (§4.1). Every occurrence increments its slot — deliberately not
// deduplicated per line, unlike the vocabulary pass that follows (§9 open
// question: this mismatch is reference behavior, preserved as-is). When
// transform is active, a word's synthetic form is also counted
// independently at its own hash.
func ObserveWordSketch(sketch *Sketch, transform *Transform, words []string) {
	for _, w := range words {
		sketch.Increment([]byte(w))
		if transform == nil {
			continue
		}
		if synthetic, ok := transform.Apply(w); ok {
			sketch.Increment([]byte(synthetic))
		}
	}
}
