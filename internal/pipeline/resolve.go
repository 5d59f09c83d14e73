package pipeline

// resolveConstant classifies one token as a frequent-word constant (via the
// vocabulary directly, or via its Word Transform synthetic form) or as
// variable. Shared by the candidate builder, the cluster-sketch pre-pass,
// and the outlier pass so all three agree on what counts as a constant.
func resolveConstant(vocab *Vocabulary, transform *Transform, w string) (*Word, bool) {
	if word, ok := vocab.Lookup(w); ok {
		return word, true
	}
	if transform != nil {
		if synthetic, ok := transform.Apply(w); ok {
			if word, ok2 := vocab.Lookup(synthetic); ok2 {
				return word, true
			}
		}
	}
	return nil, false
}

// ConstantIDs splits a tokenized line into its ordered frequent-word ids,
// dropping variable tokens.
func ConstantIDs(vocab *Vocabulary, transform *Transform, words []string) []WordID {
	var ids []WordID
	for _, w := range words {
		if word, ok := resolveConstant(vocab, transform, w); ok {
			ids = append(ids, word.ID)
		}
	}
	return ids
}
