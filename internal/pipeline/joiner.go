package pipeline

import "github.com/bastiangx/logclust/internal/utils"

// tokenSentinel is the reserved word standing in for a joined candidate's
// token positions. It must not collide with any frequent word's key.
const tokenSentinel = "token"

// Joiner implements word-weight cluster joining (§4.8): candidates whose
// low-weight ("token") positions vary across otherwise-identical patterns
// are merged into a single JoinedCandidate, with those positions rendered
// as a parenthesized alternation at emit time.
type Joiner struct {
	theta    float64
	weightF  int
	dep      *DepMatrix
	vocab    *Vocabulary
	table    map[string]*JoinedCandidate
	order    []*JoinedCandidate
	sentinel string
}

// NewJoiner prepares a joiner. weightF must be 1 or 2. randSource supplies
// the PRNG used only if the literal sentinel collides with a frequent word.
func NewJoiner(theta float64, weightF int, dep *DepMatrix, vocab *Vocabulary, randSource func() uint64) *Joiner {
	j := &Joiner{
		theta:   theta,
		weightF: weightF,
		dep:     dep,
		vocab:   vocab,
		table:   make(map[string]*JoinedCandidate),
		sentinel: tokenSentinel,
	}
	for {
		if _, collides := vocab.Lookup(j.sentinel); !collides {
			break
		}
		j.sentinel = utils.RandomAlphanumeric(8, randSource)
	}
	return j
}

// weight computes Wi's join weight at position i within candidate c's
// constant sequence (§4.8).
func (j *Joiner) weight(c *Candidate, i int) float64 {
	k := len(c.Constants)
	wi := c.Constants[i]
	if j.weightF == 1 {
		var sum float64
		for _, wj := range c.Constants {
			sum += j.dep.Dep(wj, wi)
		}
		return sum / float64(k)
	}

	unique := uniqueWords(c.Constants)
	if len(unique) == 1 {
		return 1
	}
	var sum float64
	for _, u := range unique {
		sum += j.dep.Dep(u, wi)
	}
	sum -= j.dep.Dep(wi, wi)
	return sum / float64(len(unique)-1)
}

func uniqueWords(ids []WordID) []WordID {
	seen := make(map[WordID]bool, len(ids))
	var out []WordID
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Join evaluates c's per-position weights against theta and, if at least
// one token position exists, finds-or-inserts c's JoinedCandidate and
// folds c's count, wildcards, and token words into it. Returns whether c
// was joined (and so must be suppressed from direct emission).
func (j *Joiner) Join(c *Candidate) bool {
	k := len(c.Constants)
	isToken := make([]bool, k)
	anyToken := false
	for i := range c.Constants {
		if j.weight(c, i) < j.theta {
			isToken[i] = true
			anyToken = true
		}
	}
	if !anyToken {
		return false
	}

	key := j.joinedKey(c, isToken)
	jc, existed := j.table[key]
	if !existed {
		jc = &JoinedCandidate{
			K:         k,
			IsToken:   isToken,
			Words:     append([]WordID(nil), c.Constants...),
			Wildcards: append([]WildcardBound(nil), c.Wildcards...),
			Tokens:    make([][]WordID, k),
		}
		j.table[key] = jc
		j.order = append(j.order, jc)
	}
	jc.Count += c.Count
	for i, gap := range c.Wildcards {
		jc.Wildcards[i].Min = min(jc.Wildcards[i].Min, gap.Min)
		jc.Wildcards[i].Max = max(jc.Wildcards[i].Max, gap.Max)
	}
	for i, tok := range isToken {
		if !tok {
			continue
		}
		word := c.Constants[i]
		already := false
		for _, seen := range jc.Tokens[i] {
			if seen == word {
				already = true
				break
			}
		}
		if !already {
			jc.Tokens[i] = append(jc.Tokens[i], word)
		}
	}

	c.JoinedFlag = true
	c.joined = jc
	return true
}

// joinedKey builds the find-or-insert key for c's joined candidate: its
// non-token words' keys and the sentinel at token positions, '\n'-joined.
func (j *Joiner) joinedKey(c *Candidate, isToken []bool) string {
	buf := make([]byte, 0, 32*len(c.Constants))
	for i, id := range c.Constants {
		if i > 0 {
			buf = append(buf, '\n')
		}
		if isToken[i] {
			buf = append(buf, j.sentinel...)
			continue
		}
		word := j.vocab.ByID(id)
		buf = append(buf, word.Key...)
	}
	return string(buf)
}

// Joined returns every JoinedCandidate created so far, in first-insertion
// order.
func (j *Joiner) Joined() []*JoinedCandidate { return j.order }
