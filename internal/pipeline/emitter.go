package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bastiangx/logclust/internal/utils"
)

// Output orderings recognized by outputmode (§4.9).
const (
	OrderBySupport    = 0
	OrderByComplexity = 1
)

// Emitter renders surviving candidates and joined candidates to an output
// stream, in one of two orderings.
type Emitter struct {
	vocab       *Vocabulary
	mode        int
	detailToken bool
}

// NewEmitter prepares an emitter. mode is OrderBySupport or
// OrderByComplexity; detailToken forces parentheses around single-word
// token sets that would otherwise render bare.
func NewEmitter(vocab *Vocabulary, mode int, detailToken bool) *Emitter {
	return &Emitter{vocab: vocab, mode: mode, detailToken: detailToken}
}

func (e *Emitter) renderGap(b *strings.Builder, wc WildcardBound, leading bool) {
	if wc.Max == 0 {
		return
	}
	fmt.Fprintf(b, "*{%d,%d} ", wc.Min, wc.Max)
	_ = leading
}

// RenderCandidate produces an unjoined candidate's line, per §4.9:
// "*{min0,max0} W1 *{min1,max1} W2 ... Wk *{mink,maxk}", omitting any gap
// whose max is 0.
func (e *Emitter) RenderCandidate(c *Candidate) string {
	var b strings.Builder
	for i, id := range c.Constants {
		e.renderGap(&b, c.Wildcards[i], i == 0)
		b.WriteString(e.vocab.ByID(id).Key)
		b.WriteByte(' ')
	}
	s := strings.TrimRight(b.String(), " ")
	trailing := c.Wildcards[len(c.Wildcards)-1]
	if trailing.Max != 0 {
		s += fmt.Sprintf(" *{%d,%d}", trailing.Min, trailing.Max)
	}
	return s
}

// RenderJoined produces a joined candidate's line. Token positions render
// as "(w_a|w_b|...)" in insertion order; a single-word token set omits the
// parentheses unless detailToken is set.
func (e *Emitter) RenderJoined(jc *JoinedCandidate) string {
	var b strings.Builder
	for i := 0; i < jc.K; i++ {
		e.renderGap(&b, jc.Wildcards[i], i == 0)
		if jc.IsToken[i] {
			b.WriteString(e.renderTokenSet(jc.Tokens[i]))
		} else {
			b.WriteString(e.vocab.ByID(jc.Words[i]).Key)
		}
		b.WriteByte(' ')
	}
	s := strings.TrimRight(b.String(), " ")
	trailing := jc.Wildcards[jc.K]
	if trailing.Max != 0 {
		s += fmt.Sprintf(" *{%d,%d}", trailing.Min, trailing.Max)
	}
	return s
}

func (e *Emitter) renderTokenSet(words []WordID) string {
	if len(words) == 1 && !e.detailToken {
		return e.vocab.ByID(words[0]).Key
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = e.vocab.ByID(w).Key
	}
	return "(" + strings.Join(parts, "|") + ")"
}

type renderedLine struct {
	text  string
	count int
	k     int
}

func (e *Emitter) collect(family *Family, joined []*JoinedCandidate) (unjoined, joinedLines []renderedLine) {
	family.All(func(c *Candidate) {
		if c.JoinedFlag {
			return
		}
		unjoined = append(unjoined, renderedLine{text: e.RenderCandidate(c), count: c.Count, k: len(c.Constants)})
	})
	for _, jc := range joined {
		joinedLines = append(joinedLines, renderedLine{text: e.RenderJoined(jc), count: jc.Count, k: jc.K})
	}
	return unjoined, joinedLines
}

func writeLine(w io.Writer, l renderedLine) error {
	_, err := fmt.Fprintf(w, "%s\nSupport : %s\n\n", l.text, utils.FormatWithCommas(l.count))
	return err
}

// Emit writes every surviving candidate and joined candidate to w. In
// OrderBySupport mode, joined and unjoined lines share one ordering by
// descending count. In OrderByComplexity mode, two sections (unjoined then
// joined) are each ordered ascending by k, preserving within-bucket
// insertion order, with section headers when joining produced any output.
func (e *Emitter) Emit(w io.Writer, family *Family, joined []*JoinedCandidate) error {
	unjoined, joinedLines := e.collect(family, joined)

	if e.mode == OrderByComplexity {
		if len(joined) > 0 {
			fmt.Fprintf(w, "-- %d unjoined clusters --\n\n", len(unjoined))
		}
		sort.SliceStable(unjoined, func(i, j int) bool { return unjoined[i].k < unjoined[j].k })
		for _, l := range unjoined {
			if err := writeLine(w, l); err != nil {
				return err
			}
		}
		if len(joined) > 0 {
			fmt.Fprintf(w, "-- %d joined clusters --\n\n", len(joinedLines))
			sort.SliceStable(joinedLines, func(i, j int) bool { return joinedLines[i].k < joinedLines[j].k })
			for _, l := range joinedLines {
				if err := writeLine(w, l); err != nil {
					return err
				}
			}
		}
		return nil
	}

	all := append(unjoined, joinedLines...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].count > all[j].count })
	for _, l := range all {
		if err := writeLine(w, l); err != nil {
			return err
		}
	}
	return nil
}
