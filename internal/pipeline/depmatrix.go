package pipeline

// DepMatrix is the word dependency matrix D[F+1][F+1]: D[i][j] counts the
// lines in which both frequent word i and frequent word j appear at least
// once. The diagonal D[i][i] is word i's line count. Built only when
// cluster joining (§4.8) is enabled, in the same fused pass as candidate
// building, since recomputing it separately would mean re-reading every
// input file (§4.5: "this single fused pass is mandatory for performance").
type DepMatrix struct {
	f int
	d [][]int
}

// NewDepMatrix allocates a (f+1)x(f+1) matrix for f frequent words.
func NewDepMatrix(f int) *DepMatrix {
	n := f + 1
	d := make([][]int, n)
	for i := range d {
		d[i] = make([]int, n)
	}
	return &DepMatrix{f: f, d: d}
}

// ObserveLine increments D[i][j] for every ordered pair (i,j), including
// i==j, over the unique frequent-word ids present in one line.
func (m *DepMatrix) ObserveLine(ids []uint32) {
	for _, i := range ids {
		row := m.d[i]
		for _, j := range ids {
			row[j]++
		}
	}
}

// Count returns the raw co-occurrence count D[i][j].
func (m *DepMatrix) Count(i, j WordID) int {
	return m.d[i][j]
}

// Dep returns dep(i,j) = D[i][j] / D[i][i], the conditional co-occurrence
// of j given i. Note this is asymmetric: dep(i,j) != dep(j,i) in general.
func (m *DepMatrix) Dep(i, j WordID) float64 {
	denom := m.d[i][i]
	if denom == 0 {
		return 0
	}
	return float64(m.d[i][j]) / float64(denom)
}
