package align

// Similarity scores a pair of aligned tokens.
type Similarity func(a, b string) float64

// ExactMatch scores 1.0 for identical tokens and penalty otherwise.
func ExactMatch(penalty float64) Similarity {
	return func(a, b string) float64 {
		if a == b {
			return 1.0
		}
		return penalty
	}
}

const (
	moveStop uint8 = iota
	moveDiag
	moveUp
	moveLeft
)

// matrix holds the Smith-Waterman scores and traceback moves in flat arrays
// indexed i*(m+1)+j. Row i covers the prefix a[:i], column j the prefix b[:j].
type matrix struct {
	a, b    []string
	gap     float64
	sim     Similarity
	width   int
	score   []float64
	move    []uint8
	rowMask []bool
	colMask []bool
}

func newMatrix(a, b []string, gap float64, sim Similarity) *matrix {
	size := (len(a) + 1) * (len(b) + 1)
	return &matrix{
		a:       a,
		b:       b,
		gap:     gap,
		sim:     sim,
		width:   len(b) + 1,
		score:   make([]float64, size),
		move:    make([]uint8, size),
		rowMask: make([]bool, len(a)+1),
		colMask: make([]bool, len(b)+1),
	}
}

// fill recomputes every cell and returns the first cell (row-major) holding
// the maximum score. Masked rows and columns are pinned to zero.
func (m *matrix) fill() (best float64, bi, bj int) {
	w := m.width
	for i := 1; i <= len(m.a); i++ {
		for j := 1; j <= len(m.b); j++ {
			idx := i*w + j
			if m.rowMask[i] || m.colMask[j] {
				m.score[idx] = 0
				m.move[idx] = moveStop
				continue
			}
			cell, mv := 0.0, moveStop
			if v := m.score[idx-w-1] + m.sim(m.a[i-1], m.b[j-1]); v > cell {
				cell, mv = v, moveDiag
			}
			if v := m.score[idx-w] + m.gap; v > cell {
				cell, mv = v, moveUp
			}
			if v := m.score[idx-1] + m.gap; v > cell {
				cell, mv = v, moveLeft
			}
			m.score[idx] = cell
			m.move[idx] = mv
			if cell > best {
				best, bi, bj = cell, i, j
			}
		}
	}
	return best, bi, bj
}

// traceback walks back from (i, j) until a zero cell and returns the alignment
// ending there.
func (m *matrix) traceback(i, j int) Alignment {
	w := m.width
	out := Alignment{Score: m.score[i*w+j], End1: i, End2: j}
	var cols []Column
	for m.move[i*w+j] != moveStop {
		switch m.move[i*w+j] {
		case moveDiag:
			a, b := m.a[i-1], m.b[j-1]
			op := OpMismatch
			if a == b {
				op = OpMatch
			}
			cols = append(cols, Column{A: a, B: b, Op: op})
			i--
			j--
		case moveUp:
			cols = append(cols, Column{A: m.a[i-1], Op: OpDelete})
			i--
		case moveLeft:
			cols = append(cols, Column{B: m.b[j-1], Op: OpInsert})
			j--
		}
	}
	for l, r := 0, len(cols)-1; l < r; l, r = l+1, r-1 {
		cols[l], cols[r] = cols[r], cols[l]
	}
	out.Start1, out.Start2 = i, j
	out.Columns = cols
	return out
}

// mask excludes the rows and columns consumed by an alignment from every
// later extraction. Row k+1 is the only way to consume a[k], so pinning rows
// Start1+1..End1 to zero keeps later alignments off [Start1, End1).
func (m *matrix) mask(a Alignment) {
	for i := a.Start1 + 1; i <= a.End1; i++ {
		m.rowMask[i] = true
	}
	for j := a.Start2 + 1; j <= a.End2; j++ {
		m.colMask[j] = true
	}
}

// AlignMulti returns every disjoint local alignment of a and b scoring at
// least minScore, best first. gap is the (non-positive) cost of one gap
// column and sim scores aligned token pairs. Ties resolve to the alignment
// whose last cell comes first in row-major order; traceback prefers a
// diagonal move, then a deletion, then an insertion.
func AlignMulti(a, b []string, gap float64, sim Similarity, minScore float64) []Alignment {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	m := newMatrix(a, b, gap, sim)
	var out []Alignment
	for {
		best, bi, bj := m.fill()
		if best <= 0 || best < minScore {
			return out
		}
		al := m.traceback(bi, bj)
		out = append(out, al)
		m.mask(al)
	}
}

// Align returns the single best local alignment, or false when no alignment
// scores above zero.
func Align(a, b []string, gap float64, sim Similarity) (Alignment, bool) {
	if len(a) == 0 || len(b) == 0 {
		return Alignment{}, false
	}
	m := newMatrix(a, b, gap, sim)
	best, bi, bj := m.fill()
	if best <= 0 {
		return Alignment{}, false
	}
	return m.traceback(bi, bj), true
}
