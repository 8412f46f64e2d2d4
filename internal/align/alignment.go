package align

import (
	"fmt"
	"strings"
)

// Op classifies one column of an alignment.
type Op uint8

const (
	// OpMatch pairs two identical tokens.
	OpMatch Op = iota
	// OpMismatch pairs two different tokens (a substitution).
	OpMismatch
	// OpInsert has a gap on the first sequence: the second sequence has an extra token.
	OpInsert
	// OpDelete has a gap on the second sequence: the first sequence has an extra token.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpMatch:
		return "match"
	case OpMismatch:
		return "mismatch"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Gap is the display value of the missing side of an insert or delete column.
const Gap = "-"

// Column is one aligned position. A is empty for OpInsert and B is empty for OpDelete.
type Column struct {
	A  string
	B  string
	Op Op
}

// Equal reports whether the column aligns two identical tokens.
func (c Column) Equal() bool {
	return c.Op == OpMatch
}

// Alignment is one local alignment between two token sequences. The ranges
// [Start1, End1) and [Start2, End2) index into the first and second input.
type Alignment struct {
	Score   float64
	Start1  int
	End1    int
	Start2  int
	End2    int
	Columns []Column
}

// Len1 returns the number of tokens of the first sequence covered.
func (a Alignment) Len1() int { return a.End1 - a.Start1 }

// Len2 returns the number of tokens of the second sequence covered.
func (a Alignment) Len2() int { return a.End2 - a.Start2 }

// Differences counts the non-equal columns.
func (a Alignment) Differences() int {
	n := 0
	for _, c := range a.Columns {
		if !c.Equal() {
			n++
		}
	}
	return n
}

// Matches counts the equal columns.
func (a Alignment) Matches() int {
	return len(a.Columns) - a.Differences()
}

// Sequences returns the two traced column sequences with Gap markers.
func (a Alignment) Sequences() ([]string, []string) {
	s1 := make([]string, len(a.Columns))
	s2 := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		s1[i], s2[i] = c.A, c.B
		switch c.Op {
		case OpInsert:
			s1[i] = Gap
		case OpDelete:
			s2[i] = Gap
		}
	}
	return s1, s2
}

// Pretty renders the alignment as three lines: first sequence, markers, second sequence.
func (a Alignment) Pretty() string {
	s1, s2 := a.Sequences()
	var top, mid, bot strings.Builder
	for i, c := range a.Columns {
		w := max(len(s1[i]), len(s2[i]))
		top.WriteString(pad(s1[i], w))
		bot.WriteString(pad(s2[i], w))
		mark := " "
		switch c.Op {
		case OpMatch:
			mark = "|"
		case OpMismatch:
			mark = "x"
		}
		mid.WriteString(pad(mark, w))
		if i < len(a.Columns)-1 {
			top.WriteByte(' ')
			mid.WriteByte(' ')
			bot.WriteByte(' ')
		}
	}
	return top.String() + "\n" + mid.String() + "\n" + bot.String()
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
