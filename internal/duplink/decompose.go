package duplink

import (
	"fmt"

	"github.com/RishiKendai/duplink/internal/align"
	"github.com/RishiKendai/duplink/internal/text"
)

// pending accumulates the absolute token indexes of an unflushed run of
// insertions and deletions.
type pending struct {
	source []int
	dest   []int
}

func (p *pending) empty() bool {
	return len(p.source) == 0 && len(p.dest) == 0
}

func (p *pending) reset() {
	p.source = p.source[:0]
	p.dest = p.dest[:0]
}

// runSpan covers the first through last index of a run. Matched tokens that
// fall between run members end up inside the span.
func runSpan(doc *text.Document, idx []int) text.Span {
	if len(idx) == 0 {
		return text.Span{Doc: doc}
	}
	return doc.Span(idx[0], idx[len(idx)-1]+1)
}

// Decompose turns the column trace of an alignment into Diffs. source and
// dest are the spans the alignment covers. Insertions and deletions pile up
// in a pending run that is flushed as one combined Diff by the next
// substitution or the end of the trace; equal columns do not flush it. Each
// substitution is emitted as its own singleton Diff.
func Decompose(al align.Alignment, source, dest text.Span) ([]Diff, error) {
	var (
		diffs   []Diff
		run     pending
		m       = source.Start
		n       = dest.Start
		unpaid  = al.Differences()
		srcDoc  = source.Doc
		destDoc = dest.Doc
	)

	flush := func() {
		if run.empty() {
			return
		}
		d := Diff{
			Source: runSpan(srcDoc, run.source),
			Dest:   runSpan(destDoc, run.dest),
			Tokens: len(run.source) + len(run.dest),
		}
		// every pending token stands for one insert or delete column
		unpaid -= d.Tokens
		diffs = append(diffs, d)
		run.reset()
	}

	for _, col := range al.Columns {
		switch col.Op {
		case align.OpMatch:
			m++
			n++
		case align.OpInsert:
			run.dest = append(run.dest, n)
			n++
		case align.OpDelete:
			run.source = append(run.source, m)
			m++
		case align.OpMismatch:
			flush()
			diffs = append(diffs, Diff{
				Source: srcDoc.Span(m, m+1),
				Dest:   destDoc.Span(n, n+1),
				Tokens: 2,
			})
			unpaid--
			m++
			n++
		}
	}
	flush()

	if unpaid != 0 {
		return nil, fmt.Errorf("%w: %d differing columns not covered by diffs (%s <- %s)",
			ErrInvariant, unpaid, dest, source)
	}
	if m != source.End || n != dest.End {
		return nil, fmt.Errorf("%w: trace ends at source %d / dest %d, spans end at %d / %d",
			ErrInvariant, m, n, source.End, dest.End)
	}
	return diffs, nil
}
