package duplink

import (
	"fmt"

	"github.com/RishiKendai/duplink/internal/text"
)

// DiffKind names the shape of a Diff.
type DiffKind string

const (
	KindSubstitution DiffKind = "substitution"
	KindDeletion     DiffKind = "deletion"
	KindInsertion    DiffKind = "insertion"
)

// Diff is one difference between a duplicate and its source. An empty span
// marks the absent side. Tokens is the number of differing tokens the diff
// accounts for; a span may be wider when matched tokens sit between the
// pending edits it merges.
type Diff struct {
	Source text.Span
	Dest   text.Span
	Tokens int
}

// Kind classifies the diff from the sides present.
func (d Diff) Kind() DiffKind {
	switch {
	case !d.Source.Empty() && !d.Dest.Empty():
		return KindSubstitution
	case !d.Source.Empty():
		return KindDeletion
	default:
		return KindInsertion
	}
}

func (d Diff) String() string {
	return fmt.Sprintf("%s(%q -> %q)", d.Kind(), d.Source.Raw(), d.Dest.Raw())
}

// Link records that Dest, in a later document, duplicates Source.
type Link struct {
	Dest   text.Span
	Source text.Span
	Diffs  []Diff
	Score  float64
}

func newLink(dest, source text.Span, score float64) (*Link, error) {
	if dest.Empty() || source.Empty() {
		return nil, fmt.Errorf("%w: empty link span (dest %s, source %s)", ErrInvariant, dest, source)
	}
	if dest.Doc.Rank <= source.Doc.Rank {
		return nil, fmt.Errorf("%w: destination %s (rank %d) is not later than source %s (rank %d)",
			ErrInvariant, dest.Doc.ID, dest.Doc.Rank, source.Doc.ID, source.Doc.Rank)
	}
	return &Link{Dest: dest, Source: source, Score: score}, nil
}

// SourceDiffTokens sums the token length of every non-empty source side.
func (l *Link) SourceDiffTokens() int {
	n := 0
	for _, d := range l.Diffs {
		if !d.Source.Empty() {
			n += d.Source.Len()
		}
	}
	return n
}

// Overlap is the percentage of source tokens that survived unedited into the
// destination.
func (l *Link) Overlap() float64 {
	total := l.Source.Len()
	if total == 0 {
		return 0
	}
	return 100.0 * float64(total-l.SourceDiffTokens()) / float64(total)
}

func (l *Link) String() string {
	return fmt.Sprintf("Link(%s <- %s, %d diffs)", l.Dest, l.Source, len(l.Diffs))
}
