package text

import "fmt"

// Span is a read-only view of the half-open token range [Start, End) of a
// Document. An empty span (Start == End) stands for an absent side of a diff.
type Span struct {
	Doc   *Document
	Start int
	End   int
}

// Len returns the number of tokens in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers no tokens.
func (s Span) Empty() bool {
	return s.Doc == nil || s.End <= s.Start
}

// Tokens returns the tokens of the span in document order.
func (s Span) Tokens() []Token {
	if s.Empty() {
		return nil
	}
	return s.Doc.Tokens[s.Start:s.End]
}

// Values returns the raw token strings of the span in document order.
func (s Span) Values() []string {
	toks := s.Tokens()
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Raw
	}
	return out
}

// Abs maps an index local to Values() back to the absolute token index.
func (s Span) Abs(local int) int {
	return s.Start + local
}

// Sub returns the span of the local range [start, end) of this span.
func (s Span) Sub(start, end int) Span {
	return Span{Doc: s.Doc, Start: s.Start + start, End: s.Start + end}
}

// CharStart is the rune offset of the first token.
func (s Span) CharStart() int {
	if s.Empty() {
		return 0
	}
	return s.Doc.Tokens[s.Start].Start
}

// CharEnd is the rune offset just past the last token.
func (s Span) CharEnd() int {
	if s.Empty() {
		return 0
	}
	return s.Doc.Tokens[s.End-1].End
}

// Overlaps reports whether both spans share at least one token of the same document.
func (s Span) Overlaps(o Span) bool {
	if s.Empty() || o.Empty() || s.Doc != o.Doc {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Doc == o.Doc && s.Start <= o.Start && o.End <= s.End
}

// Raw returns the document text covered by the span.
func (s Span) Raw() string {
	if s.Empty() {
		return ""
	}
	return s.Doc.Slice(s.CharStart(), s.CharEnd())
}

// DocumentID returns the owning document's identifier.
func (s Span) DocumentID() string {
	if s.Doc == nil {
		return ""
	}
	return s.Doc.ID
}

func (s Span) String() string {
	if s.Doc == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%d,%d)", s.Doc.ID, s.Start, s.End)
}
