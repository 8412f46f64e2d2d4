package text

import (
	"fmt"
	"sort"
)

// Token is a single lexical unit of a Document. Start and End are rune offsets
// into the document text (half-open).
type Token struct {
	Raw   string
	Index int
	Start int
	End   int
}

// Document is an immutable, tokenized text with a chronological rank.
type Document struct {
	ID     string
	Rank   int64
	Text   string
	Tokens []Token

	runes []rune
}

// NewDocument builds a Document. Token indexes are reassigned so that
// Tokens[i].Index == i.
func NewDocument(id string, rank int64, body string, tokens []Token) *Document {
	toks := make([]Token, len(tokens))
	for i, t := range tokens {
		t.Index = i
		toks[i] = t
	}
	return &Document{
		ID:     id,
		Rank:   rank,
		Text:   body,
		Tokens: toks,
		runes:  []rune(body),
	}
}

// Len returns the number of tokens.
func (d *Document) Len() int {
	return len(d.Tokens)
}

// Token returns the token at absolute index i.
func (d *Document) Token(i int) Token {
	return d.Tokens[i]
}

// Span returns the half-open token range [start, end) of the document.
func (d *Document) Span(start, end int) Span {
	return Span{Doc: d, Start: start, End: end}
}

// Whole returns a span covering every token.
func (d *Document) Whole() Span {
	return Span{Doc: d, Start: 0, End: len(d.Tokens)}
}

// Slice returns the text between two rune offsets, clamped to the document.
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.runes) {
		end = len(d.runes)
	}
	if start >= end {
		return ""
	}
	return string(d.runes[start:end])
}

// RuneLen returns the length of the text in runes.
func (d *Document) RuneLen() int {
	return len(d.runes)
}

func (d *Document) String() string {
	return fmt.Sprintf("Document(%s, rank=%d, %d tokens)", d.ID, d.Rank, len(d.Tokens))
}

// SortChronological orders documents oldest first. Documents with equal rank
// keep their relative order.
func SortChronological(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Rank < docs[j].Rank
	})
}

// CheckChronological reports the first pair of adjacent documents whose ranks
// are not strictly increasing.
func CheckChronological(docs []*Document) error {
	for i := 1; i < len(docs); i++ {
		if docs[i].Rank <= docs[i-1].Rank {
			return fmt.Errorf("documents %s and %s are not in strict chronological order (rank %d, %d)",
				docs[i-1].ID, docs[i].ID, docs[i-1].Rank, docs[i].Rank)
		}
	}
	return nil
}
