package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	// "héllo big world"
	return NewDocument("100", 100, "héllo big world", []Token{
		{Raw: "héllo", Start: 0, End: 5},
		{Raw: "big", Start: 6, End: 9},
		{Raw: "world", Start: 10, End: 15},
	})
}

func TestSpanProjection(t *testing.T) {
	doc := sampleDoc()
	span := doc.Span(1, 3)

	assert.Equal(t, []string{"big", "world"}, span.Values())
	assert.Equal(t, 2, span.Len())
	assert.Equal(t, 2, span.Abs(1))
	assert.Equal(t, 6, span.CharStart())
	assert.Equal(t, 15, span.CharEnd())
	assert.Equal(t, "big world", span.Raw())
	assert.Equal(t, "100", span.DocumentID())
}

func TestNewDocumentReindexesTokens(t *testing.T) {
	doc := NewDocument("1", 1, "a b", []Token{{Raw: "a", Index: 7, Start: 0, End: 1}, {Raw: "b", Index: 9, Start: 2, End: 3}})
	for i, tok := range doc.Tokens {
		assert.Equal(t, i, tok.Index)
	}
}

func TestSpanOverlaps(t *testing.T) {
	doc := sampleDoc()
	other := sampleDoc()

	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint adjacent", doc.Span(0, 1), doc.Span(1, 3), false},
		{"shared token", doc.Span(0, 2), doc.Span(1, 3), true},
		{"nested", doc.Span(0, 3), doc.Span(1, 2), true},
		{"empty never overlaps", doc.Span(1, 1), doc.Span(0, 3), false},
		{"different documents", doc.Span(0, 3), other.Span(0, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestEmptySpan(t *testing.T) {
	var zero Span
	assert.True(t, zero.Empty())
	assert.Nil(t, zero.Tokens())
	assert.Equal(t, "", zero.Raw())
	assert.Equal(t, "<nil>", zero.String())
}

func TestCheckChronological(t *testing.T) {
	a := NewDocument("1", 1, "", nil)
	b := NewDocument("2", 2, "", nil)
	c := NewDocument("02", 2, "", nil)

	docs := []*Document{b, a}
	SortChronological(docs)
	require.NoError(t, CheckChronological(docs))
	assert.Equal(t, "1", docs[0].ID)

	err := CheckChronological([]*Document{a, b, c})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict chronological order")
}

func TestSlice(t *testing.T) {
	doc := sampleDoc()
	assert.Equal(t, "héllo", doc.Slice(0, 5))
	assert.Equal(t, "world", doc.Slice(10, 99))
	assert.Equal(t, "", doc.Slice(5, 5))
	assert.Equal(t, 15, doc.RuneLen())
}
