package duplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/duplink/internal/align"
)

func match(tok string) align.Column { return align.Column{A: tok, B: tok, Op: align.OpMatch} }
func ins(tok string) align.Column   { return align.Column{B: tok, Op: align.OpInsert} }
func del(tok string) align.Column   { return align.Column{A: tok, Op: align.OpDelete} }
func sub(a, b string) align.Column  { return align.Column{A: a, B: b, Op: align.OpMismatch} }

func TestDecomposeSubstitution(t *testing.T) {
	src := newDoc("1", 1, "a b c")
	dst := newDoc("2", 2, "a x c")
	al := align.Alignment{
		Score: 1, Start1: 0, End1: 3, Start2: 0, End2: 3,
		Columns: []align.Column{match("a"), sub("b", "x"), match("c")},
	}

	diffs, err := Decompose(al, src.Whole(), dst.Whole())
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, KindSubstitution, diffs[0].Kind())
	assert.Equal(t, "b", diffs[0].Source.Raw())
	assert.Equal(t, "x", diffs[0].Dest.Raw())
	assert.Equal(t, 2, diffs[0].Tokens)
}

func TestDecomposeSubstitutionFromEngine(t *testing.T) {
	src := newDoc("1", 1, "a b c d e")
	dst := newDoc("2", 2, "a b x d e")
	als := align.AlignMulti(src.Whole().Values(), dst.Whole().Values(), -5, align.ExactMatch(-1), 3)
	require.Len(t, als, 1)
	al := als[0]

	diffs, err := Decompose(al, src.Whole().Sub(al.Start1, al.End1), dst.Whole().Sub(al.Start2, al.End2))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "c", diffs[0].Source.Raw())
	assert.Equal(t, "x", diffs[0].Dest.Raw())
}

func TestDecomposeInsertion(t *testing.T) {
	src := newDoc("1", 1, "the patient reports pain")
	dst := newDoc("2", 2, "the patient reports no pain")
	al := align.Alignment{
		Score: 0, Start1: 0, End1: 4, Start2: 0, End2: 5,
		Columns: []align.Column{match("the"), match("patient"), match("reports"), ins("no"), match("pain")},
	}

	diffs, err := Decompose(al, src.Whole(), dst.Whole())
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, KindInsertion, diffs[0].Kind())
	assert.True(t, diffs[0].Source.Empty())
	assert.Equal(t, "no", diffs[0].Dest.Raw())
	assert.Equal(t, 1, diffs[0].Tokens)
}

func TestDecomposeBridgedInsertionFromEngine(t *testing.T) {
	src := newDoc("1", 1, "the patient reports severe chronic pain in the lower back since monday")
	dst := newDoc("2", 2, "the patient reports severe chronic pain no in the lower back since monday")
	als := align.AlignMulti(src.Whole().Values(), dst.Whole().Values(), -5, align.ExactMatch(-10), 3)
	require.Len(t, als, 1)

	diffs, err := Decompose(als[0], src.Whole(), dst.Whole())
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, KindInsertion, diffs[0].Kind())
	assert.Equal(t, "no", diffs[0].Dest.Raw())
	assert.Equal(t, 6, diffs[0].Dest.Start)
}

func TestDecomposeMatchesDoNotFlushPendingRun(t *testing.T) {
	src := newDoc("1", 1, "a b c d e")
	dst := newDoc("2", 2, "a c e")
	al := align.Alignment{
		Start1: 0, End1: 5, Start2: 0, End2: 3,
		Columns: []align.Column{match("a"), del("b"), match("c"), del("d"), match("e")},
	}

	diffs, err := Decompose(al, src.Whole(), dst.Whole())
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	d := diffs[0]
	assert.Equal(t, KindDeletion, d.Kind())
	assert.Equal(t, "b c d", d.Source.Raw())
	assert.Equal(t, 2, d.Tokens)

	link := &Link{Source: src.Whole(), Dest: dst.Whole(), Diffs: diffs}
	assert.InDelta(t, 40.0, link.Overlap(), 1e-9)
}

func TestDecomposeSubstitutionFlushesMixedRun(t *testing.T) {
	src := newDoc("1", 1, "a b c d")
	dst := newDoc("2", 2, "a y z d")
	al := align.Alignment{
		Start1: 0, End1: 4, Start2: 0, End2: 4,
		Columns: []align.Column{match("a"), del("b"), ins("y"), sub("c", "z"), match("d")},
	}

	diffs, err := Decompose(al, src.Whole(), dst.Whole())
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	assert.Equal(t, KindSubstitution, diffs[0].Kind())
	assert.Equal(t, "b", diffs[0].Source.Raw())
	assert.Equal(t, "y", diffs[0].Dest.Raw())
	assert.Equal(t, 2, diffs[0].Tokens)

	assert.Equal(t, "c", diffs[1].Source.Raw())
	assert.Equal(t, "z", diffs[1].Dest.Raw())

	total := 0
	for _, d := range diffs {
		total += d.Tokens
	}
	assert.Equal(t, 4, total)
}

func TestDecomposeNoDiffs(t *testing.T) {
	src := newDoc("1", 1, "a b")
	dst := newDoc("2", 2, "a b")
	al := align.Alignment{Start1: 0, End1: 2, Start2: 0, End2: 2, Columns: []align.Column{match("a"), match("b")}}

	diffs, err := Decompose(al, src.Whole(), dst.Whole())
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestDecomposeRejectsTraceNotCoveringSpans(t *testing.T) {
	src := newDoc("1", 1, "a b c")
	dst := newDoc("2", 2, "a b c")
	al := align.Alignment{Start1: 0, End1: 2, Start2: 0, End2: 2, Columns: []align.Column{match("a"), match("b")}}

	_, err := Decompose(al, src.Whole(), dst.Whole())
	require.ErrorIs(t, err, ErrInvariant)
}

func TestDecomposeRejectsUnaccountedColumn(t *testing.T) {
	src := newDoc("1", 1, "a b c")
	dst := newDoc("2", 2, "a b c")
	al := align.Alignment{Start1: 0, End1: 3, Start2: 0, End2: 3, Columns: []align.Column{
		match("a"),
		{A: "b", B: "b", Op: align.Op(9)},
		match("c"),
	}}

	_, err := Decompose(al, src.Whole(), dst.Whole())
	require.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "1 differing columns not covered")
}
