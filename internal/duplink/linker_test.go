package duplink

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/duplink/internal/text"
)

const (
	passageP = "chest pain radiating to the left arm since yesterday"
	passageQ = "patient denies fever chills or night sweats today"
)

func chronicle() []*text.Document {
	return []*text.Document{
		newDoc("100", 100, "alpha beta "+passageP+" gamma"),
		newDoc("200", 200, "delta "+passageP+" epsilon "+passageQ),
		newDoc("300", 300, passageQ+" zeta eta "+passageP+" theta"),
	}
}

func testOptions() Options {
	return Options{Gap: -5, Penalty: -10, MinScore: 5}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero penalties", func(o *Options) { o.Gap, o.Penalty = 0, 0 }, false},
		{"positive gap", func(o *Options) { o.Gap = 1 }, true},
		{"positive penalty", func(o *Options) { o.Penalty = 0.5 }, true},
		{"zero min score", func(o *Options) { o.MinScore = 0 }, true},
		{"negative workers", func(o *Options) { o.Workers = -1 }, true},
		{"NaN gap", func(o *Options) { o.Gap = math.NaN() }, true},
		{"NaN penalty", func(o *Options) { o.Penalty = math.NaN() }, true},
		{"NaN min score", func(o *Options) { o.MinScore = math.NaN() }, true},
		{"infinite min score", func(o *Options) { o.MinScore = math.Inf(1) }, true},
		{"infinite gap", func(o *Options) { o.Gap = math.Inf(-1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(Options{Gap: -5, Penalty: -10, MinScore: -1})
	require.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, CodeConfig, Classify(err))
}

func TestLinkEarliestSource(t *testing.T) {
	rec := &recorder{}
	opts := testOptions()
	opts.Observer = rec
	l, err := New(opts)
	require.NoError(t, err)

	docs := chronicle()
	res, err := l.Link(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, res.Links, 3)

	d0, d1, d2 := docs[0], docs[1], docs[2]

	// 200 copies P from 100.
	assert.Equal(t, d1, res.Links[0].Dest.Doc)
	assert.Equal(t, d0, res.Links[0].Source.Doc)
	assert.Equal(t, passageP, res.Links[0].Dest.Raw())

	// 300 copies Q from 200, the only earlier document holding it.
	assert.Equal(t, d2, res.Links[1].Dest.Doc)
	assert.Equal(t, d1, res.Links[1].Source.Doc)
	assert.Equal(t, passageQ, res.Links[1].Dest.Raw())

	// 300 copies P from 100, never from 200.
	assert.Equal(t, d2, res.Links[2].Dest.Doc)
	assert.Equal(t, d0, res.Links[2].Source.Doc)
	assert.Equal(t, passageP, res.Links[2].Source.Raw())

	for _, link := range res.Links {
		assert.Empty(t, link.Diffs)
		assert.Equal(t, 100.0, link.Overlap())
	}

	require.Len(t, res.Clusters, 2)
	assert.Equal(t, ClusterKey(d0.Span(2, 11)), res.Clusters[0].Key)
	assert.Equal(t, []*Link{res.Links[0], res.Links[2]}, res.Clusters[0].Links)
	assert.Equal(t, []*Link{res.Links[1]}, res.Clusters[1].Links)

	assert.Equal(t, 3, res.Stats.Documents)
	assert.Equal(t, 3, res.Stats.Pairs)
	assert.Equal(t, 3, res.Stats.Links)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Len(t, rec.found, 3)
	assert.Equal(t, 1, rec.skipped)
	assert.Equal(t, 3, rec.aligned)
}

func TestLinkSortsInput(t *testing.T) {
	l, err := New(testOptions())
	require.NoError(t, err)

	docs := chronicle()
	shuffled := []*text.Document{docs[2], docs[0], docs[1]}
	res, err := l.Link(context.Background(), shuffled)
	require.NoError(t, err)

	assert.Equal(t, docs, res.Documents)
	assert.Equal(t, docs[2], shuffled[0], "caller slice must not be reordered")
	assert.Len(t, res.Links, 3)
}

func TestLinkRejectsMalformedCorpus(t *testing.T) {
	l, err := New(testOptions())
	require.NoError(t, err)

	_, err = l.Link(context.Background(), []*text.Document{newDoc("1", 1, "a"), newDoc("01", 1, "b")})
	require.ErrorIs(t, err, ErrConfig)

	_, err = l.Link(context.Background(), []*text.Document{newDoc("1", 1, "a"), newDoc("1", 2, "b")})
	require.ErrorIs(t, err, ErrConfig)
}

func TestLinkScenarioShortInsertion(t *testing.T) {
	l, err := New(Options{Gap: -5, Penalty: -10, MinScore: 3})
	require.NoError(t, err)

	src := newDoc("1", 1, "the patient reports pain")
	dst := newDoc("2", 2, "the patient reports no pain")
	res, err := l.Link(context.Background(), []*text.Document{src, dst})
	require.NoError(t, err)

	require.Len(t, res.Links, 1)
	assert.Equal(t, "the patient reports", res.Links[0].Dest.Raw())
	assert.Empty(t, res.Links[0].Diffs)
}

func TestLinkScenarioBridgedInsertion(t *testing.T) {
	l, err := New(Options{Gap: -5, Penalty: -10, MinScore: 3})
	require.NoError(t, err)

	src := newDoc("1", 1, "the patient reports severe chronic pain in the lower back since monday")
	dst := newDoc("2", 2, "the patient reports severe chronic pain no in the lower back since monday")
	res, err := l.Link(context.Background(), []*text.Document{src, dst})
	require.NoError(t, err)

	require.Len(t, res.Links, 1)
	link := res.Links[0]
	assert.Equal(t, dst.Whole(), link.Dest)
	assert.Equal(t, src.Whole(), link.Source)
	require.Len(t, link.Diffs, 1)
	assert.Equal(t, KindInsertion, link.Diffs[0].Kind())
	assert.Equal(t, "no", link.Diffs[0].Dest.Raw())
	assert.Equal(t, 100.0, link.Overlap())
}

func TestLinkCanceled(t *testing.T) {
	l, err := New(testOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Link(ctx, chronicle())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, CodeCancel, Classify(err))
}

// randomCorpus builds documents from a small vocabulary with passages copied
// from earlier documents, lightly edited.
func randomCorpus(r *rand.Rand, n int) []*text.Document {
	word := func() string { return fmt.Sprintf("w%d", r.Intn(12)) }
	var bodies [][]string
	var docs []*text.Document
	for i := 0; i < n; i++ {
		var toks []string
		for len(toks) < 40 {
			if len(bodies) > 0 && r.Intn(3) == 0 {
				src := bodies[r.Intn(len(bodies))]
				start := r.Intn(len(src))
				end := min(len(src), start+5+r.Intn(10))
				for _, tok := range src[start:end] {
					switch r.Intn(10) {
					case 0:
						toks = append(toks, word())
					case 1:
						toks = append(toks, tok, word())
					case 2:
					default:
						toks = append(toks, tok)
					}
				}
				continue
			}
			toks = append(toks, word())
		}
		bodies = append(bodies, toks)
		docs = append(docs, newDoc(fmt.Sprint(i+1), int64(i+1), strings.Join(toks, " ")))
	}
	return docs
}

func TestLinkProperties(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for round := 0; round < 5; round++ {
		rec := &recorder{}
		l, err := New(Options{Gap: -1, Penalty: -1, MinScore: 4, Workers: 3, Observer: rec})
		require.NoError(t, err)

		docs := randomCorpus(r, 6)
		res, err := l.Link(context.Background(), docs)
		require.NoError(t, err)

		byDoc := map[*text.Document][]*Link{}
		for _, link := range res.Links {
			assert.Greater(t, link.Dest.Doc.Rank, link.Source.Doc.Rank)
			overlap := link.Overlap()
			assert.Greater(t, overlap, 0.0)
			assert.LessOrEqual(t, overlap, 100.0)
			for _, other := range byDoc[link.Dest.Doc] {
				assert.False(t, link.Dest.Overlaps(other.Dest), "%s overlaps %s", link.Dest, other.Dest)
			}
			byDoc[link.Dest.Doc] = append(byDoc[link.Dest.Doc], link)
		}

		require.Len(t, rec.found, len(res.Links))
		for _, f := range rec.found {
			total := 0
			for _, d := range f.link.Diffs {
				total += d.Tokens
			}
			assert.Equal(t, f.al.Differences(), total)
		}
	}
}

func TestLinkDeterministic(t *testing.T) {
	summary := func(res *Result) []string {
		var out []string
		for _, c := range res.Clusters {
			for _, link := range c.Links {
				out = append(out, fmt.Sprintf("%s %s %d %d %.2f", c.ID, link.Dest.DocumentID(),
					link.Dest.CharStart(), link.Dest.CharEnd(), link.Overlap()))
			}
		}
		return out
	}

	var runs [][]string
	for _, workers := range []int{1, 4, 1} {
		docs := randomCorpus(rand.New(rand.NewSource(42)), 8)
		l, err := New(Options{Gap: -1, Penalty: -1, MinScore: 4, Workers: workers})
		require.NoError(t, err)
		res, err := l.Link(context.Background(), docs)
		require.NoError(t, err)
		runs = append(runs, summary(res))
	}
	require.NotEmpty(t, runs[0])
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[0], runs[2])
}
