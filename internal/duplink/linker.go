package duplink

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/RishiKendai/duplink/internal/align"
	"github.com/RishiKendai/duplink/internal/text"
)

// Options are the linker's tunable parameters.
type Options struct {
	// Gap is the score of one gap column. Must be <= 0.
	Gap float64
	// Penalty is the score of one mismatch column. Must be <= 0.
	Penalty float64
	// MinScore is the lowest alignment score reported. Must be > 0.
	MinScore float64
	// Workers bounds the number of destination documents aligned at once.
	// Zero means GOMAXPROCS.
	Workers int
	// Observer receives progress events. Nil means NopObserver.
	Observer Observer
}

// DefaultOptions returns the parameters used when none are given.
func DefaultOptions() Options {
	return Options{
		Gap:      -5,
		Penalty:  -10,
		MinScore: 50,
	}
}

// Validate checks the parameters before any alignment runs.
// NaN and infinite values fail every check.
func (o Options) Validate() error {
	if !(o.Gap <= 0) || math.IsInf(o.Gap, 0) {
		return fmt.Errorf("%w: gap penalty must be finite and <= 0, got %g", ErrConfig, o.Gap)
	}
	if !(o.Penalty <= 0) || math.IsInf(o.Penalty, 0) {
		return fmt.Errorf("%w: mismatch penalty must be finite and <= 0, got %g", ErrConfig, o.Penalty)
	}
	if !(o.MinScore > 0) || math.IsInf(o.MinScore, 0) {
		return fmt.Errorf("%w: minimum score must be finite and > 0, got %g", ErrConfig, o.MinScore)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrConfig, o.Workers)
	}
	return nil
}

// Stats counts the work done by one Link call.
type Stats struct {
	Documents int
	Pairs     int
	Segments  int
	Skipped   int
	Aligned   int
	Links     int
	Diffs     int
}

func (s *Stats) add(o Stats) {
	s.Pairs += o.Pairs
	s.Segments += o.Segments
	s.Skipped += o.Skipped
	s.Aligned += o.Aligned
	s.Links += o.Links
	s.Diffs += o.Diffs
}

// Result is the outcome of linking a corpus.
type Result struct {
	// Documents in chronological order.
	Documents []*text.Document
	// Links ordered by destination document, then destination start.
	Links []*Link
	// Clusters in order of first appearance in Links.
	Clusters []Cluster
	Stats    Stats
}

// Linker links duplicated passages of later documents to their earliest
// source.
type Linker struct {
	opts Options
	sim  align.Similarity
	obs  Observer
}

// New validates opts and returns a Linker.
func New(opts Options) (*Linker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Linker{
		opts: opts,
		sim:  align.ExactMatch(opts.Penalty),
		obs:  obs,
	}, nil
}

// Options returns the effective parameters.
func (l *Linker) Options() Options {
	return l.opts
}

// Link runs the detection pass over docs. Sources are visited oldest first;
// for each source every later document is aligned concurrently, and a round
// finishes before the next source starts, so each destination token ends up
// linked to the earliest source that reaches MinScore. Any invariant
// violation aborts the run without a partial result.
func (l *Linker) Link(ctx context.Context, docs []*text.Document) (*Result, error) {
	docs = append([]*text.Document(nil), docs...)
	if err := checkCorpus(docs); err != nil {
		return nil, err
	}

	claims := make([]ClaimIndex, len(docs))
	linked := make([][]*Link, len(docs))
	stats := Stats{Documents: len(docs)}

	for x, source := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if source.Len() == 0 || x == len(docs)-1 {
			continue
		}
		src := sourceDoc{
			span:   source.Whole(),
			values: source.Whole().Values(),
		}
		src.vocab = NewVocabulary(src.values)

		found := make([][]*Link, len(docs))
		counts := make([]Stats, len(docs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.opts.Workers)
		for y := x + 1; y < len(docs); y++ {
			y := y
			g.Go(func() error {
				links, st, err := l.linkPair(gctx, src, docs[y], &claims[y])
				if err != nil {
					return fmt.Errorf("linking %s <- %s: %w", docs[y].ID, source.ID, err)
				}
				found[y] = links
				counts[y] = st
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for y := x + 1; y < len(docs); y++ {
			linked[y] = append(linked[y], found[y]...)
			stats.add(counts[y])
		}
	}

	var links []*Link
	for _, ls := range linked {
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].Dest.Start < ls[j].Dest.Start
		})
		links = append(links, ls...)
	}
	clusters, err := AssignClusters(links)
	if err != nil {
		return nil, err
	}
	return &Result{
		Documents: docs,
		Links:     links,
		Clusters:  clusters,
		Stats:     stats,
	}, nil
}

// sourceDoc caches the token values and vocabulary of a source document for
// one round.
type sourceDoc struct {
	span   text.Span
	values []string
	vocab  Vocabulary
}

// linkPair aligns the source against every unclaimed segment of dest and
// claims the destination span of each alignment found. claims is written
// only by this call during the round.
func (l *Linker) linkPair(ctx context.Context, src sourceDoc, dest *text.Document, claims *ClaimIndex) ([]*Link, Stats, error) {
	st := Stats{Pairs: 1}
	var out []*Link
	for _, r := range claims.Unclaimed(dest.Len()) {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}
		st.Segments++
		segment := dest.Span(r.Start, r.End)
		values := segment.Values()
		if !src.vocab.Admits(NewVocabulary(values), l.opts.MinScore) {
			st.Skipped++
			l.obs.PairSkipped(src.span, segment)
			continue
		}

		alignments := align.AlignMulti(src.values, values, l.opts.Gap, l.sim, l.opts.MinScore)
		st.Aligned++
		l.obs.PairAligned(src.span, segment, len(alignments))

		for _, al := range alignments {
			link, err := l.buildLink(al, src.span, segment, claims)
			if err != nil {
				return nil, st, err
			}
			out = append(out, link)
			st.Links++
			st.Diffs += len(link.Diffs)
		}
	}
	return out, st, nil
}

func (l *Linker) buildLink(al align.Alignment, source, segment text.Span, claims *ClaimIndex) (*Link, error) {
	dest := segment.Sub(al.Start2, al.End2)
	src := source.Sub(al.Start1, al.End1)
	r := Range{Start: dest.Start, End: dest.End}
	if claims.Overlaps(r) {
		return nil, fmt.Errorf("%w: segmenting error, %s is already linked", ErrInvariant, dest)
	}

	link, err := newLink(dest, src, al.Score)
	if err != nil {
		return nil, err
	}
	diffs, err := Decompose(al, src, dest)
	if err != nil {
		return nil, err
	}
	link.Diffs = diffs
	if err := claims.Claim(r); err != nil {
		return nil, err
	}

	l.obs.AlignmentFound(link, al)
	for _, d := range link.Diffs {
		l.obs.DiffEmitted(link, d)
	}
	return link, nil
}

// checkCorpus sorts docs oldest first and rejects duplicate identifiers and
// ranks.
func checkCorpus(docs []*text.Document) error {
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d == nil {
			return fmt.Errorf("%w: nil document", ErrConfig)
		}
		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: duplicate document id %q", ErrConfig, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	text.SortChronological(docs)
	if err := text.CheckChronological(docs); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}
