package duplink

import (
	"github.com/rs/zerolog"

	"github.com/RishiKendai/duplink/internal/align"
	"github.com/RishiKendai/duplink/internal/text"
)

// Observer receives progress events from a Linker. Destination documents are
// processed concurrently, so implementations must be safe for concurrent use.
type Observer interface {
	// PairSkipped is called when the prefilter rejects a source document and
	// an unlinked destination segment.
	PairSkipped(source, segment text.Span)
	// PairAligned is called after the alignment engine ran on a pair.
	PairAligned(source, segment text.Span, alignments int)
	// AlignmentFound is called once a Link and its diffs are built.
	AlignmentFound(link *Link, al align.Alignment)
	// DiffEmitted is called for each diff attached to a Link.
	DiffEmitted(link *Link, d Diff)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PairSkipped(text.Span, text.Span)      {}
func (NopObserver) PairAligned(text.Span, text.Span, int) {}
func (NopObserver) AlignmentFound(*Link, align.Alignment) {}
func (NopObserver) DiffEmitted(*Link, Diff)               {}

// Observers fans every event out to each member in order.
type Observers []Observer

func (os Observers) PairSkipped(source, segment text.Span) {
	for _, o := range os {
		o.PairSkipped(source, segment)
	}
}

func (os Observers) PairAligned(source, segment text.Span, alignments int) {
	for _, o := range os {
		o.PairAligned(source, segment, alignments)
	}
}

func (os Observers) AlignmentFound(link *Link, al align.Alignment) {
	for _, o := range os {
		o.AlignmentFound(link, al)
	}
}

func (os Observers) DiffEmitted(link *Link, d Diff) {
	for _, o := range os {
		o.DiffEmitted(link, d)
	}
}

// LogObserver writes linker events to a zerolog logger: skipped and aligned
// pairs at trace level, links and diffs at debug level.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver returns an observer logging to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) PairSkipped(source, segment text.Span) {
	o.logger.Trace().
		Str("source", source.DocumentID()).
		Str("dest", segment.DocumentID()).
		Int("segmentStart", segment.Start).
		Int("segmentEnd", segment.End).
		Msg("Pair skipped by prefilter")
}

func (o *LogObserver) PairAligned(source, segment text.Span, alignments int) {
	o.logger.Trace().
		Str("source", source.DocumentID()).
		Str("dest", segment.DocumentID()).
		Int("sourceTokens", source.Len()).
		Int("segmentTokens", segment.Len()).
		Int("alignments", alignments).
		Msg("Ran local sequence alignment")
}

func (o *LogObserver) AlignmentFound(link *Link, al align.Alignment) {
	o.logger.Debug().
		Str("source", link.Source.DocumentID()).
		Str("dest", link.Dest.DocumentID()).
		Int("sourceStart", link.Source.Start).
		Int("sourceEnd", link.Source.End).
		Int("destStart", link.Dest.Start).
		Int("destEnd", link.Dest.End).
		Float64("score", al.Score).
		Int("diffs", len(link.Diffs)).
		Msg("Alignment found")
	if e := o.logger.Trace(); e.Enabled() {
		e.Str("dest", link.Dest.DocumentID()).Msg("\n" + al.Pretty())
	}
}

func (o *LogObserver) DiffEmitted(link *Link, d Diff) {
	o.logger.Debug().
		Str("dest", link.Dest.DocumentID()).
		Str("kind", string(d.Kind())).
		Int("sourceTokens", d.Source.Len()).
		Int("destTokens", d.Dest.Len()).
		Str("sourceText", d.Source.Raw()).
		Str("destText", d.Dest.Raw()).
		Msg("Adding diff")
}
