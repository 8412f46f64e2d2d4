package metrics

import (
	"github.com/RishiKendai/duplink/internal/align"
	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/text"
)

// Observer feeds linker events into the Prometheus counters.
type Observer struct{}

var _ duplink.Observer = Observer{}

func (Observer) PairSkipped(text.Span, text.Span) {
	PairCount.WithLabelValues("skipped").Inc()
}

func (Observer) PairAligned(_, _ text.Span, alignments int) {
	if alignments == 0 {
		PairCount.WithLabelValues("no_alignment").Inc()
		return
	}
	PairCount.WithLabelValues("aligned").Inc()
}

func (Observer) AlignmentFound(*duplink.Link, align.Alignment) {
	LinkCount.Inc()
}

func (Observer) DiffEmitted(_ *duplink.Link, d duplink.Diff) {
	DiffCount.WithLabelValues(string(d.Kind())).Inc()
}
