package duplink

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/RishiKendai/duplink/internal/align"
	"github.com/RishiKendai/duplink/internal/text"
)

// newDoc tokenizes body on single spaces.
func newDoc(id string, rank int64, body string) *text.Document {
	var toks []text.Token
	pos := 0
	for _, w := range strings.Split(body, " ") {
		n := utf8.RuneCountInString(w)
		if n > 0 {
			toks = append(toks, text.Token{Raw: w, Start: pos, End: pos + n})
		}
		pos += n + 1
	}
	return text.NewDocument(id, rank, body, toks)
}

type found struct {
	link *Link
	al   align.Alignment
}

// recorder is an Observer collecting every event.
type recorder struct {
	mu      sync.Mutex
	skipped int
	aligned int
	found   []found
	diffs   int
}

func (r *recorder) PairSkipped(text.Span, text.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped++
}

func (r *recorder) PairAligned(text.Span, text.Span, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aligned++
}

func (r *recorder) AlignmentFound(link *Link, al align.Alignment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.found = append(r.found, found{link: link, al: al})
}

func (r *recorder) DiffEmitted(*Link, Diff) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diffs++
}
