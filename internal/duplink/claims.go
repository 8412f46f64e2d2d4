package duplink

import (
	"fmt"
	"sort"
)

// Range is a half-open token range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of tokens in the range.
func (r Range) Len() int { return r.End - r.Start }

// ClaimIndex tracks the destination token ranges of one document already
// owned by a Link. Claimed ranges are kept sorted and disjoint. Not safe for
// concurrent use; the Linker gives each document a single writer.
type ClaimIndex struct {
	claimed []Range
}

// search returns the index of the first claimed range ending after pos.
func (c *ClaimIndex) search(pos int) int {
	return sort.Search(len(c.claimed), func(i int) bool {
		return c.claimed[i].End > pos
	})
}

// Overlaps reports whether r intersects any claimed range.
func (c *ClaimIndex) Overlaps(r Range) bool {
	if r.Len() <= 0 {
		return false
	}
	i := c.search(r.Start)
	return i < len(c.claimed) && c.claimed[i].Start < r.End
}

// Claim records r as owned. Claiming a range that intersects an existing
// claim is an invariant violation.
func (c *ClaimIndex) Claim(r Range) error {
	if r.Len() <= 0 {
		return fmt.Errorf("%w: cannot claim empty range [%d,%d)", ErrInvariant, r.Start, r.End)
	}
	if c.Overlaps(r) {
		return fmt.Errorf("%w: range [%d,%d) is already linked", ErrInvariant, r.Start, r.End)
	}
	i := c.search(r.Start)
	c.claimed = append(c.claimed, Range{})
	copy(c.claimed[i+1:], c.claimed[i:])
	c.claimed[i] = r
	return nil
}

// Unclaimed returns the maximal unclaimed ranges of a document of n tokens,
// in order.
func (c *ClaimIndex) Unclaimed(n int) []Range {
	var out []Range
	pos := 0
	for _, r := range c.claimed {
		if r.Start > pos {
			out = append(out, Range{Start: pos, End: r.Start})
		}
		pos = r.End
	}
	if pos < n {
		out = append(out, Range{Start: pos, End: n})
	}
	return out
}

// Claimed returns a copy of the claimed ranges in order.
func (c *ClaimIndex) Claimed() []Range {
	return append([]Range(nil), c.claimed...)
}
