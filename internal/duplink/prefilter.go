package duplink

// Vocabulary counts the occurrences of each distinct token of a sequence.
type Vocabulary map[string]int

// NewVocabulary builds the vocabulary of seq.
func NewVocabulary(seq []string) Vocabulary {
	v := make(Vocabulary, len(seq))
	for _, tok := range seq {
		v[tok]++
	}
	return v
}

// Shared returns the number of distinct tokens present in both vocabularies
// and the multiset intersection size (sum of min counts).
func (v Vocabulary) Shared(o Vocabulary) (distinct, bound int) {
	small, large := v, o
	if len(small) > len(large) {
		small, large = large, small
	}
	for tok, n := range small {
		m, ok := large[tok]
		if !ok {
			continue
		}
		distinct++
		bound += min(n, m)
	}
	return distinct, bound
}

// Admits reports whether an alignment between the two sequences could reach
// minScore. The distinct shared vocabulary decides in the common case; when
// it falls short, the multiset intersection is checked because repeated
// tokens can match more than once. Every match column pairs one occurrence
// from each side and all other columns score <= 0, so the multiset
// intersection bounds the best achievable score.
func (v Vocabulary) Admits(o Vocabulary, minScore float64) bool {
	distinct, bound := v.Shared(o)
	if float64(distinct) >= minScore {
		return true
	}
	return float64(bound) >= minScore
}

// ShouldCompare is the lexical prefilter: false means seqA and seqB cannot
// produce an alignment scoring minScore and need not be aligned.
func ShouldCompare(seqA, seqB []string, minScore float64) bool {
	return NewVocabulary(seqA).Admits(NewVocabulary(seqB), minScore)
}
