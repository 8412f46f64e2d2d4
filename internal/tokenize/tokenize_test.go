package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/duplink/internal/text"
)

func raws(toks []text.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Raw
	}
	return out
}

func TestWord(t *testing.T) {
	toks := Word().Tokenize("Pt. denies pain, doesn't   smoke (2x/day).")
	assert.Equal(t, []string{"Pt", ".", "denies", "pain", ",", "doesn't", "smoke", "(", "2x", "/", "day", ")", "."}, raws(toks))
	for i, tok := range toks {
		assert.Equal(t, i, tok.Index)
	}
}

func TestWhitespace(t *testing.T) {
	toks := Whitespace().Tokenize("  Pt. denies\tpain ,\n")
	assert.Equal(t, []string{"Pt.", "denies", "pain", ","}, raws(toks))
	assert.Equal(t, 2, toks[0].Start)
	assert.Equal(t, 5, toks[0].End)
}

func TestRuneOffsets(t *testing.T) {
	body := "café naïve résumé"
	doc := Document(Word(), "1", 1, body)
	require.Equal(t, 3, doc.Len())

	assert.Equal(t, [2]int{0, 4}, [2]int{doc.Tokens[0].Start, doc.Tokens[0].End})
	assert.Equal(t, [2]int{5, 10}, [2]int{doc.Tokens[1].Start, doc.Tokens[1].End})
	assert.Equal(t, [2]int{11, 17}, [2]int{doc.Tokens[2].Start, doc.Tokens[2].End})
	for _, tok := range doc.Tokens {
		assert.Equal(t, tok.Raw, doc.Slice(tok.Start, tok.End))
	}
}

func TestForCorpus(t *testing.T) {
	assert.Equal(t, "whitespace", ForCorpus(true).Name())
	assert.Equal(t, "word", ForCorpus(false).Name())
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, Word().Tokenize(""))
	assert.Empty(t, Whitespace().Tokenize(" \n\t"))
}
