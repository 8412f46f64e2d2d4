// Package tokenize splits raw document text into tokens carrying rune
// offsets.
package tokenize

import (
	"regexp"
	"unicode/utf8"

	"github.com/RishiKendai/duplink/internal/text"
)

// Tokenizer splits text into tokens.
type Tokenizer interface {
	Tokenize(body string) []text.Token
	Name() string
}

var (
	whitespacePattern = regexp.MustCompile(`\S+`)
	// letter/digit runs (with inner apostrophes) or single punctuation marks
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)
)

// regexpTokenizer emits one token per match of its pattern.
type regexpTokenizer struct {
	name    string
	pattern *regexp.Regexp
}

func (t regexpTokenizer) Name() string { return t.name }

func (t regexpTokenizer) Tokenize(body string) []text.Token {
	matches := t.pattern.FindAllStringIndex(body, -1)
	toks := make([]text.Token, 0, len(matches))
	bytePos, runePos := 0, 0
	for i, m := range matches {
		runePos += utf8.RuneCountInString(body[bytePos:m[0]])
		start := runePos
		runePos += utf8.RuneCountInString(body[m[0]:m[1]])
		bytePos = m[1]
		toks = append(toks, text.Token{
			Raw:   body[m[0]:m[1]],
			Index: i,
			Start: start,
			End:   runePos,
		})
	}
	return toks
}

// Whitespace treats every run of non-space characters as a token. Used for
// corpora that are already tokenized.
func Whitespace() Tokenizer {
	return regexpTokenizer{name: "whitespace", pattern: whitespacePattern}
}

// Word splits letter and digit runs from punctuation; each punctuation mark is
// its own token.
func Word() Tokenizer {
	return regexpTokenizer{name: "word", pattern: wordPattern}
}

// ForCorpus returns Whitespace for pre-tokenized corpora and Word otherwise.
func ForCorpus(pretokenized bool) Tokenizer {
	if pretokenized {
		return Whitespace()
	}
	return Word()
}

// Document tokenizes body and wraps it as a Document.
func Document(t Tokenizer, id string, rank int64, body string) *text.Document {
	return text.NewDocument(id, rank, body, t.Tokenize(body))
}
