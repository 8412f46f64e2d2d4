// Package corpus loads a chronological document collection from disk.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/text"
	"github.com/RishiKendai/duplink/internal/tokenize"
)

// RankFromName parses a document file name of the form <digits> or
// <digits>.txt into its identifier and chronological rank.
func RankFromName(name string) (id string, rank int64, err error) {
	id = strings.TrimSuffix(name, ".txt")
	if id == "" || strings.TrimLeft(id, "0123456789") != "" {
		return "", 0, fmt.Errorf("%w: improper file name %q, expected digits with optional .txt", duplink.ErrConfig, name)
	}
	rank, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: improper file name %q: %v", duplink.ErrConfig, name, err)
	}
	return id, rank, nil
}

// LoadDir reads every file of dir as one document. Hidden files are ignored;
// subdirectories and badly named files are configuration errors.
func LoadDir(dir string, tok tokenize.Tokenizer) ([]*text.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory, not a text file", duplink.ErrConfig, filepath.Join(dir, e.Name()))
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no documents in %s", duplink.ErrConfig, dir)
	}
	return LoadFiles(paths, tok)
}

// LoadFiles reads each path as one document and returns them oldest first.
func LoadFiles(paths []string, tok tokenize.Tokenizer) ([]*text.Document, error) {
	docs := make([]*text.Document, 0, len(paths))
	for _, p := range paths {
		id, rank, err := RankFromName(filepath.Base(p))
		if err != nil {
			return nil, err
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", id, err)
		}
		doc := tokenize.Document(tok, id, rank, string(body))
		log.Debug().Str("file", p).Int("tokens", doc.Len()).Msg("Loaded document")
		docs = append(docs, doc)
	}
	text.SortChronological(docs)
	if err := text.CheckChronological(docs); err != nil {
		return nil, fmt.Errorf("%w: %v", duplink.ErrConfig, err)
	}
	return docs, nil
}
